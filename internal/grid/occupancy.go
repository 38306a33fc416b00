package grid

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"isogrid-server/internal/domain"
)

// Bounds - прямоугольник допустимых клеток уровня [0,Width) x [0,Height).
type Bounds struct {
	Width  int
	Height int
}

// Contains проверяет попадание клетки в границы.
// Нулевые Bounds означают неограниченную сетку.
func (b Bounds) Contains(c domain.GridCell) bool {
	if b.Width <= 0 || b.Height <= 0 {
		return true
	}
	return c.X >= 0 && c.Y >= 0 && c.X < b.Width && c.Y < b.Height
}

// OccupancyMap - авторитетный набор заблокированных клеток уровня:
// статичная сцена (foreground) плюс брони акторов.
type OccupancyMap struct {
	bounds  Bounds
	blocked mapset.Set[domain.GridCell]
	static  mapset.Set[domain.GridCell]
}

func NewOccupancyMap(bounds Bounds) *OccupancyMap {
	return &OccupancyMap{
		bounds:  bounds,
		blocked: mapset.New[domain.GridCell](),
		static:  mapset.New[domain.GridCell](),
	}
}

// MarkStatic блокирует клетки сцены. Вызывается один раз при загрузке уровня;
// эти клетки не разблокируются до конца жизни уровня.
func (m *OccupancyMap) MarkStatic(cells ...domain.GridCell) {
	for _, c := range cells {
		m.static.Put(c)
		m.blocked.Put(c)
	}
}

func (m *OccupancyMap) IsBlocked(c domain.GridCell) bool {
	return m.blocked.Has(c)
}

// IsStatic - клетка занята сценой (не бронью).
func (m *OccupancyMap) IsStatic(c domain.GridCell) bool {
	return m.static.Has(c)
}

// SetBlocked идемпотентен. Снять блокировку со статичной клетки нельзя.
func (m *OccupancyMap) SetBlocked(c domain.GridCell, blocked bool) {
	if blocked {
		m.blocked.Put(c)
		return
	}
	if m.static.Has(c) {
		return
	}
	m.blocked.Remove(c)
}

// Walkable - в границах и не заблокирована.
func (m *OccupancyMap) Walkable(c domain.GridCell) bool {
	return m.bounds.Contains(c) && !m.blocked.Has(c)
}

func (m *OccupancyMap) Bounds() Bounds {
	return m.bounds
}

func (m *OccupancyMap) Len() int {
	return m.blocked.Size()
}

// Cells возвращает заблокированные клетки, отсортированные по (Y, X).
func (m *OccupancyMap) Cells() []domain.GridCell {
	out := make([]domain.GridCell, 0, m.blocked.Size())
	m.blocked.Each(func(c domain.GridCell) {
		out = append(out, c)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
