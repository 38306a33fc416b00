package systems

import (
	"sort"

	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/grid"
	"isogrid-server/pkg/logger"
)

// Reservations - протокол бронирования клеток поверх OccupancyMap.
//
// Актор держит бронь на клетке назначения все время, пока в нее едет, и не отпускает
// клетку отправления, пока полностью не прибыл. Порядок на каждый шаг:
// сначала бронь назначения, затем (по прибытии) освобождение исходной клетки.
type Reservations struct {
	occupancy *grid.OccupancyMap
	holders   map[domain.GridCell]domain.EntityID
	held      map[domain.EntityID]map[domain.GridCell]struct{}
}

func NewReservations(occ *grid.OccupancyMap) *Reservations {
	return &Reservations{
		occupancy: occ,
		holders:   make(map[domain.GridCell]domain.EntityID),
		held:      make(map[domain.EntityID]map[domain.GridCell]struct{}),
	}
}

// RequestReserve - единственная проверка допуска к движению.
// Успех только если клетка в границах уровня и не заблокирована (сценой или чужой бронью).
// При отказе состояние не меняется.
func (r *Reservations) RequestReserve(actor domain.EntityID, cell domain.GridCell) bool {
	if !r.occupancy.Walkable(cell) {
		logger.Log.WithFields(logrus.Fields{
			"component": "reservation",
			"actor":     actor,
			"cell":      cell,
			"holder":    r.holders[cell],
		}).Debug("Reserve refused")
		return false
	}

	r.occupancy.SetBlocked(cell, true)
	r.holders[cell] = actor
	cells, ok := r.held[actor]
	if !ok {
		cells = make(map[domain.GridCell]struct{}, 2)
		r.held[actor] = cells
	}
	cells[cell] = struct{}{}
	return true
}

// Release снимает бронь актора с клетки. Если клетку держит не этот актор
// (или никто), вызов молча ничего не делает - повторные release безопасны.
func (r *Reservations) Release(actor domain.EntityID, cell domain.GridCell) {
	holder, ok := r.holders[cell]
	if !ok || holder != actor {
		return
	}

	delete(r.holders, cell)
	if cells, ok := r.held[actor]; ok {
		delete(cells, cell)
		if len(cells) == 0 {
			delete(r.held, actor)
		}
	}
	r.occupancy.SetBlocked(cell, false)
}

// ReleaseAll освобождает все брони актора (уход с уровня, варп).
func (r *Reservations) ReleaseAll(actor domain.EntityID) {
	for _, cell := range r.HeldBy(actor) {
		r.Release(actor, cell)
	}
}

// HolderOf возвращает владельца брони клетки.
func (r *Reservations) HolderOf(cell domain.GridCell) (domain.EntityID, bool) {
	id, ok := r.holders[cell]
	return id, ok
}

// HeldBy - клетки, которые держит актор (в порядке Y, X).
func (r *Reservations) HeldBy(actor domain.EntityID) []domain.GridCell {
	cells := r.held[actor]
	out := make([]domain.GridCell, 0, len(cells))
	for c := range cells {
		out = append(out, c)
	}
	sortCells(out)
	return out
}

// Count - общее число активных броней.
func (r *Reservations) Count() int {
	return len(r.holders)
}

func (r *Reservations) Occupancy() *grid.OccupancyMap {
	return r.occupancy
}

func sortCells(cells []domain.GridCell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}
