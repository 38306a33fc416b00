package grid

import (
	"math"

	"isogrid-server/internal/domain"
)

// IsoGrid converts between world positions and isometric grid cells.
//
// A cell's anchor (its centre) sits at
//
//	Origin + ((x - y) * halfW, (x + y) * halfH)
//
// with halfW = TileWidth/2 and halfH = TileWidth/4. The inverse rotates a point into the
// cell frame and takes floor(coord + 0.5): the cell whose diamond contains the point.
// The obstacle layer and the simulation must share this one rule, otherwise actors and
// scenery drift one cell apart.
type IsoGrid struct {
	Origin    domain.WorldPosition
	TileWidth float64
}

// NewIsoGrid создает сетку с заданной шириной тайла (0 -> значение по умолчанию).
func NewIsoGrid(origin domain.WorldPosition, tileWidth float64) IsoGrid {
	if tileWidth <= 0 {
		tileWidth = domain.DefaultTileWidth
	}
	return IsoGrid{Origin: origin, TileWidth: tileWidth}
}

func (g IsoGrid) halfWidth() float64  { return g.TileWidth / 2 }
func (g IsoGrid) halfHeight() float64 { return g.TileWidth / 4 }

// GridToWorld возвращает мировую позицию якоря клетки.
func (g IsoGrid) GridToWorld(c domain.GridCell) domain.WorldPosition {
	return domain.WorldPosition{
		X: g.Origin.X + float64(c.X-c.Y)*g.halfWidth(),
		Y: g.Origin.Y + float64(c.X+c.Y)*g.halfHeight(),
	}
}

// WorldToGrid квантует мировую позицию в клетку.
func (g IsoGrid) WorldToGrid(p domain.WorldPosition) domain.GridCell {
	u := (p.X - g.Origin.X) / g.halfWidth()
	v := (p.Y - g.Origin.Y) / g.halfHeight()
	fx := (u + v) / 2
	fy := (v - u) / 2
	return domain.GridCell{
		X: int(math.Floor(fx + 0.5)),
		Y: int(math.Floor(fy + 0.5)),
	}
}

// Snap прижимает позицию к якорю ближайшей клетки.
func (g IsoGrid) Snap(p domain.WorldPosition) domain.WorldPosition {
	return g.GridToWorld(g.WorldToGrid(p))
}

// Step - мировая позиция соседней клетки в направлении f.
func (g IsoGrid) Step(p domain.WorldPosition, f domain.Facing) domain.WorldPosition {
	return p.Add(f.MovementVector(g.TileWidth))
}
