package domain

import "fmt"

// GridCell - целочисленный адрес клетки изометрической сетки (колонка, ряд).
// Значимый тип: сравнивается и хешируется по значению, свободно копируется.
type GridCell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// neighborOffsets - канонический порядок обхода соседей: N, E, S, W.
// Pursuit полагается на этот порядок при выборе клетки подхода.
var neighborOffsets = [4]GridCell{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// Shift возвращает новую клетку со смещением.
func (c GridCell) Shift(dx, dy int) GridCell {
	return GridCell{X: c.X + dx, Y: c.Y + dy}
}

// Neighbors returns the four grid-adjacent cells in N, E, S, W order.
func (c GridCell) Neighbors() [4]GridCell {
	var out [4]GridCell
	for i, off := range neighborOffsets {
		out[i] = c.Shift(off.X, off.Y)
	}
	return out
}

// IsAdjacent reports whether other is one of the four grid neighbours (no diagonals).
func (c GridCell) IsAdjacent(other GridCell) bool {
	return c.ManhattanTo(other) == 1
}

// ManhattanTo - манхэттенское расстояние в клетках.
func (c GridCell) ManhattanTo(other GridCell) int {
	dx := c.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := c.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func (c GridCell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
