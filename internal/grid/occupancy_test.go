package grid

import (
	"testing"

	"isogrid-server/internal/domain"
)

func TestOccupancyMap_SetBlockedIdempotent(t *testing.T) {
	m := NewOccupancyMap(Bounds{Width: 10, Height: 10})
	c := domain.GridCell{X: 2, Y: 3}

	m.SetBlocked(c, true)
	m.SetBlocked(c, true)
	if !m.IsBlocked(c) || m.Len() != 1 {
		t.Fatalf("expected single blocked cell, got len=%d", m.Len())
	}

	m.SetBlocked(c, false)
	m.SetBlocked(c, false)
	if m.IsBlocked(c) || m.Len() != 0 {
		t.Fatalf("expected cell to be free, got len=%d", m.Len())
	}
}

func TestOccupancyMap_StaticCellsStayBlocked(t *testing.T) {
	m := NewOccupancyMap(Bounds{Width: 5, Height: 5})
	rock := domain.GridCell{X: 1, Y: 1}
	m.MarkStatic(rock)

	m.SetBlocked(rock, false)

	if !m.IsBlocked(rock) {
		t.Error("static scenery must never be unmarked")
	}
	if !m.IsStatic(rock) {
		t.Error("expected IsStatic=true")
	}
}

func TestOccupancyMap_Walkable(t *testing.T) {
	m := NewOccupancyMap(Bounds{Width: 3, Height: 3})
	m.MarkStatic(domain.GridCell{X: 1, Y: 1})

	tests := []struct {
		cell domain.GridCell
		want bool
	}{
		{domain.GridCell{X: 0, Y: 0}, true},
		{domain.GridCell{X: 1, Y: 1}, false},
		{domain.GridCell{X: -1, Y: 0}, false},
		{domain.GridCell{X: 3, Y: 0}, false},
		{domain.GridCell{X: 2, Y: 2}, true},
	}
	for _, tt := range tests {
		if got := m.Walkable(tt.cell); got != tt.want {
			t.Errorf("Walkable(%s) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestOccupancyMap_CellsSorted(t *testing.T) {
	m := NewOccupancyMap(Bounds{})
	m.SetBlocked(domain.GridCell{X: 5, Y: 1}, true)
	m.SetBlocked(domain.GridCell{X: 0, Y: 2}, true)
	m.SetBlocked(domain.GridCell{X: 1, Y: 1}, true)

	got := m.Cells()
	want := []domain.GridCell{{X: 1, Y: 1}, {X: 5, Y: 1}, {X: 0, Y: 2}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Cells()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
