package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isogrid-server/internal/domain"
)

func TestIsoGrid_RoundTrip(t *testing.T) {
	grids := []IsoGrid{
		NewIsoGrid(domain.WorldPosition{}, 32),
		NewIsoGrid(domain.WorldPosition{X: 320, Y: 48}, 32),
		NewIsoGrid(domain.WorldPosition{X: -7.5, Y: 3.25}, 64),
	}

	for _, g := range grids {
		for y := -20; y <= 20; y++ {
			for x := -20; x <= 20; x++ {
				c := domain.GridCell{X: x, Y: y}
				require.Equal(t, c, g.WorldToGrid(g.GridToWorld(c)), "cell %s origin %s", c, g.Origin)
			}
		}
	}
}

func TestIsoGrid_FacingStepsMatchCellDelta(t *testing.T) {
	g := NewIsoGrid(domain.WorldPosition{X: 100, Y: 50}, 32)
	start := domain.GridCell{X: 3, Y: 4}

	for _, f := range domain.AllFacings {
		next := g.WorldToGrid(g.Step(g.GridToWorld(start), f))
		d := f.CellDelta()
		assert.Equal(t, start.Shift(d.X, d.Y), next, "facing %s", f)
		assert.True(t, start.IsAdjacent(next), "facing %s must land on a neighbour", f)
	}
}

func TestIsoGrid_QuantizesWithinHalfTile(t *testing.T) {
	g := NewIsoGrid(domain.WorldPosition{}, 32)
	anchor := g.GridToWorld(domain.GridCell{X: 2, Y: 1})

	// Внутри ромба клетки (|dx|/16 + |dy|/8 < 1) остаемся в той же клетке.
	offsets := []domain.Vector{{X: 7, Y: 0}, {X: -7, Y: 0}, {X: 0, Y: 3.9}, {X: 0, Y: -3.9}, {X: 4, Y: 1.5}}
	for _, off := range offsets {
		assert.Equal(t, domain.GridCell{X: 2, Y: 1}, g.WorldToGrid(anchor.Add(off)), "offset %v", off)
	}

	assert.Equal(t, anchor, g.Snap(anchor.Add(domain.Vector{X: 3, Y: -2})))
}

func TestIsoGrid_DefaultTileWidth(t *testing.T) {
	g := NewIsoGrid(domain.WorldPosition{}, 0)
	assert.Equal(t, domain.DefaultTileWidth, g.TileWidth)
	assert.Equal(t, domain.WorldPosition{X: 16, Y: 8}, g.GridToWorld(domain.GridCell{X: 1, Y: 0}))
}
