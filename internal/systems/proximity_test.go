package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isogrid-server/internal/domain"
)

func TestFindNearbySortsByDistanceThenOrder(t *testing.T) {
	self := domain.PackEntityID(domain.ActorKindWolf, 1, 1)
	p1 := domain.PackEntityID(domain.ActorKindPlayer, 1, 2)
	p2 := domain.PackEntityID(domain.ActorKindPlayer, 1, 3)
	far := domain.PackEntityID(domain.ActorKindPlayer, 1, 4)
	wolf := domain.PackEntityID(domain.ActorKindWolf, 1, 5)

	candidates := []Candidate{
		{ID: self, Kind: domain.ActorKindWolf, Alive: true, Order: 0},
		{ID: p2, Kind: domain.ActorKindPlayer, Position: domain.WorldPosition{X: 0, Y: 30}, Alive: true, Order: 2},
		{ID: p1, Kind: domain.ActorKindPlayer, Position: domain.WorldPosition{X: 30, Y: 0}, Alive: true, Order: 1},
		{ID: far, Kind: domain.ActorKindPlayer, Position: domain.WorldPosition{X: 500}, Alive: true, Order: 3},
		{ID: wolf, Kind: domain.ActorKindWolf, Position: domain.WorldPosition{X: 10}, Alive: true, Order: 4},
	}

	got := FindNearby(self, domain.WorldPosition{}, 100, candidates)
	require.Len(t, got, 3)
	assert.Equal(t, wolf, got[0].ID)
	assert.Equal(t, p1, got[1].ID, "equal distance resolves by registration order")
	assert.Equal(t, p2, got[2].ID)

	nearest, ok := NearestPlayer(got)
	require.True(t, ok)
	assert.Equal(t, p1, nearest.ID)
}

func TestNearestPlayerSkipsDead(t *testing.T) {
	dead := Candidate{ID: domain.PackEntityID(domain.ActorKindPlayer, 1, 1), Kind: domain.ActorKindPlayer}
	_, ok := NearestPlayer([]Candidate{dead})
	assert.False(t, ok)
}
