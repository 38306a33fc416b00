package systems

import (
	"sort"

	"isogrid-server/internal/domain"
)

// Candidate - сущность, видимая запросу близости.
type Candidate struct {
	ID       domain.EntityID
	Kind     domain.ActorKind
	Position domain.WorldPosition
	Cell     domain.GridCell
	Alive    bool
	Order    int // порядок регистрации на уровне
}

// FindNearby возвращает кандидатов в радиусе radius от origin (кроме self),
// отсортированных по расстоянию, затем по порядку регистрации.
func FindNearby(self domain.EntityID, origin domain.WorldPosition, radius float64, candidates []Candidate) []Candidate {
	type scored struct {
		c    Candidate
		dist float64
	}
	hits := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == self {
			continue
		}
		d := origin.DistanceTo(c.Position)
		if d > radius {
			continue
		}
		hits = append(hits, scored{c: c, dist: d})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].c.Order < hits[j].c.Order
	})

	out := make([]Candidate, len(hits))
	for i, h := range hits {
		out[i] = h.c
	}
	return out
}

// NearestPlayer - ближайший живой игрок среди результатов FindNearby.
func NearestPlayer(nearby []Candidate) (Candidate, bool) {
	for _, c := range nearby {
		switch c.Kind {
		case domain.ActorKindPlayer:
			if c.Alive {
				return c, true
			}
		}
	}
	return Candidate{}, false
}
