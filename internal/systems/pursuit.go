package systems

import (
	"isogrid-server/internal/domain"
	"isogrid-server/internal/grid"
)

// ComputePursuit решает, что делать преследователю на этом тике.
//
//  1. Нет цели рядом -> NoPath.
//  2. Цель в соседней клетке -> ReachedTarget(клетка цели), без поиска.
//  3. Иначе перебираем клетки подхода вокруг цели в порядке N, E, S, W и возвращаем
//     FoundPath(второй клетки) первого пути длиной >= 2.
//  4. Ни одного пути -> NoPath.
//
// Побеждает первый успешный кандидат в порядке обхода, а не кратчайший из четырех.
// На этом держится воспроизводимость поведения мобов.
func ComputePursuit(pursuer domain.GridCell, target *domain.GridCell, search grid.PathSearcher) domain.PursuitResult {
	if target == nil || search == nil {
		return domain.NoPath()
	}

	for _, n := range pursuer.Neighbors() {
		if n == *target {
			return domain.ReachedTarget(*target)
		}
	}

	for _, approach := range target.Neighbors() {
		path := search.Search(pursuer, approach)
		if len(path) >= 2 {
			return domain.FoundPath(path[1])
		}
	}

	return domain.NoPath()
}
