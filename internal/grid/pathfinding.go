package grid

import (
	"container/heap"

	"isogrid-server/internal/domain"
)

// DefaultSearchBudget ограничивает число раскрытых узлов, когда у уровня нет границ.
const DefaultSearchBudget = 4096

// PathSearcher - сервис поиска кратчайшего пути.
// Возвращает клетки от start до goal включительно или nil, если пути нет.
type PathSearcher interface {
	Search(start, goal domain.GridCell) []domain.GridCell
}

// AStar ищет путь по 4-связной сетке с учетом текущего состояния OccupancyMap.
// Стартовая клетка всегда раскрывается (актор стоит на своей брони), цель должна быть свободна.
type AStar struct {
	Occupancy *OccupancyMap
	Budget    int
}

func NewAStar(occ *OccupancyMap) *AStar {
	return &AStar{Occupancy: occ, Budget: DefaultSearchBudget}
}

type searchNode struct {
	cell   domain.GridCell
	g      int
	f      int
	h      int
	seq    int // порядок вставки, для детерминированного tie-break
	index  int
	parent *searchNode
}

// searchQueue реализует heap.Interface (MinHeap по f, затем h, затем seq)
type searchQueue []*searchNode

func (pq searchQueue) Len() int { return len(pq) }

func (pq searchQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	if pq[i].h != pq[j].h {
		return pq[i].h < pq[j].h
	}
	return pq[i].seq < pq[j].seq
}

func (pq searchQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *searchQueue) Push(x interface{}) {
	item := x.(*searchNode)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *searchQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// Search реализует PathSearcher.
func (a *AStar) Search(start, goal domain.GridCell) []domain.GridCell {
	if a == nil || a.Occupancy == nil {
		return nil
	}
	if start == goal {
		return []domain.GridCell{start}
	}
	if !a.Occupancy.Walkable(goal) {
		return nil
	}

	budget := a.Budget
	if budget <= 0 {
		budget = DefaultSearchBudget
	}

	open := &searchQueue{}
	heap.Init(open)
	seq := 0
	h0 := start.ManhattanTo(goal)
	heap.Push(open, &searchNode{cell: start, g: 0, f: h0, h: h0, seq: seq})

	gScore := map[domain.GridCell]int{start: 0}
	closed := make(map[domain.GridCell]struct{})

	for open.Len() > 0 && len(closed) < budget {
		current := heap.Pop(open).(*searchNode)
		if _, seen := closed[current.cell]; seen {
			continue
		}
		closed[current.cell] = struct{}{}
		if current.cell == goal {
			return reconstruct(current)
		}

		for _, next := range current.cell.Neighbors() {
			if !a.Occupancy.Walkable(next) {
				continue
			}
			if _, seen := closed[next]; seen {
				continue
			}
			g := current.g + 1
			if prev, ok := gScore[next]; ok && g >= prev {
				continue
			}
			gScore[next] = g
			seq++
			h := next.ManhattanTo(goal)
			heap.Push(open, &searchNode{cell: next, g: g, f: g + h, h: h, seq: seq, parent: current})
		}
	}
	return nil
}

func reconstruct(end *searchNode) []domain.GridCell {
	path := make([]domain.GridCell, 0, end.g+1)
	for node := end; node != nil; node = node.parent {
		path = append(path, node.cell)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}
