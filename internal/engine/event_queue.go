package engine

import "isogrid-server/internal/domain"

// EventQueue - внутренняя очередь событий уровня.
// Наполняется акторами во время прохода и разбирается один раз после него (FIFO).
type EventQueue struct {
	items []domain.SimEvent
}

func (q *EventQueue) Push(ev domain.SimEvent) {
	q.items = append(q.items, ev)
}

func (q *EventQueue) Len() int {
	return len(q.items)
}

// Drain отдает события по порядку. События, добавленные во время разбора,
// обрабатываются в этом же вызове.
func (q *EventQueue) Drain(fn func(domain.SimEvent)) {
	for i := 0; i < len(q.items); i++ {
		fn(q.items[i])
	}
	q.items = q.items[:0]
}
