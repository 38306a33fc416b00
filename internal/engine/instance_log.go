package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/pkg/api"
	"isogrid-server/pkg/logger"
)

const eventLogCapacity = 256

// EventLog - кольцевой буфер последних событий уровня для /debug/events.
type EventLog struct {
	mu      sync.RWMutex
	entries []api.LogEntry
	next    int
	full    bool
}

func NewEventLog() *EventLog {
	return &EventLog{entries: make([]api.LogEntry, eventLogCapacity)}
}

func (l *EventLog) add(e api.LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

// Recent возвращает записи от старых к новым.
func (l *EventLog) Recent() []api.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.full {
		out := make([]api.LogEntry, l.next)
		copy(out, l.entries[:l.next])
		return out
	}
	out := make([]api.LogEntry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}

// AddLog добавляет запись в журнал инстанса и в общий лог
func (i *Instance) AddLog(actor domain.EntityID, logType, text string) {
	entry := api.LogEntry{
		ID:        ulid.Make().String(),
		Tick:      i.CurrentTick,
		Type:      logType,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	if actor != domain.NoEntity {
		entry.Actor = actor.Token()
	}
	i.eventLog.add(entry)
}

// logEvent пишет событие симуляции: важные на Info, рутинные на Debug.
func (i *Instance) logEvent(ev domain.SimEvent) {
	if ev.Type == domain.EventNavRequest {
		return
	}

	text := describeEvent(ev)
	i.AddLog(ev.Actor, ev.Type.String(), text)

	entry := logger.Log.WithFields(logrus.Fields{
		"instance":  i.ID,
		"component": "game_log",
		"log_type":  ev.Type.String(),
		"tick":      i.CurrentTick,
	})
	switch ev.Type {
	case domain.EventActorDied, domain.EventWarpEntered, domain.EventBiteLanded:
		entry.Info(text)
	default:
		entry.Debug(text)
	}
}

func describeEvent(ev domain.SimEvent) string {
	switch ev.Type {
	case domain.EventMoveCommitted:
		return fmt.Sprintf("%s шагает %s -> %s", ev.Actor, ev.From, ev.Cell)
	case domain.EventMoveBlocked:
		return fmt.Sprintf("%s: клетка %s занята", ev.Actor, ev.Cell)
	case domain.EventArrived:
		return fmt.Sprintf("%s прибыл в %s", ev.Actor, ev.Cell)
	case domain.EventTurned:
		return fmt.Sprintf("%s повернулся на %s", ev.Actor, ev.Facing)
	case domain.EventSpawnBlocked:
		return fmt.Sprintf("%s ждет освобождения клетки спавна %s", ev.Actor, ev.Cell)
	case domain.EventBiteStarted:
		return fmt.Sprintf("%s кусает %s", ev.Actor, ev.Target)
	case domain.EventBiteLanded:
		return fmt.Sprintf("%s укусил %s на %d", ev.Actor, ev.Target, ev.Amount)
	case domain.EventBiteMissed:
		return fmt.Sprintf("%s промахнулся: %s убежал", ev.Actor, ev.Target)
	case domain.EventActorDied:
		return fmt.Sprintf("%s погиб в %s", ev.Actor, ev.Cell)
	case domain.EventWarpEntered:
		return fmt.Sprintf("%s ушел на уровень %d", ev.Actor, ev.Level)
	default:
		return ev.Type.String()
	}
}
