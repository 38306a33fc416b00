package engine

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/pkg/levels"
	"isogrid-server/pkg/logger"
)

// Replay пересобирает уровень из журнала ввода: те же действия на тех же тиках
// с тем же фиксированным шагом. Уходы через варп не журналируются, они
// воспроизводятся самой симуляцией (Warper отсутствует, актор просто исчезает).
// После последнего действия прогоняется еще tail тиков.
func Replay(session *domain.ReplaySession, level *levels.Level, sim SimConfig, tail uint64) (*Instance, error) {
	if session.LevelID != level.ID {
		return nil, fmt.Errorf("journal is for level %d, got level %d", session.LevelID, level.ID)
	}
	rate := session.TickRate
	if rate <= 0 {
		rate = domain.DefaultTickRate
	}

	inst := NewInstance(level, sim, rate, session.Seed)
	dt := 1.0 / float64(rate)

	actions := session.Actions
	var end uint64
	if n := len(actions); n > 0 {
		end = actions[n-1].Tick
	}
	end += tail

	next := 0
	for inst.CurrentTick <= end {
		for next < len(actions) && actions[next].Tick == inst.CurrentTick {
			if err := inst.applyRecorded(actions[next]); err != nil {
				return inst, fmt.Errorf("replay action %d at tick %d: %w", next, inst.CurrentTick, err)
			}
			next++
		}
		if next < len(actions) && actions[next].Tick < inst.CurrentTick {
			return inst, fmt.Errorf("replay action %d: tick %d is out of order", next, actions[next].Tick)
		}
		inst.step(dt)
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "replay",
		"session":   session.SessionID,
		"level":     level.ID,
		"actions":   len(actions),
		"ticks":     inst.CurrentTick,
	}).Info("Replay finished")
	return inst, nil
}

func (i *Instance) applyRecorded(a domain.ReplayAction) error {
	switch a.Action {
	case domain.ActionJoin:
		var req JoinRequest
		if err := json.Unmarshal(a.Payload, &req); err != nil {
			return fmt.Errorf("join payload: %w", err)
		}
		i.ApplyJoin(req)
	case domain.ActionLeave:
		i.ApplyLeave(a.Token)
	case domain.ActionMove, domain.ActionStop:
		i.ApplyCommand(domain.InternalCommand{Action: a.Action, Actor: a.Token, Payload: a.Payload})
	default:
		return fmt.Errorf("action %s cannot be replayed", a.Action)
	}
	return nil
}
