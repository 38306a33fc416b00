package domain

import "encoding/json"

// ReplayAction - это запись одной команды игрока, примененной на тике Tick
type ReplayAction struct {
	Tick    uint64          `json:"tick"`
	Token   EntityID        `json:"token"`
	Action  ActionType      `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// ReplaySession - журнал ввода одного уровня. Вместе с уровнем и тикрейтом
// этого достаточно для детерминированного повтора симуляции.
type ReplaySession struct {
	SessionID string         `json:"sessionId"`
	LevelID   int            `json:"levelId"`
	Seed      int64          `json:"seed"`
	TickRate  int            `json:"tickRate"`
	Timestamp int64          `json:"timestamp"`
	Actions   []ReplayAction `json:"actions"`
}
