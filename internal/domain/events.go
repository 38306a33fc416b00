package domain

// EventType - вид события симуляции во внутренней очереди уровня.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventNavRequest
	EventSpawnBlocked
	EventMoveCommitted
	EventMoveBlocked
	EventArrived
	EventTurned
	EventBiteStarted
	EventBiteLanded
	EventBiteMissed
	EventActorDied
	EventWarpEntered
)

var eventTypeToString = map[EventType]string{
	EventNavRequest:    "NAV_REQUEST",
	EventSpawnBlocked:  "SPAWN_BLOCKED",
	EventMoveCommitted: "MOVE_COMMITTED",
	EventMoveBlocked:   "MOVE_BLOCKED",
	EventArrived:       "ARRIVED",
	EventTurned:        "TURNED",
	EventBiteStarted:   "BITE_STARTED",
	EventBiteLanded:    "BITE_LANDED",
	EventBiteMissed:    "BITE_MISSED",
	EventActorDied:     "ACTOR_DIED",
	EventWarpEntered:   "WARP_ENTERED",
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (e EventType) String() string {
	if val, ok := eventTypeToString[e]; ok {
		return val
	}
	return "UNKNOWN"
}

func (e EventType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// SimEvent - запись очереди событий. Поля заполняются по смыслу события.
type SimEvent struct {
	Type   EventType `json:"type"`
	Actor  EntityID  `json:"actor"`
	Target EntityID  `json:"target,omitempty"`
	Cell   GridCell  `json:"cell"`
	From   GridCell  `json:"from"`
	Amount int       `json:"amount,omitempty"`
	Facing Facing    `json:"facing"`
	Level  int       `json:"level,omitempty"` // целевой уровень для WARP_ENTERED
}
