package domain

// ActorState - состояние автомата движения актора.
type ActorState uint8

const (
	StateIdle ActorState = iota
	StateStartMoving
	StateMoving
	StateActing // только мобы: укус и т.п.
)

var actorStateToString = map[ActorState]string{
	StateIdle:        "IDLE",
	StateStartMoving: "START_MOVING",
	StateMoving:      "MOVING",
	StateActing:      "ACTING",
}

func (s ActorState) String() string {
	if v, ok := actorStateToString[s]; ok {
		return v
	}
	return "UNKNOWN"
}

func (s ActorState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ReservationState - одноразовый запрос на бронирование, а не устойчивое состояние.
// ReserveLocation выставляется при спавне, ReserveDestination - при коммите шага.
// После обработки сбрасывается в ReservationNone.
type ReservationState uint8

const (
	ReservationNone ReservationState = iota
	ReserveLocation
	ReserveDestination
)

func (r ReservationState) String() string {
	switch r {
	case ReserveLocation:
		return "RESERVE_LOCATION"
	case ReserveDestination:
		return "RESERVE_DESTINATION"
	default:
		return "NONE"
	}
}
