package domain

import (
	"fmt"
	"strings"
)

// ActorKind - закрытый набор видов акторов.
// Заменяет проверки вида "это Player?" по имени класса.
type ActorKind uint8

const (
	ActorKindUnknown ActorKind = iota
	ActorKindPlayer
	ActorKindWolf
)

var actorKindToString = map[ActorKind]string{
	ActorKindPlayer: "PLAYER",
	ActorKindWolf:   "WOLF",
}

// ParseActorKind конвертирует строку (YAML, JSON) в ActorKind
func ParseActorKind(s string) (ActorKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for k, v := range actorKindToString {
		if v == upper {
			return k, nil
		}
	}
	return ActorKindUnknown, fmt.Errorf("unknown actor kind %q", s)
}

func (k ActorKind) String() string {
	if s, ok := actorKindToString[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsPursuer - мобы, которые преследуют игроков и кусают.
func (k ActorKind) IsPursuer() bool {
	return k == ActorKindWolf
}

func (k ActorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActorKind) UnmarshalText(data []byte) error {
	parsed, err := ParseActorKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
