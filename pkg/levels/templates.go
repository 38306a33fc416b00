package levels

import "isogrid-server/internal/domain"

// ActorTemplate - параметры вида актора. Скорости задаются в SimConfig.
type ActorTemplate struct {
	Kind  domain.ActorKind
	Name  string
	MaxHP int
}

var Player = ActorTemplate{
	Kind:  domain.ActorKindPlayer,
	Name:  "Путник",
	MaxHP: domain.PlayerMaxHP,
}

var Wolf = ActorTemplate{
	Kind:  domain.ActorKindWolf,
	Name:  "Серый волк",
	MaxHP: domain.WolfMaxHP,
}

// Templates - шаблоны по виду актора.
var Templates = map[domain.ActorKind]ActorTemplate{
	domain.ActorKindPlayer: Player,
	domain.ActorKindWolf:   Wolf,
}

// TemplateFor возвращает шаблон вида. Неизвестный вид - ошибка конфигурации уровня.
func TemplateFor(kind domain.ActorKind) (ActorTemplate, bool) {
	t, ok := Templates[kind]
	return t, ok
}
