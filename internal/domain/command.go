package domain

import "encoding/json"

// InternalCommand - команда клиента, уже привязанная к сущности.
type InternalCommand struct {
	Action  ActionType
	Actor   EntityID
	Payload json.RawMessage // Сырые данные (парсятся хендлером)
}
