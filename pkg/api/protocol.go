package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы сообщений сервера.
const (
	MsgTypeUpdate = "UPDATE"
	MsgTypeError  = "ERROR"
	MsgTypeWarp   = "WARP"
)

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Он представляет собой "снимок" уровня, на котором находится клиент.
// Отправляется после каждого тика симуляции.
type ServerResponse struct {
	// Type тип сообщения: UPDATE, WARP или ERROR.
	Type string `json:"type"`

	// Tick номер тика уровня, после которого снят снимок.
	Tick uint64 `json:"tick"`

	// LevelID уровень, на котором сейчас находится клиент.
	LevelID int `json:"levelId"`

	// MyEntityID ID сущности, которой управляет данный клиент.
	MyEntityID string `json:"myEntityId,omitempty"`

	// Grid метаданные сетки (размер и ширина тайла), чтобы клиент мог построить изометрию.
	Grid *GridMeta `json:"grid,omitempty"`

	// Blocked статические препятствия уровня. Отправляются только в полном снимке (INIT, WARP).
	Blocked []CellView `json:"blocked,omitempty"`

	// Actors все акторы уровня в порядке регистрации.
	Actors []ActorView `json:"actors,omitempty"`

	// Error текст ошибки для Type == ERROR.
	Error string `json:"error,omitempty"`
}

// GridMeta содержит размеры уровня и параметры изометрии.
type GridMeta struct {
	Width     int     `json:"w"`
	Height    int     `json:"h"`
	TileWidth float64 `json:"tileWidth"`
	OriginX   float64 `json:"originX"`
	OriginY   float64 `json:"originY"`
}

// CellView - клетка сетки.
type CellView struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ActorView это DTO для актора.
type ActorView struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // PLAYER, WOLF
	Name string `json:"name"`

	// Cell - логическая клетка, Pos - мировая позиция (интерполяция между клетками).
	Cell CellView `json:"cell"`
	Pos  struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"pos"`

	Facing    string `json:"facing"`
	State     string `json:"state"`
	Animation string `json:"animation"`

	// Stats может отсутствовать, если у актора нет здоровья.
	Stats *StatsView `json:"stats,omitempty"`
}

// StatsView это DTO для здоровья актора.
type StatsView struct {
	HP     int  `json:"hp"`
	MaxHP  int  `json:"maxHp"`
	IsDead bool `json:"isDead"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID сущности, от имени которой выполняется действие.
	// Сервер подставляет его сам после JOIN, клиентское значение игнорируется.
	Token string `json:"token,omitempty"`

	// Action название действия: INIT, MOVE, STOP.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// JoinPayload - первое сообщение соединения (Action = JOIN).
type JoinPayload struct {
	Name string `json:"name"`
}

// FacingPayload используется для MOVE: направление, которое игрок "держит".
type FacingPayload struct {
	Facing string `json:"facing"` // nw, ne, sw, se
}

// LogEntry представляет одну запись журнала событий уровня (отладка).
type LogEntry struct {
	ID        string `json:"id"`
	Tick      uint64 `json:"tick"`
	Type      string `json:"type"` // MOVE_COMMITTED, BITE_LANDED, ...
	Actor     string `json:"actor,omitempty"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}
