package handlers

import (
	"encoding/json"
	"errors"

	"isogrid-server/internal/domain"
)

// ErrNotControllable - команда пришла для актора, которым нельзя управлять вводом (моб, мертвый).
var ErrNotControllable = errors.New("actor does not accept input")

// InputController - источник намерения игрока, который опрашивает автомат движения.
type InputController interface {
	Hold(f domain.Facing)
	Release()
	Poll() (domain.Facing, bool)
}

// Context передает хендлеру состояние актора.
// Хендлер не двигает актора сам: он только меняет намерение, а решение принимает автомат на тике.
type Context struct {
	Actor domain.EntityID
	Kind  domain.ActorKind
	Alive bool
	Input InputController
	Tick  uint64
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в логи сервиса напрямую, он возвращает данные.
type Result struct {
	Msg     string // Текст лога
	MsgType string // Тип лога (INFO, ERROR)
	Resync  bool   // Клиенту нужен полный снимок уровня
}

// HandlerFunc - это контракт для любой команды (MOVE, STOP, INIT).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
