package domain

import "strings"

// ActionType - Внутренний числовой идентификатор действия клиента
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionInit
	ActionMove
	ActionStop

	// Внутренние: клиент их не шлет, их пишет инстанс при входе/выходе игрока.
	ActionJoin
	ActionLeave
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"INIT":  ActionInit,
	"MOVE":  ActionMove,
	"STOP":  ActionStop,
	"JOIN":  ActionJoin,
	"LEAVE": ActionLeave,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionInit:  "INIT",
	ActionMove:  "MOVE",
	ActionStop:  "STOP",
	ActionJoin:  "JOIN",
	ActionLeave: "LEAVE",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// Journaled - действия, которые меняют симуляцию и попадают в журнал.
func (a ActionType) Journaled() bool {
	switch a {
	case ActionMove, ActionStop, ActionJoin, ActionLeave:
		return true
	}
	return false
}

// ClientFacing - может ли действие прийти от клиента по сети.
func (a ActionType) ClientFacing() bool {
	return a == ActionInit || a == ActionMove || a == ActionStop
}
