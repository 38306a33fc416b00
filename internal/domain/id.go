package domain

import (
	"fmt"
	"strconv"
)

// EntityID - упакованный идентификатор (Kind + Level + Index)
type EntityID uint64

// Конфигурация битов
const (
	bitsIndex = 40
	bitsLevel = 16
	bitsKind  = 8

	shiftLevel = bitsIndex
	shiftKind  = bitsIndex + bitsLevel

	maskIndex = (1 << bitsIndex) - 1
	maskLevel = (1 << bitsLevel) - 1
	maskKind  = (1 << bitsKind) - 1
)

// NoEntity - отсутствие сущности (нулевой ID никогда не выдается).
const NoEntity EntityID = 0

// PackEntityID создает ID из компонентов
func PackEntityID(kind ActorKind, levelID int, index uint64) EntityID {
	id := index & maskIndex
	id |= (uint64(levelID) & maskLevel) << shiftLevel
	id |= (uint64(kind) & maskKind) << shiftKind
	return EntityID(id)
}

func (id EntityID) Kind() ActorKind {
	return ActorKind((id >> shiftKind) & maskKind)
}

// Level - уровень, на котором сущность была создана (при варпе ID не меняется).
func (id EntityID) Level() int {
	return int((id >> shiftLevel) & maskLevel)
}

func (id EntityID) Index() uint64 {
	return uint64(id & maskIndex)
}

// ParseEntityID разбирает десятичное представление ID (токен клиента).
func ParseEntityID(s string) (EntityID, error) {
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return NoEntity, fmt.Errorf("parse entity id %q: %w", s, err)
	}
	return EntityID(val), nil
}

// Token - десятичная строка для клиента и журнала.
func (id EntityID) Token() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON сериализует ID в строку, так как JS теряет точность для больших int64
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.Token() + `"`), nil
}

// UnmarshalJSON парсит строку или число из JSON
func (id *EntityID) UnmarshalJSON(data []byte) error {
	if len(data) > 1 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	parsed, err := ParseEntityID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// String для логов: [kind:lvl:idx]
func (id EntityID) String() string {
	return fmt.Sprintf("[%s:%d:%d]", id.Kind(), id.Level(), id.Index())
}
