package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Facing - одно из четырех изометрических направлений.
// Нулевое значение - SW (направление по умолчанию).
type Facing uint8

const (
	FacingSW Facing = iota
	FacingSE
	FacingNW
	FacingNE
)

// AllFacings перечисляет направления в фиксированном порядке.
var AllFacings = [4]Facing{FacingNW, FacingNE, FacingSW, FacingSE}

// ErrNotAdjacent - попытка получить направление к несоседней клетке.
// Это баг вызывающего кода, а не штатная ситуация.
var ErrNotAdjacent = errors.New("target cell is not grid-adjacent")

// facingEpsilon - допуск сравнения с каноническими векторами.
const facingEpsilon = 1e-9

var facingToString = map[Facing]string{
	FacingNW: "nw",
	FacingNE: "ne",
	FacingSW: "sw",
	FacingSE: "se",
}

var stringToFacing = map[string]Facing{
	"nw": FacingNW,
	"ne": FacingNE,
	"sw": FacingSW,
	"se": FacingSE,
}

// MovementVector returns the world-space vector of a one-tile step.
// Isometric tiles are twice as wide as they are tall, so the Y component is halved.
func (f Facing) MovementVector(tileWidth float64) Vector {
	var v Vector
	switch f {
	case FacingNW:
		v = Vector{X: -1, Y: -0.5}
	case FacingNE:
		v = Vector{X: 1, Y: -0.5}
	case FacingSE:
		v = Vector{X: 1, Y: 0.5}
	default:
		v = Vector{X: -1, Y: 0.5}
	}
	return v.Scale(tileWidth / 2)
}

// CellDelta - смещение в клетках сетки при шаге в этом направлении.
func (f Facing) CellDelta() GridCell {
	switch f {
	case FacingNW:
		return GridCell{X: -1}
	case FacingNE:
		return GridCell{Y: -1}
	case FacingSE:
		return GridCell{X: 1}
	default:
		return GridCell{Y: 1}
	}
}

// FacingFromVector matches v against the four canonical one-tile vectors.
// Anything else (zero vector, two-tile steps, axis-aligned vectors) yields false.
func FacingFromVector(v Vector, tileWidth float64) (Facing, bool) {
	for _, f := range AllFacings {
		if v.ApproxEqual(f.MovementVector(tileWidth), facingEpsilon*math.Max(1, tileWidth)) {
			return f, true
		}
	}
	return FacingSW, false
}

// FacingToward возвращает направление шага из from в соседнюю клетку to.
func FacingToward(from, to GridCell) (Facing, error) {
	delta := GridCell{X: to.X - from.X, Y: to.Y - from.Y}
	for _, f := range AllFacings {
		if f.CellDelta() == delta {
			return f, nil
		}
	}
	return FacingSW, fmt.Errorf("facing %s -> %s: %w", from, to, ErrNotAdjacent)
}

// MustFacingToward is FacingToward for callers that already guarantee adjacency.
// A non-adjacent pair means the reservation bookkeeping can no longer be trusted.
func MustFacingToward(from, to GridCell) Facing {
	f, err := FacingToward(from, to)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseFacing конвертирует строку ("nw", "NE", ...) в Facing.
func ParseFacing(s string) (Facing, error) {
	if f, ok := stringToFacing[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return FacingSW, fmt.Errorf("unknown facing %q", s)
}

func (f Facing) String() string {
	if s, ok := facingToString[f]; ok {
		return s
	}
	return "unknown"
}

// Animation - имя анимации для направления ("sw_walk", "ne_idle").
func (f Facing) Animation(name string) string {
	return f.String() + "_" + name
}

func (f Facing) MarshalText() ([]byte, error) {
	if _, ok := facingToString[f]; !ok {
		return nil, fmt.Errorf("invalid facing %d", uint8(f))
	}
	return []byte(f.String()), nil
}

func (f *Facing) UnmarshalText(data []byte) error {
	parsed, err := ParseFacing(string(data))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
