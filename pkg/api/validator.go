package api

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

var validFacings = map[string]struct{}{
	"nw": {}, "ne": {}, "sw": {}, "se": {},
}

func (p FacingPayload) Validate() error {
	if p.Facing == "" {
		return errors.New("facing is required")
	}
	if _, ok := validFacings[strings.ToLower(p.Facing)]; !ok {
		return fmt.Errorf("facing %q is not one of nw, ne, sw, se", p.Facing)
	}
	return nil
}

// MaxNameLength - предел длины имени игрока в рунах.
const MaxNameLength = 32

func (p JoinPayload) Validate() error {
	if n := utf8.RuneCountInString(p.Name); n > MaxNameLength {
		return fmt.Errorf("name is %d runes long, max %d", n, MaxNameLength)
	}
	return nil
}
