package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"isogrid-server/pkg/api"
)

// ErrInvalidPayload - payload команды не разобрался или не прошел Validate.
var ErrInvalidPayload = errors.New("invalid payload")

// TypedHandlerFunc - хендлер, которому wrapper уже разобрал и проверил payload.
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - хендлер без данных (INIT, STOP).
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload оборачивает типизированный хендлер: Unmarshal + Validate.
// Пустой payload разбирается как {}, дальше решает Validate.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		if len(raw) == 0 {
			raw = json.RawMessage("{}")
		}

		var payload T
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
		}
		return handler(ctx, payload)
	}
}

// WithEmptyPayload игнорирует payload целиком.
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, _ json.RawMessage) (Result, error) {
		return handler(ctx)
	}
}
