package actions

import "isogrid-server/internal/engine/handlers"

// HandleStop отпускает направление. Текущий шаг доезжает до конца клетки.
func HandleStop(ctx handlers.Context) (handlers.Result, error) {
	if ctx.Input == nil {
		return handlers.EmptyResult(), handlers.ErrNotControllable
	}
	ctx.Input.Release()
	return handlers.EmptyResult(), nil
}
