package actions

import (
	"isogrid-server/internal/domain"
	"isogrid-server/internal/engine/handlers"
	"isogrid-server/pkg/api"
)

// HandleMove "зажимает" направление. Шаг начнется на ближайшем логическом тике,
// если актор стоит и клетка впереди свободна.
func HandleMove(ctx handlers.Context, p api.FacingPayload) (handlers.Result, error) {
	if ctx.Input == nil || !ctx.Alive {
		return handlers.EmptyResult(), handlers.ErrNotControllable
	}

	facing, err := domain.ParseFacing(p.Facing)
	if err != nil {
		return handlers.EmptyResult(), err
	}
	ctx.Input.Hold(facing)
	return handlers.EmptyResult(), nil
}
