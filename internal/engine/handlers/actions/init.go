package actions

import "isogrid-server/internal/engine/handlers"

func HandleInit(ctx handlers.Context) (handlers.Result, error) {
	return handlers.Result{
		Msg:     "Добро пожаловать на поляну.",
		MsgType: "INFO",
		Resync:  true,
	}, nil
}
