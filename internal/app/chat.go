package app

import (
	"fmt"
	"strings"

	"github.com/zjregee/scout/internal/logging"
	"github.com/zjregee/scout/internal/service"
)

// Chat starts a turn in the background. Progress and the outcome arrive as
// agent:status, agent:answer and agent:error events.
func (a *App) Chat(userInput string) error {
	if strings.TrimSpace(userInput) == "" {
		return service.ErrEmptyInput
	}

	go a.runTurn(userInput)
	return nil
}

func (a *App) runTurn(userInput string) {
	ctx := a.context()

	reply, err := a.session.Ask(ctx, a.service, userInput, func(label string) {
		a.emit(ctx, EventStatus, label)
	})
	if err != nil {
		logging.WithThread(a.ThreadID()).WithError(err).Warn("desktop turn failed")
		a.emit(ctx, EventError, fmt.Sprintf("Error: %v", err))
		return
	}

	a.emit(ctx, EventAnswer, reply)
}
