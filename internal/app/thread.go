package app

import (
	"strings"

	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/service"
)

func (a *App) ListThreads() ([]*models.ThreadInfo, error) {
	return a.service.ListThreads(a.context())
}

func (a *App) GetThreadMessages(threadID string) ([]*models.ThreadMessage, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, service.ErrThreadIDRequired
	}
	return a.service.ThreadMessages(a.context(), threadID)
}
