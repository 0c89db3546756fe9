package app

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/service"
	"github.com/zjregee/scout/internal/session"
)

const (
	EventStatus = "agent:status"
	EventAnswer = "agent:answer"
	EventError  = "agent:error"
)

// Service is the part of the agent service the desktop shell needs.
type Service interface {
	session.Chatter
	ModelID() string
	ListThreads(ctx context.Context) ([]*models.ThreadInfo, error)
	ThreadMessages(ctx context.Context, threadID string) ([]*models.ThreadMessage, error)
}

type emitFunc func(ctx context.Context, name string, data ...interface{})

type App struct {
	ctx   context.Context
	ctxMu sync.RWMutex

	service Service
	session *session.Session
	emit    emitFunc
}

// NewApp binds a desktop session to threadID, or to a fresh thread when
// threadID is empty.
func NewApp(service Service, threadID string) *App {
	return &App{
		ctx:     context.Background(),
		service: service,
		session: session.New("desktop", threadID),
		emit:    runtime.EventsEmit,
	}
}

func (a *App) Startup(ctx context.Context) {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()
}

func (a *App) context() context.Context {
	a.ctxMu.RLock()
	defer a.ctxMu.RUnlock()
	return a.ctx
}

func (a *App) ThreadID() string {
	return a.session.ThreadID()
}

func (a *App) ModelID() string {
	return a.service.ModelID()
}

func (a *App) Transcript() []models.TranscriptEntry {
	return a.session.Transcript()
}

func (a *App) ListModels() []*models.ModelInfo {
	return service.ListModels()
}
