package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/service"
	"github.com/zjregee/scout/internal/session"
)

type fakeService struct {
	err     error
	threads []string
}

func (f *fakeService) Chat(_ context.Context, threadID, userInput string, observer service.Observer) (*models.TurnResult, error) {
	f.threads = append(f.threads, threadID)
	observer(models.AgentStepFinished{Step: models.StepReason})
	observer(models.AgentStepFinished{Step: models.StepAct})
	observer(models.AgentStepFinished{Step: models.StepReason})
	if f.err != nil {
		return nil, f.err
	}
	return &models.TurnResult{ThreadID: threadID, Answer: "re: " + userInput}, nil
}

func (f *fakeService) ModelID() string { return "fake-model" }

func (f *fakeService) ListThreads(context.Context) ([]*models.ThreadInfo, error) {
	return []*models.ThreadInfo{{ID: "desktop-1"}}, nil
}

func (f *fakeService) ThreadMessages(_ context.Context, threadID string) ([]*models.ThreadMessage, error) {
	return []*models.ThreadMessage{{Content: threadID}}, nil
}

type event struct {
	name string
	data interface{}
}

type eventLog struct {
	mu     sync.Mutex
	events []event
	done   chan struct{}
}

func newTestApp(svc Service) (*App, *eventLog) {
	log := &eventLog{done: make(chan struct{}, 1)}
	a := NewApp(svc, "")
	a.emit = func(_ context.Context, name string, data ...interface{}) {
		log.mu.Lock()
		log.events = append(log.events, event{name: name, data: data[0]})
		log.mu.Unlock()
		if name != EventStatus {
			log.done <- struct{}{}
		}
	}
	return a, log
}

func (l *eventLog) wait(t *testing.T) []event {
	t.Helper()
	select {
	case <-l.done:
	case <-time.After(2 * time.Second):
		t.Fatal("turn did not finish")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]event(nil), l.events...)
}

func TestChatEmitsStatusesThenAnswer(t *testing.T) {
	svc := &fakeService{}
	a, log := newTestApp(svc)

	if err := a.Chat("weather in Paris?"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	events := log.wait(t)

	if len(events) != 4 {
		t.Fatalf("events = %+v", events)
	}
	if events[1].name != EventStatus || events[1].data != models.StatusSearching {
		t.Fatalf("second event = %+v", events[1])
	}
	reply, ok := events[3].data.(*session.Reply)
	if events[3].name != EventAnswer || !ok || reply.Answer != "re: weather in Paris?" {
		t.Fatalf("answer event = %+v", events[3])
	}

	if !strings.HasPrefix(a.ThreadID(), "desktop-") || svc.threads[0] != a.ThreadID() {
		t.Fatalf("thread id = %q, used %v", a.ThreadID(), svc.threads)
	}
	if len(a.Transcript()) != 2 {
		t.Fatalf("transcript = %+v", a.Transcript())
	}
}

func TestChatEmitsError(t *testing.T) {
	a, log := newTestApp(&fakeService{err: errors.New("model request failed")})

	if err := a.Chat("hi"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	events := log.wait(t)

	last := events[len(events)-1]
	if last.name != EventError || last.data != "Error: model request failed" {
		t.Fatalf("last event = %+v", last)
	}
	if len(a.Transcript()) != 0 {
		t.Fatal("failed turn reached the transcript")
	}
}

func TestChatRejectsEmptyInput(t *testing.T) {
	a, _ := newTestApp(&fakeService{})
	if err := a.Chat("  "); !errors.Is(err, service.ErrEmptyInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestThreadBindings(t *testing.T) {
	a, _ := newTestApp(&fakeService{})

	threads, err := a.ListThreads()
	if err != nil || len(threads) != 1 {
		t.Fatalf("threads = %v, err = %v", threads, err)
	}
	if _, err := a.GetThreadMessages(""); !errors.Is(err, service.ErrThreadIDRequired) {
		t.Fatalf("err = %v", err)
	}
	msgs, err := a.GetThreadMessages("desktop-1")
	if err != nil || msgs[0].Content != "desktop-1" {
		t.Fatalf("messages = %v, err = %v", msgs, err)
	}
	if len(a.ListModels()) == 0 {
		t.Fatal("no models listed")
	}
	if a.ModelID() != "fake-model" {
		t.Fatalf("model = %q", a.ModelID())
	}
}
