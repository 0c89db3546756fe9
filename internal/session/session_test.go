package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/service"
)

type fakeChatter struct {
	steps  []models.Step
	answer string
	err    error
	calls  int
	thread string
}

func (f *fakeChatter) Chat(_ context.Context, threadID, _ string, observer service.Observer) (*models.TurnResult, error) {
	f.calls++
	f.thread = threadID
	observer(models.AgentStartThinking{Iteration: 1})
	for _, s := range f.steps {
		observer(models.AgentStepFinished{Step: s})
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.TurnResult{ThreadID: threadID, Answer: f.answer, Iterations: 2, ToolCalls: 1}, nil
}

func TestNewGeneratesThreadID(t *testing.T) {
	a := New("web", "")
	b := New("web", "")
	if !strings.HasPrefix(a.ThreadID(), "web-") {
		t.Fatalf("thread id = %q", a.ThreadID())
	}
	if a.ThreadID() == b.ThreadID() {
		t.Fatal("sessions share a thread id")
	}
	if New("web", "fixed").ThreadID() != "fixed" {
		t.Fatal("explicit thread id ignored")
	}
}

func TestAskStatusesAndTranscript(t *testing.T) {
	chatter := &fakeChatter{
		steps:  []models.Step{models.StepReason, models.StepAct, models.StepReason},
		answer: "**Sunny**, 24C",
	}
	s := New("web", "t1")

	var seen []string
	reply, err := s.Ask(context.Background(), chatter, "  weather in Paris?  ", func(label string) {
		seen = append(seen, label)
	})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}

	want := []string{models.StatusPlanning, models.StatusSearching, models.StatusPlanning}
	if strings.Join(reply.Statuses, "|") != strings.Join(want, "|") {
		t.Fatalf("statuses = %v", reply.Statuses)
	}
	if strings.Join(seen, "|") != strings.Join(want, "|") {
		t.Fatalf("callback saw %v", seen)
	}
	if !strings.Contains(reply.HTML, "<strong>Sunny</strong>") {
		t.Fatalf("html = %q", reply.HTML)
	}
	if chatter.thread != "t1" {
		t.Fatalf("thread = %q", chatter.thread)
	}

	transcript := s.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript len = %d", len(transcript))
	}
	if transcript[0].Role != schema.User || transcript[0].Content != "weather in Paris?" {
		t.Fatalf("user entry = %+v", transcript[0])
	}
	if transcript[1].Role != schema.Assistant || transcript[1].HTML == "" {
		t.Fatalf("assistant entry = %+v", transcript[1])
	}
}

func TestAskFallbackAnswer(t *testing.T) {
	s := New("web", "t1")
	reply, err := s.Ask(context.Background(), &fakeChatter{steps: []models.Step{models.StepReason}}, "hi", nil)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if reply.Answer != models.FallbackAnswer {
		t.Fatalf("answer = %q", reply.Answer)
	}
}

func TestAskFailureLeavesTranscript(t *testing.T) {
	boom := errors.New("boom")
	s := New("web", "t1")

	if _, err := s.Ask(context.Background(), &fakeChatter{err: boom}, "hi", nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(s.Transcript()) != 0 {
		t.Fatal("failed turn reached the transcript")
	}
}

func TestAskEmptyInput(t *testing.T) {
	chatter := &fakeChatter{}
	_, err := New("web", "t1").Ask(context.Background(), chatter, "  ", nil)
	if !errors.Is(err, service.ErrEmptyInput) {
		t.Fatalf("err = %v", err)
	}
	if chatter.calls != 0 {
		t.Fatal("empty input reached the agent")
	}
}
