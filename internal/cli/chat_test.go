package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/service"
)

type turn struct {
	steps  []models.Step
	answer string
	err    error
}

type fakeChatter struct {
	turns   []turn
	inputs  []string
	threads []string
}

func (f *fakeChatter) Chat(_ context.Context, threadID, userInput string, observer service.Observer) (*models.TurnResult, error) {
	f.inputs = append(f.inputs, userInput)
	f.threads = append(f.threads, threadID)
	if len(f.turns) == 0 {
		return nil, errors.New("unexpected turn")
	}
	tr := f.turns[0]
	f.turns = f.turns[1:]
	for _, s := range tr.steps {
		observer(models.AgentStepFinished{Step: s})
	}
	if tr.err != nil {
		return nil, tr.err
	}
	return &models.TurnResult{ThreadID: threadID, Answer: tr.answer}, nil
}

func TestRunDirectAnswer(t *testing.T) {
	chatter := &fakeChatter{turns: []turn{{steps: []models.Step{models.StepReason}, answer: "4"}}}
	var out bytes.Buffer

	if err := Run(context.Background(), chatter, "1", strings.NewReader("What is 2+2?\nquit\n"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Type 'quit' to exit.",
		"User: ",
		"  --> Step 'reason' finished.\n",
		"\nFinal Answer:\n4\n" + strings.Repeat("-", 50),
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "'act'") {
		t.Fatalf("no act step expected:\n%s", got)
	}
	if len(chatter.threads) != 1 || chatter.threads[0] != "1" {
		t.Fatalf("threads = %v", chatter.threads)
	}
}

func TestRunSearchTurnAndFixedThread(t *testing.T) {
	chatter := &fakeChatter{turns: []turn{
		{steps: []models.Step{models.StepReason, models.StepAct, models.StepReason}, answer: "Sunny"},
		{steps: []models.Step{models.StepReason}, answer: "Still sunny"},
	}}
	var out bytes.Buffer

	input := "weather in Paris?\n\n   \nand tomorrow?\nEXIT\nignored\n"
	if err := Run(context.Background(), chatter, "fixed", strings.NewReader(input), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(chatter.inputs) != 2 || chatter.inputs[1] != "and tomorrow?" {
		t.Fatalf("inputs = %q", chatter.inputs)
	}
	for _, id := range chatter.threads {
		if id != "fixed" {
			t.Fatalf("thread id changed: %v", chatter.threads)
		}
	}
	if !strings.Contains(out.String(), "  --> Step 'act' finished.") {
		t.Fatalf("missing act label:\n%s", out.String())
	}
}

func TestRunErrorThenRetry(t *testing.T) {
	chatter := &fakeChatter{turns: []turn{
		{err: errors.New("model request failed: 503")},
		{steps: []models.Step{models.StepReason}, answer: "ok now"},
	}}
	var out bytes.Buffer

	if err := Run(context.Background(), chatter, "1", strings.NewReader("hi\nhi\n"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Error: model request failed: 503") {
		t.Fatalf("missing error line:\n%s", got)
	}
	if !strings.Contains(got, "Final Answer:\nok now") {
		t.Fatalf("retry answer missing:\n%s", got)
	}
}

func TestRunFallbackAnswer(t *testing.T) {
	chatter := &fakeChatter{turns: []turn{{steps: []models.Step{models.StepReason}}}}
	var out bytes.Buffer

	if err := Run(context.Background(), chatter, "1", strings.NewReader("say nothing\n"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), models.FallbackAnswer) {
		t.Fatalf("fallback missing:\n%s", out.String())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, &fakeChatter{}, "1", strings.NewReader("hi\n"), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunCancelWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, &fakeChatter{}, "1", pr, io.Discard)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run kept waiting on input after cancel")
	}
}
