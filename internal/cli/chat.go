package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/render"
	"github.com/zjregee/scout/internal/service"
)

const separatorWidth = 50

type Chatter interface {
	Chat(ctx context.Context, threadID string, userInput string, observer service.Observer) (*models.TurnResult, error)
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit":
		return true
	default:
		return false
	}
}

type readResult struct {
	line string
	err  error
	eof  bool
}

// readLines reads one line from in per receive on next and delivers it on the
// returned channel. Closing next stops the reader once a pending read returns.
func readLines(in io.Reader, next <-chan struct{}) <-chan readResult {
	out := make(chan readResult, 1)
	go func() {
		defer close(out)

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for range next {
			if !scanner.Scan() {
				out <- readResult{err: scanner.Err(), eof: true}
				return
			}
			out <- readResult{line: scanner.Text()}
		}
	}()
	return out
}

// Run reads user lines from in until quit/exit or EOF and runs each one as a
// turn on threadID, printing step labels and the final answer to out. A
// cancelled ctx ends the loop even while it waits for input.
func Run(ctx context.Context, chatter Chatter, threadID string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Deep Research Agent is ON (with Memory).")
	fmt.Fprint(out, "Type 'quit' to exit.\n\n")

	next := make(chan struct{})
	defer close(next)
	lines := readLines(in, next)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, "User: ")

		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		}

		var res readResult
		select {
		case res = <-lines:
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		}
		if res.eof {
			fmt.Fprintln(out)
			return res.err
		}

		userInput := strings.TrimSpace(res.line)
		if userInput == "" {
			continue
		}
		if isQuit(userInput) {
			return nil
		}

		observer := func(msg models.AgentMessage) {
			if step, ok := msg.(models.AgentStepFinished); ok {
				fmt.Fprintf(out, "  --> Step '%s' finished.\n", step.Step)
			}
		}

		result, err := chatter.Chat(ctx, threadID, userInput, observer)
		if err != nil {
			fmt.Fprintf(out, "\nError: %v\n", err)
			fmt.Fprintln(out, strings.Repeat("-", separatorWidth))
			continue
		}

		fmt.Fprintln(out, "\nFinal Answer:")
		fmt.Fprintln(out, render.Text(result.DisplayAnswer()))
		fmt.Fprintln(out, strings.Repeat("-", separatorWidth))
	}
}
