// Package session holds the per-user state shared by the interactive front
// ends: a fixed thread id and the transcript shown on screen.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/render"
	"github.com/zjregee/scout/internal/service"
	"github.com/zjregee/scout/internal/utils"
)

type Chatter interface {
	Chat(ctx context.Context, threadID string, userInput string, observer service.Observer) (*models.TurnResult, error)
}

// Reply is what a front end shows for one completed turn.
type Reply struct {
	ThreadID   string   `json:"thread_id"`
	Statuses   []string `json:"statuses"`
	Answer     string   `json:"answer"`
	HTML       string   `json:"html"`
	Iterations int      `json:"iterations"`
	ToolCalls  int      `json:"tool_calls"`
}

type Session struct {
	threadID string

	mu         sync.RWMutex
	transcript []models.TranscriptEntry
}

// New returns a session bound to threadID, or to a fresh random thread when
// threadID is empty.
func New(prefix, threadID string) *Session {
	if strings.TrimSpace(threadID) == "" {
		threadID = utils.GenerateThreadID(prefix)
	}
	return &Session{threadID: threadID}
}

func (s *Session) ThreadID() string {
	return s.threadID
}

func (s *Session) Transcript() []models.TranscriptEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Ask runs one turn on the session's thread. onStatus, when set, receives the
// progress label for every finished step. The transcript grows only when the
// turn succeeds.
func (s *Session) Ask(ctx context.Context, chatter Chatter, input string, onStatus func(string)) (*Reply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, service.ErrEmptyInput
	}

	var statuses []string
	observer := func(msg models.AgentMessage) {
		step, ok := msg.(models.AgentStepFinished)
		if !ok {
			return
		}
		label := models.StatusLabel(step.Step)
		if label == "" {
			return
		}
		statuses = append(statuses, label)
		if onStatus != nil {
			onStatus(label)
		}
	}

	result, err := chatter.Chat(ctx, s.threadID, input, observer)
	if err != nil {
		return nil, err
	}

	answer := render.Text(result.DisplayAnswer())
	reply := &Reply{
		ThreadID:   s.threadID,
		Statuses:   statuses,
		Answer:     answer,
		HTML:       render.Answer(answer),
		Iterations: result.Iterations,
		ToolCalls:  result.ToolCalls,
	}

	s.mu.Lock()
	s.transcript = append(s.transcript,
		models.TranscriptEntry{Role: schema.User, Content: input},
		models.TranscriptEntry{Role: schema.Assistant, Content: reply.Answer, HTML: reply.HTML},
	)
	s.mu.Unlock()

	return reply, nil
}
