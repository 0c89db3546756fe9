package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/zjregee/scout/internal/logging"
	"github.com/zjregee/scout/internal/models"
	"github.com/zjregee/scout/internal/service/storage"
)

var ErrThreadIDRequired = errors.New("thread ID is required")

// AgentService runs turns against threads and checkpoints each completed turn.
type AgentService struct {
	agent *Agent
	store storage.CheckpointStore

	mu      sync.Mutex
	threads map[string]*sync.Mutex

	now func() time.Time
}

func NewAgentService(agent *Agent, store storage.CheckpointStore) *AgentService {
	return &AgentService{
		agent:   agent,
		store:   store,
		threads: make(map[string]*sync.Mutex),
		now:     time.Now,
	}
}

func (s *AgentService) ModelID() string {
	return s.agent.Config().ModelID
}

func (s *AgentService) threadLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.threads[id]
	if !ok {
		lock = &sync.Mutex{}
		s.threads[id] = lock
	}
	return lock
}

// Chat runs one turn on threadID. The thread's history is loaded from the
// checkpoint store first, and the new history is saved only when the turn
// completes, so a failed turn leaves no trace and can be retried.
func (s *AgentService) Chat(ctx context.Context, threadID string, userInput string, observer Observer) (*models.TurnResult, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, ErrThreadIDRequired
	}

	lock := s.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	start := s.now()
	log := logging.WithThread(threadID)

	cp, found, err := s.store.Load(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}

	info := &models.ThreadInfo{
		ID:        threadID,
		Model:     s.ModelID(),
		CreatedAt: start.UnixMilli(),
	}
	usage := &models.AgentUsage{}
	conv := NewConversation(threadID)

	if found {
		conv, err = RestoreConversation(threadID, cp.Messages, cp.MessageTimestamps)
		if err != nil {
			return nil, err
		}
		if cp.Info != nil {
			info = cp.Info
		}
		if cp.Usage != nil {
			usage = cp.Usage
		}
	}

	result, err := s.agent.Run(ctx, conv, userInput, observer)
	if err != nil {
		log.WithError(err).Warn("turn failed, thread not updated")
		return nil, err
	}

	if result.Usage != nil {
		usage.Add(result.Usage.PromptTokens, result.Usage.CompletionTokens)
	}
	info.Model = s.ModelID()
	info.Turns += 1
	info.UpdatedAt = s.now().UnixMilli()

	err = s.store.Save(ctx, &storage.Checkpoint{
		Info:              info,
		Messages:          conv.Messages(),
		MessageTimestamps: conv.Timestamps(),
		Usage:             usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist thread %s: %w", threadID, err)
	}

	log.WithField("iterations", result.Iterations).
		WithField("tool_calls", result.ToolCalls).
		WithField("elapsed", elapsedSince(start)).
		Info("turn completed")

	result.ThreadID = threadID
	return result, nil
}

// ThreadMessages returns the user and assistant messages of a thread that
// carry text, in order. Tool traffic is left out.
func (s *AgentService) ThreadMessages(ctx context.Context, threadID string) ([]*models.ThreadMessage, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, ErrThreadIDRequired
	}

	cp, found, err := s.store.Load(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}
	if !found {
		return []*models.ThreadMessage{}, nil
	}

	return lo.FilterMap(cp.Messages, func(msg *schema.Message, i int) (*models.ThreadMessage, bool) {
		if msg == nil || (msg.Role != schema.User && msg.Role != schema.Assistant) {
			return nil, false
		}
		content := extractAnswer(msg)
		if content == "" {
			return nil, false
		}
		var ts int64
		if i < len(cp.MessageTimestamps) {
			ts = cp.MessageTimestamps[i]
		}
		return &models.ThreadMessage{
			Role:      msg.Role,
			Content:   content,
			Timestamp: ts,
		}, true
	}), nil
}

func (s *AgentService) ListThreads(ctx context.Context) ([]*models.ThreadInfo, error) {
	return s.store.List(ctx)
}
