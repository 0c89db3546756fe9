package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/zjregee/scout/internal/logging"
	"github.com/zjregee/scout/internal/models"
)

const defaultMaxIterations = 10

var (
	ErrEmptyInput    = errors.New("user input is empty")
	ErrMaxIterations = errors.New("reached the maximum iterations without a final answer")
	ErrTurnTimeout   = errors.New("turn timed out")
)

// Observer receives loop events as they happen. It is a progress side
// channel only; the turn result is returned by Run.
type Observer func(models.AgentMessage)

type Agent struct {
	config   models.AgentConfig
	client   *ModelClient
	toolsMap map[string]tool.InvokableTool
}

func applyDefaults(c *models.AgentConfig) error {
	c.ModelID = strings.TrimSpace(c.ModelID)

	if c.ModelID == "" {
		return fmt.Errorf("agent model is required")
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.ModelTimeout < 0 || c.ToolTimeout < 0 || c.TurnTimeout < 0 {
		return fmt.Errorf("agent timeouts must not be negative")
	}

	return nil
}

func NewAgent(cfg models.AgentConfig, client *ModelClient, toolsMap map[string]tool.InvokableTool) (*Agent, error) {
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("agent model client is required")
	}
	if toolsMap == nil {
		toolsMap = map[string]tool.InvokableTool{}
	}

	return &Agent{
		config:   cfg,
		client:   client,
		toolsMap: toolsMap,
	}, nil
}

func (a *Agent) Config() models.AgentConfig {
	return a.config
}

// Run executes one user turn on conv: it alternates REASON and ACT until the
// model answers without tool calls. Messages are appended to conv as the loop
// goes; on error conv holds a partial turn and callers should discard it.
func (a *Agent) Run(ctx context.Context, conv *Conversation, userInput string, observer Observer) (*models.TurnResult, error) {
	emit := newEmitter(observer)

	if strings.TrimSpace(userInput) == "" {
		emit(models.AgentError{Error: ErrEmptyInput.Error()})
		return nil, ErrEmptyInput
	}

	turnCtx := ctx
	if a.config.TurnTimeout > 0 {
		var cancel context.CancelFunc
		turnCtx, cancel = context.WithTimeout(ctx, a.config.TurnTimeout)
		defer cancel()
	}

	log := logging.WithThread(conv.ThreadID())
	conv.Append(schema.UserMessage(userInput))

	result := &models.TurnResult{
		ThreadID: conv.ThreadID(),
		Usage:    &models.AgentUsage{},
	}

	for result.Iterations < a.config.MaxIterations {
		if err := turnCtx.Err(); err != nil {
			err = a.turnError(ctx, turnCtx)
			emit(models.AgentError{Error: err.Error()})
			return nil, err
		}

		result.Iterations += 1
		emit(models.AgentStartThinking{Iteration: result.Iterations})
		log.WithField("step", models.StepReason).WithField("iteration", result.Iterations).Debug("reasoning")

		reply, err := a.reason(turnCtx, conv)
		if err != nil {
			if turnCtx.Err() != nil {
				err = a.turnError(ctx, turnCtx)
			}
			log.WithError(err).Warn("model request failed")
			emit(models.AgentError{Error: err.Error()})
			return nil, err
		}

		response := reply.Message()
		if meta := response.ResponseMeta; meta != nil && meta.Usage != nil {
			result.Usage.Add(meta.Usage.PromptTokens, meta.Usage.CompletionTokens)
		}

		conv.Append(response)
		emit(models.AgentStepFinished{Step: models.StepReason})

		switch r := reply.(type) {
		case FinalAnswer:
			result.Answer = r.Content
			emit(models.AgentFinalResponse{Content: result.DisplayAnswer()})
			log.WithField("iterations", result.Iterations).Debug("turn finished")
			return result, nil
		case ToolCallBatch:
			if response.Content != "" {
				emit(models.AgentThought{Content: response.Content})
			}
			for _, msg := range a.act(turnCtx, r.Calls, emit) {
				conv.Append(msg)
			}
			result.ToolCalls += len(r.Calls)
			emit(models.AgentStepFinished{Step: models.StepAct})
		}
	}

	err := fmt.Errorf("%w (%d)", ErrMaxIterations, a.config.MaxIterations)
	log.Warn(err.Error())
	emit(models.AgentError{Error: err.Error()})
	return nil, err
}

func (a *Agent) reason(ctx context.Context, conv *Conversation) (Reply, error) {
	if a.config.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.ModelTimeout)
		defer cancel()
	}
	return a.client.Reason(ctx, conv.Messages())
}

func (a *Agent) turnError(parent, turnCtx context.Context) error {
	if parent.Err() == nil && errors.Is(turnCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTurnTimeout, a.config.TurnTimeout)
	}
	return fmt.Errorf("agent turn cancelled: %w", turnCtx.Err())
}

// act runs every requested tool and returns one tool message per call, in the
// order the model emitted the calls.
func (a *Agent) act(ctx context.Context, calls []schema.ToolCall, emit func(models.AgentMessage)) []*schema.Message {
	results := make([]*schema.Message, len(calls))

	run := func(i int, tc schema.ToolCall) {
		emit(models.AgentExecutingToolStart{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: tc.Function.Arguments,
		})

		content, err := a.invokeTool(ctx, tc)
		if err != nil {
			content = fmt.Sprintf("Tool %s call failed: %v", tc.Function.Name, err)
			logging.Logger().WithField("tool", tc.Function.Name).WithError(err).Warn("tool call failed")
		}

		emit(models.AgentExecutingToolFinish{
			ID:      tc.ID,
			Name:    tc.Function.Name,
			Args:    tc.Function.Arguments,
			Content: content,
			Failed:  err != nil,
		})

		results[i] = &schema.Message{
			Role:       schema.Tool,
			ToolCallID: tc.ID,
			ToolName:   tc.Function.Name,
			Content:    content,
		}
	}

	if !a.config.ParallelTools || len(calls) < 2 {
		for i, tc := range calls {
			run(i, tc)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, tc := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(i, tc)
		}()
	}
	wg.Wait()

	return results
}

func (a *Agent) invokeTool(ctx context.Context, toolCall schema.ToolCall) (string, error) {
	targetTool, exists := a.toolsMap[toolCall.Function.Name]
	if !exists {
		return "", fmt.Errorf("agent tool not found: %s", toolCall.Function.Name)
	}

	if a.config.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.ToolTimeout)
		defer cancel()
	}

	result, err := targetTool.InvokableRun(ctx, toolCall.Function.Arguments)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("tool timed out: %w", err)
		}
		return "", err
	}
	return result, nil
}

// newEmitter serialises observer calls so tools running in parallel never
// invoke it concurrently.
func newEmitter(observer Observer) func(models.AgentMessage) {
	if observer == nil {
		return func(models.AgentMessage) {}
	}

	var mu sync.Mutex
	return func(msg models.AgentMessage) {
		mu.Lock()
		defer mu.Unlock()
		observer(msg)
	}
}

func elapsedSince(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
