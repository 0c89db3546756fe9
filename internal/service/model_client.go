package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

//go:embed assets/prompts/agent.txt
var promptContent []byte

// ErrModelFailure marks any failure of the model service. It ends the turn.
var ErrModelFailure = errors.New("model request failed")

func buildSystemPrompt(now time.Time) string {
	prompt := string(promptContent)
	prompt = strings.ReplaceAll(prompt, "[SYSTEM_TIME]", now.Format(time.RFC3339))
	return strings.TrimSpace(prompt)
}

// Reply is the model's answer to one REASON step: either a FinalAnswer or a
// ToolCallBatch.
type Reply interface {
	Message() *schema.Message
	isReply()
}

type FinalAnswer struct {
	msg     *schema.Message
	Content string
}

func (r FinalAnswer) Message() *schema.Message { return r.msg }
func (FinalAnswer) isReply()                   {}

type ToolCallBatch struct {
	msg   *schema.Message
	Calls []schema.ToolCall
}

func (r ToolCallBatch) Message() *schema.Message { return r.msg }
func (ToolCallBatch) isReply()                   {}

// ModelClient sends the conversation to a chat model with the tool schemas
// bound and the system instruction prepended.
type ModelClient struct {
	model model.ToolCallingChatModel
	now   func() time.Time
}

func NewModelClient(chatModel model.ToolCallingChatModel, tools []*schema.ToolInfo) (*ModelClient, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	bound := chatModel
	if len(tools) > 0 {
		var err error
		bound, err = chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	return &ModelClient{model: bound, now: time.Now}, nil
}

func (c *ModelClient) Reason(ctx context.Context, history []*schema.Message) (Reply, error) {
	input := make([]*schema.Message, 0, len(history)+1)
	input = append(input, schema.SystemMessage(buildSystemPrompt(c.now())))
	input = append(input, history...)

	response, err := c.model.Generate(ctx, input, model.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelFailure, err)
	}
	if response == nil {
		return nil, fmt.Errorf("%w: empty response", ErrModelFailure)
	}

	return classifyResponse(response), nil
}

func classifyResponse(msg *schema.Message) Reply {
	if msg.Role == "" {
		msg.Role = schema.Assistant
	}
	if len(msg.ToolCalls) > 0 {
		return ToolCallBatch{msg: msg, Calls: msg.ToolCalls}
	}
	return FinalAnswer{msg: msg, Content: extractAnswer(msg)}
}

// extractAnswer returns the message text. When the text arrives as parts
// instead of a single string, the first text part wins.
func extractAnswer(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	if strings.TrimSpace(msg.Content) != "" {
		return msg.Content
	}
	for _, part := range msg.MultiContent {
		if part.Type == schema.ChatMessagePartTypeText && strings.TrimSpace(part.Text) != "" {
			return part.Text
		}
	}
	return ""
}
