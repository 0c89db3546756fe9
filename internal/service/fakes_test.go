package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/zjregee/scout/internal/models"
)

type scriptedStep struct {
	msg   *schema.Message
	err   error
	block bool
}

// scriptedModel replays canned responses and records every request it saw.
type scriptedModel struct {
	mu         sync.Mutex
	steps      []scriptedStep
	inputs     [][]*schema.Message
	options    []*model.Options
	boundTools []*schema.ToolInfo
}

func newScriptedModel(steps ...scriptedStep) *scriptedModel {
	return &scriptedModel{steps: steps}
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, append([]*schema.Message(nil), input...))
	m.options = append(m.options, model.GetCommonOptions(&model.Options{}, opts...))
	if len(m.steps) == 0 {
		m.mu.Unlock()
		return nil, errors.New("no scripted response available")
	}
	step := m.steps[0]
	m.steps = m.steps[1:]
	m.mu.Unlock()

	if step.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return step.msg, step.err
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.mu.Lock()
	m.boundTools = tools
	m.mu.Unlock()
	return m, nil
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

func (m *scriptedModel) input(i int) []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[i]
}

type fakeTool struct {
	name string
	run  func(ctx context.Context, args string) (string, error)

	mu   sync.Mutex
	args []string
}

func (f *fakeTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: f.name, Desc: "fake " + f.name}, nil
}

func (f *fakeTool) InvokableRun(ctx context.Context, args string, _ ...tool.Option) (string, error) {
	f.mu.Lock()
	f.args = append(f.args, args)
	f.mu.Unlock()
	if f.run == nil {
		return "ok", nil
	}
	return f.run(ctx, args)
}

func (f *fakeTool) invocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.args...)
}

func answer(content string) scriptedStep {
	return scriptedStep{msg: &schema.Message{Role: schema.Assistant, Content: content}}
}

func toolCalls(calls ...schema.ToolCall) scriptedStep {
	return scriptedStep{msg: &schema.Message{Role: schema.Assistant, ToolCalls: calls}}
}

func call(id, name, args string) schema.ToolCall {
	return schema.ToolCall{ID: id, Function: schema.FunctionCall{Name: name, Arguments: args}}
}

func newTestAgent(t *testing.T, cfg models.AgentConfig, m *scriptedModel, tools ...*fakeTool) *Agent {
	t.Helper()

	infos := make([]*schema.ToolInfo, 0, len(tools))
	toolsMap := make(map[string]tool.InvokableTool, len(tools))
	for _, ft := range tools {
		info, _ := ft.Info(context.Background())
		infos = append(infos, info)
		toolsMap[ft.name] = ft
	}

	client, err := NewModelClient(m, infos)
	if err != nil {
		t.Fatalf("model client: %v", err)
	}

	if cfg.ModelID == "" {
		cfg.ModelID = "test-model"
	}
	agent, err := NewAgent(cfg, client, toolsMap)
	if err != nil {
		t.Fatalf("agent: %v", err)
	}
	return agent
}

// recorder collects observer events.
type recorder struct {
	mu     sync.Mutex
	events []models.AgentMessage
}

func (r *recorder) observe(msg models.AgentMessage) {
	r.mu.Lock()
	r.events = append(r.events, msg)
	r.mu.Unlock()
}

func (r *recorder) steps() []models.Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	var steps []models.Step
	for _, e := range r.events {
		if s, ok := e.(models.AgentStepFinished); ok {
			steps = append(steps, s.Step)
		}
	}
	return steps
}

func (r *recorder) count(typ models.AgentMessageType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.GetType() == typ {
			n++
		}
	}
	return n
}
