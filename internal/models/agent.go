package models

import (
	"time"
)

type AgentConfig struct {
	ModelID       string
	MaxIterations int
	ModelTimeout  time.Duration
	ToolTimeout   time.Duration
	TurnTimeout   time.Duration
	ParallelTools bool
}

type AgentUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *AgentUsage) Add(prompt, completion int) {
	u.PromptTokens += prompt
	u.CompletionTokens += completion
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
}

// TurnResult is what a completed turn hands back to a front end.
type TurnResult struct {
	ThreadID   string      `json:"thread_id"`
	Answer     string      `json:"answer"`
	Iterations int         `json:"iterations"`
	ToolCalls  int         `json:"tool_calls"`
	Usage      *AgentUsage `json:"usage,omitempty"`
}

const FallbackAnswer = "Sorry, I couldn't generate a meaningful response."

// DisplayAnswer returns the answer text, or FallbackAnswer when the model produced nothing.
func (r *TurnResult) DisplayAnswer() string {
	if r == nil || r.Answer == "" {
		return FallbackAnswer
	}
	return r.Answer
}
