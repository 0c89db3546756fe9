package models

type AgentMessageType string

const (
	AgentMessageTypeStartThinking       AgentMessageType = "start_thinking"
	AgentMessageTypeThought             AgentMessageType = "thought"
	AgentMessageTypeExecutingToolStart  AgentMessageType = "executing_tool_start"
	AgentMessageTypeExecutingToolFinish AgentMessageType = "executing_tool_finish"
	AgentMessageTypeStepFinished        AgentMessageType = "step_finished"
	AgentMessageTypeFinalResponse       AgentMessageType = "final_response"
	AgentMessageTypeError               AgentMessageType = "error"
)

// Step names one state of the control loop.
type Step string

const (
	StepReason Step = "reason"
	StepAct    Step = "act"
	StepDone   Step = "done"
)

const (
	StatusPlanning  = "Agent is planning next steps..."
	StatusSearching = "Searching external sources..."
)

// StatusLabel is the progress label a UI shows once step has finished.
func StatusLabel(step Step) string {
	switch step {
	case StepReason:
		return StatusPlanning
	case StepAct:
		return StatusSearching
	default:
		return ""
	}
}

type AgentMessage interface {
	GetType() AgentMessageType
}

type AgentStartThinking struct {
	Iteration int `json:"iteration"`
}

func (m AgentStartThinking) GetType() AgentMessageType {
	return AgentMessageTypeStartThinking
}

type AgentThought struct {
	Content string `json:"content"`
}

func (m AgentThought) GetType() AgentMessageType {
	return AgentMessageTypeThought
}

type AgentExecutingToolStart struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"`
}

func (m AgentExecutingToolStart) GetType() AgentMessageType {
	return AgentMessageTypeExecutingToolStart
}

type AgentExecutingToolFinish struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Args    string `json:"args"`
	Content string `json:"content"`
	Failed  bool   `json:"failed"`
}

func (m AgentExecutingToolFinish) GetType() AgentMessageType {
	return AgentMessageTypeExecutingToolFinish
}

type AgentStepFinished struct {
	Step Step `json:"step"`
}

func (m AgentStepFinished) GetType() AgentMessageType {
	return AgentMessageTypeStepFinished
}

type AgentFinalResponse struct {
	Content string `json:"content"`
}

func (m AgentFinalResponse) GetType() AgentMessageType {
	return AgentMessageTypeFinalResponse
}

type AgentError struct {
	Error string `json:"error"`
}

func (m AgentError) GetType() AgentMessageType {
	return AgentMessageTypeError
}
