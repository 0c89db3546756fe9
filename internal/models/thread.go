package models

import (
	"github.com/cloudwego/eino/schema"
)

type ThreadInfo struct {
	ID        string `json:"id"`
	Model     string `json:"model"`
	Turns     int    `json:"turns"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type ThreadMessage struct {
	Role      schema.RoleType `json:"role"`
	Content   string          `json:"content"`
	Timestamp int64           `json:"timestamp"`
}

// TranscriptEntry is one line of a front end's displayed history. It is kept
// apart from the conversation state the loop works on.
type TranscriptEntry struct {
	Role    schema.RoleType `json:"role"`
	Content string          `json:"content"`
	HTML    string          `json:"html,omitempty"`
}
