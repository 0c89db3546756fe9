package service

import (
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
)

// Conversation is the ordered message log of one thread. Messages are only
// ever appended.
type Conversation struct {
	threadID   string
	messages   []*schema.Message
	timestamps []int64
	now        func() time.Time
}

func NewConversation(threadID string) *Conversation {
	return &Conversation{threadID: threadID, now: time.Now}
}

func RestoreConversation(threadID string, messages []*schema.Message, timestamps []int64) (*Conversation, error) {
	if len(messages) != len(timestamps) {
		return nil, fmt.Errorf("thread %s messages and timestamps mismatch", threadID)
	}

	return &Conversation{
		threadID:   threadID,
		messages:   append([]*schema.Message(nil), messages...),
		timestamps: append([]int64(nil), timestamps...),
		now:        time.Now,
	}, nil
}

func (c *Conversation) ThreadID() string {
	return c.threadID
}

func (c *Conversation) Append(msg *schema.Message) {
	if msg == nil {
		return
	}
	c.messages = append(c.messages, msg)
	c.timestamps = append(c.timestamps, c.now().UnixMilli())
}

// Messages returns a copy of the log; appending to it does not touch the conversation.
func (c *Conversation) Messages() []*schema.Message {
	return append([]*schema.Message(nil), c.messages...)
}

func (c *Conversation) Timestamps() []int64 {
	return append([]int64(nil), c.timestamps...)
}

func (c *Conversation) Len() int {
	return len(c.messages)
}
