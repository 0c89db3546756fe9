package service

import (
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
)

func TestConversationAppendOnly(t *testing.T) {
	conv := NewConversation("t1")
	clock := int64(0)
	conv.now = func() time.Time {
		clock++
		return time.UnixMilli(clock)
	}

	conv.Append(schema.UserMessage("one"))
	conv.Append(nil)
	snapshot := conv.Messages()

	conv.Append(&schema.Message{Role: schema.Assistant, Content: "two"})
	conv.Append(schema.UserMessage("three"))

	if len(snapshot) != 1 {
		t.Fatalf("snapshot changed after append: %d", len(snapshot))
	}

	msgs := conv.Messages()
	want := []string{"one", "two", "three"}
	if len(msgs) != len(want) {
		t.Fatalf("len = %d", len(msgs))
	}
	for i, w := range want {
		if msgs[i].Content != w {
			t.Fatalf("message %d = %q, want %q", i, msgs[i].Content, w)
		}
	}
	if msgs[0] != snapshot[0] {
		t.Fatalf("earlier messages must be kept as-is")
	}

	ts := conv.Timestamps()
	if len(ts) != 3 || ts[0] != 1 || ts[2] != 3 {
		t.Fatalf("timestamps = %v", ts)
	}

	msgs[0] = schema.UserMessage("overwrite")
	if conv.Messages()[0].Content != "one" {
		t.Fatalf("caller mutation leaked into the conversation")
	}
}

func TestRestoreConversation(t *testing.T) {
	msgs := []*schema.Message{schema.UserMessage("a"), {Role: schema.Assistant, Content: "b"}}

	if _, err := RestoreConversation("t1", msgs, []int64{1}); err == nil {
		t.Fatalf("expected mismatch error")
	}

	conv, err := RestoreConversation("t1", msgs, []int64{1, 2})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	conv.Append(schema.UserMessage("c"))

	if len(msgs) != 2 {
		t.Fatalf("restore must copy the input slice")
	}
	if conv.Len() != 3 || conv.ThreadID() != "t1" {
		t.Fatalf("conv = %d messages, thread %s", conv.Len(), conv.ThreadID())
	}
}
