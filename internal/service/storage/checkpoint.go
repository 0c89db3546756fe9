package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/zjregee/scout/internal/models"
)

const threadKeyPrefix = "thread:"

// Checkpoint is the durable snapshot of one thread after a completed turn.
type Checkpoint struct {
	Info              *models.ThreadInfo `json:"info"`
	Messages          []*schema.Message  `json:"messages"`
	MessageTimestamps []int64            `json:"message_timestamps"`
	Usage             *models.AgentUsage `json:"usage"`
}

// CheckpointStore persists conversation state keyed by thread id.
// A single writer per thread is assumed.
type CheckpointStore interface {
	Save(ctx context.Context, cp *Checkpoint) error
	Load(ctx context.Context, threadID string) (*Checkpoint, bool, error)
	List(ctx context.Context) ([]*models.ThreadInfo, error)
	Close() error
}

func validateCheckpoint(cp *Checkpoint) error {
	if cp == nil || cp.Info == nil {
		return fmt.Errorf("thread info is required")
	}
	if strings.TrimSpace(cp.Info.ID) == "" {
		return fmt.Errorf("thread id is required")
	}
	if len(cp.Messages) != len(cp.MessageTimestamps) {
		return fmt.Errorf("thread %s messages and timestamps mismatch", cp.Info.ID)
	}
	return nil
}

func sortThreadInfos(infos []*models.ThreadInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].UpdatedAt != infos[j].UpdatedAt {
			return infos[i].UpdatedAt > infos[j].UpdatedAt
		}
		return infos[i].ID < infos[j].ID
	})
}

// BoltStore keeps checkpoints in a bbolt file, one JSON record per thread.
type BoltStore struct {
	db *database
}

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(_ context.Context, cp *Checkpoint) error {
	if err := validateCheckpoint(cp); err != nil {
		return err
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal thread %s: %w", cp.Info.ID, err)
	}

	return s.db.put([]byte(threadKeyPrefix+cp.Info.ID), data)
}

func (s *BoltStore) Load(_ context.Context, threadID string) (*Checkpoint, bool, error) {
	if threadID == "" {
		return nil, false, fmt.Errorf("thread id is required")
	}

	value, err := s.db.get([]byte(threadKeyPrefix + threadID))
	if err != nil {
		return nil, false, err
	}
	if len(value) == 0 {
		return nil, false, nil
	}

	var cp Checkpoint
	if err := json.Unmarshal(value, &cp); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal thread %s: %w", threadID, err)
	}

	return &cp, true, nil
}

func (s *BoltStore) List(_ context.Context) ([]*models.ThreadInfo, error) {
	entries, err := s.db.list([]byte(threadKeyPrefix))
	if err != nil {
		return nil, err
	}

	infos := make([]*models.ThreadInfo, 0, len(entries))
	for key, value := range entries {
		if len(value) == 0 {
			continue
		}

		var stored Checkpoint
		if err := json.Unmarshal(value, &stored); err != nil {
			return nil, fmt.Errorf("failed to unmarshal thread %s: %w", key, err)
		}

		if stored.Info == nil {
			continue
		}

		infos = append(infos, stored.Info)
	}

	sortThreadInfos(infos)
	return infos, nil
}

func (s *BoltStore) Close() error {
	return s.db.close()
}

// MemoryStore keeps checkpoints for the process lifetime only.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*Checkpoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string]*Checkpoint)}
}

func (s *MemoryStore) Save(_ context.Context, cp *Checkpoint) error {
	if err := validateCheckpoint(cp); err != nil {
		return err
	}

	s.mu.Lock()
	s.threads[cp.Info.ID] = cloneCheckpoint(cp)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, threadID string) (*Checkpoint, bool, error) {
	if threadID == "" {
		return nil, false, fmt.Errorf("thread id is required")
	}

	s.mu.RLock()
	cp, ok := s.threads[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	return cloneCheckpoint(cp), true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.ThreadInfo, error) {
	s.mu.RLock()
	infos := make([]*models.ThreadInfo, 0, len(s.threads))
	for _, cp := range s.threads {
		info := *cp.Info
		infos = append(infos, &info)
	}
	s.mu.RUnlock()

	sortThreadInfos(infos)
	return infos, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// cloneCheckpoint copies the slices and message structs. Messages are never
// mutated after being appended, so their inner slices are shared.
func cloneCheckpoint(cp *Checkpoint) *Checkpoint {
	out := &Checkpoint{
		MessageTimestamps: append([]int64(nil), cp.MessageTimestamps...),
		Messages:          make([]*schema.Message, len(cp.Messages)),
	}
	if cp.Info != nil {
		info := *cp.Info
		out.Info = &info
	}
	if cp.Usage != nil {
		usage := *cp.Usage
		out.Usage = &usage
	}
	for i, msg := range cp.Messages {
		if msg == nil {
			continue
		}
		m := *msg
		out.Messages[i] = &m
	}
	return out
}
