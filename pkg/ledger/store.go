package ledger

import (
	"sync"
	"time"

	"github.com/moyu-x/doc-renamer/internal"
)

// 事件类型
type EventKind string

const (
	EventRecord  EventKind = "record"
	EventOutcome EventKind = "outcome"
)

// Event 日志中的一行
type Event struct {
	Kind         EventKind     `json:"kind"`
	BatchID      string        `json:"batch"`
	EntryID      string        `json:"entry"`
	Mode         internal.Mode `json:"mode,omitempty"`
	OriginalPath string        `json:"original,omitempty"`
	NewPath      string        `json:"new,omitempty"`
	Fingerprint  *Fingerprint  `json:"fingerprint,omitempty"`
	Outcome      string        `json:"outcome,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	Time         time.Time     `json:"time"`
}

// Store 事件的持久化后端。Append 返回时事件必须已经落盘
type Store interface {
	Append(ev Event) error
	Events() ([]Event, error)
	Close() error
}

// MemoryStore 不持久化的存储，用于预览模式和测试
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *MemoryStore) Events() ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
