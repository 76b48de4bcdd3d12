// Package ledger 是重命名操作的预写日志。
//
// 每次重命名前先追加一条 record 事件并持久化，之后再追加 outcome 事件记录结果。
// 日志只追加不修改，进程崩溃后仍可读取，用于预览、历史查询和撤销。
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/hasher"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

// 条目状态
const (
	OutcomePending  = "pending"  // 已记录，尚未执行或结果未知
	OutcomePlanned  = "planned"  // 预览模式，不会执行
	OutcomeRenamed  = "renamed"
	OutcomeFailed   = "failed"
	OutcomeReverted = "reverted"
)

var ErrUnknownEntry = errors.New("未知的日志条目")

// Fingerprint 重命名时文件的大小和内容哈希，撤销前用于判断文件是否被外部修改
type Fingerprint struct {
	Size   int64  `json:"size"`
	Digest string `json:"digest,omitempty"`
}

// FingerprintOf 计算文件指纹
func FingerprintOf(fs afero.Fs, path string) (Fingerprint, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	digest, err := hasher.Digest(fs, path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Size: info.Size(), Digest: digest}, nil
}

// Entry 一条重命名记录
type Entry struct {
	ID           string
	BatchID      string
	Mode         internal.Mode
	OriginalPath string
	NewPath      string
	Fingerprint  Fingerprint
	Timestamp    time.Time
	Outcome      string
	Reason       string
}

// Ledger 单个批次的日志，由批处理独占使用
type Ledger struct {
	mu      sync.Mutex
	store   Store
	batchID string
	mode    internal.Mode
	entries []*Entry
	index   map[string]*Entry
}

func New(store Store, mode internal.Mode) *Ledger {
	return &Ledger{
		store:   store,
		batchID: uuid.NewString(),
		mode:    mode,
		index:   make(map[string]*Entry),
	}
}

func (l *Ledger) BatchID() string {
	return l.batchID
}

func (l *Ledger) Mode() internal.Mode {
	return l.mode
}

// Record 追加一条待执行的重命名，返回时记录已经持久化
func (l *Ledger) Record(originalPath, newPath string, fp Fingerprint) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := &Entry{
		ID:           uuid.NewString(),
		BatchID:      l.batchID,
		Mode:         l.mode,
		OriginalPath: originalPath,
		NewPath:      newPath,
		Fingerprint:  fp,
		Timestamp:    time.Now(),
		Outcome:      OutcomePending,
	}
	if l.mode == internal.ModePreview {
		entry.Outcome = OutcomePlanned
	}

	ev := Event{
		Kind:         EventRecord,
		BatchID:      entry.BatchID,
		EntryID:      entry.ID,
		Mode:         entry.Mode,
		OriginalPath: entry.OriginalPath,
		NewPath:      entry.NewPath,
		Fingerprint:  &fp,
		Outcome:      entry.Outcome,
		Time:         entry.Timestamp,
	}
	if err := l.store.Append(ev); err != nil {
		return "", fmt.Errorf("写入日志失败: %w", err)
	}

	l.entries = append(l.entries, entry)
	l.index[entry.ID] = entry

	logger.Get().Debug().Str("entry", entry.ID).Msgf("记录重命名: %s -> %s", originalPath, newPath)
	return entry.ID, nil
}

// MarkOutcome 记录条目的执行结果
func (l *Ledger) MarkOutcome(id, outcome, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}

	ev := Event{
		Kind:    EventOutcome,
		BatchID: l.batchID,
		EntryID: id,
		Outcome: outcome,
		Reason:  reason,
		Time:    time.Now(),
	}
	if err := l.store.Append(ev); err != nil {
		return fmt.Errorf("写入日志失败: %w", err)
	}

	entry.Outcome = outcome
	entry.Reason = reason
	return nil
}

// Entries 按记录顺序返回所有条目的副本
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	return out
}
