package ledger

import (
	"errors"
	"time"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

var ErrBatchNotFound = errors.New("找不到批次")

// Batch 从事件中还原出的一个批次
type Batch struct {
	ID        string
	Mode      internal.Mode
	StartTime time.Time
	Entries   []Entry
}

// Count 返回处于指定状态的条目数
func (b Batch) Count(outcome string) int {
	n := 0
	for _, e := range b.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

// Revertible 返回可能可以撤销的条目数
func (b Batch) Revertible() int {
	return b.Count(OutcomeRenamed) + b.Count(OutcomePending)
}

// LoadBatches 读取全部事件并按批次折叠，批次和条目都保持写入顺序
func LoadBatches(store Store) ([]Batch, error) {
	events, err := store.Events()
	if err != nil {
		return nil, err
	}
	return foldEvents(events), nil
}

// FindBatch 按 ID 查找批次，id 为空时返回最近一个仍有可撤销条目的执行批次
func FindBatch(batches []Batch, id string) (Batch, error) {
	if id == "" {
		for i := len(batches) - 1; i >= 0; i-- {
			if batches[i].Mode == internal.ModeApply && batches[i].Revertible() > 0 {
				return batches[i], nil
			}
		}
		return Batch{}, ErrBatchNotFound
	}

	for _, b := range batches {
		if b.ID == id {
			return b, nil
		}
	}
	return Batch{}, ErrBatchNotFound
}

func foldEvents(events []Event) []Batch {
	var order []string
	batches := make(map[string]*Batch)
	entries := make(map[string]*Entry)
	entryOrder := make(map[string][]string)

	for _, ev := range events {
		b, ok := batches[ev.BatchID]
		if !ok {
			b = &Batch{ID: ev.BatchID, Mode: ev.Mode, StartTime: ev.Time}
			batches[ev.BatchID] = b
			order = append(order, ev.BatchID)
		}

		switch ev.Kind {
		case EventRecord:
			if b.Mode == "" {
				b.Mode = ev.Mode
			}
			e := &Entry{
				ID:           ev.EntryID,
				BatchID:      ev.BatchID,
				Mode:         ev.Mode,
				OriginalPath: ev.OriginalPath,
				NewPath:      ev.NewPath,
				Timestamp:    ev.Time,
				Outcome:      ev.Outcome,
			}
			if e.Outcome == "" {
				e.Outcome = OutcomePending
			}
			if ev.Fingerprint != nil {
				e.Fingerprint = *ev.Fingerprint
			}
			entries[ev.EntryID] = e
			entryOrder[ev.BatchID] = append(entryOrder[ev.BatchID], ev.EntryID)
		case EventOutcome:
			e, ok := entries[ev.EntryID]
			if !ok {
				logger.Get().Warn().Msgf("结果事件没有对应的记录: %s", ev.EntryID)
				continue
			}
			e.Outcome = ev.Outcome
			e.Reason = ev.Reason
		}
	}

	out := make([]Batch, 0, len(order))
	for _, id := range order {
		b := batches[id]
		for _, eid := range entryOrder[id] {
			b.Entries = append(b.Entries, *entries[eid])
		}
		out = append(out, *b)
	}
	return out
}
