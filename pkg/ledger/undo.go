package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

var ErrPreviewBatch = errors.New("预览批次没有可撤销的操作")

// 撤销时跳过条目的原因
const (
	ReasonNewPathMissing = "new path missing"
	ReasonOriginalExists = "original path occupied"
	ReasonModified       = "modified since rename"
	ReasonNeverRenamed   = "rename never happened"
)

// 撤销结果
type UndoStatus string

const (
	UndoRestored UndoStatus = "restored"
	UndoSkipped  UndoStatus = "skipped"
	UndoFailed   UndoStatus = "failed"
)

type UndoResult struct {
	Entry  Entry
	Status UndoStatus
	Reason string
}

// Undo 按相反顺序把批次中的文件改回原名，batchID 为空时撤销最近一个批次。
// 新路径已不存在、原路径已被占用或内容被修改过的条目会被跳过。
func Undo(fs afero.Fs, store Store, batchID string) ([]UndoResult, error) {
	batches, err := LoadBatches(store)
	if err != nil {
		return nil, fmt.Errorf("读取日志失败: %w", err)
	}

	batch, err := FindBatch(batches, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Mode == internal.ModePreview {
		return nil, ErrPreviewBatch
	}

	logger.Get().Info().Msgf("开始撤销批次 %s，共 %d 条记录", batch.ID, len(batch.Entries))

	var results []UndoResult
	for i := len(batch.Entries) - 1; i >= 0; i-- {
		entry := batch.Entries[i]
		if entry.Outcome != OutcomeRenamed && entry.Outcome != OutcomePending {
			continue
		}

		result := undoEntry(fs, entry)
		if result.Status == UndoRestored {
			ev := Event{
				Kind:    EventOutcome,
				BatchID: entry.BatchID,
				EntryID: entry.ID,
				Outcome: OutcomeReverted,
				Time:    time.Now(),
			}
			if err := store.Append(ev); err != nil {
				// 文件已经改回原名，日志写入失败只影响后续的历史显示
				logger.Get().Error().Err(err).Msgf("写入撤销记录失败: %s", entry.ID)
			}
		}
		results = append(results, result)
	}

	return results, nil
}

func undoEntry(fs afero.Fs, entry Entry) UndoResult {
	result := UndoResult{Entry: entry, Status: UndoSkipped}

	newExists, err := afero.Exists(fs, entry.NewPath)
	if err != nil {
		result.Status, result.Reason = UndoFailed, err.Error()
		return result
	}
	origExists, err := afero.Exists(fs, entry.OriginalPath)
	if err != nil {
		result.Status, result.Reason = UndoFailed, err.Error()
		return result
	}

	// 崩溃时遗留的 pending 条目：新路径存在且原路径不存在说明重命名已经完成
	if entry.Outcome == OutcomePending && (!newExists || origExists) {
		result.Reason = ReasonNeverRenamed
		logger.Get().Warn().Msgf("跳过未执行的重命名: %s", entry.OriginalPath)
		return result
	}

	switch {
	case !newExists:
		result.Reason = ReasonNewPathMissing
	case origExists:
		result.Reason = ReasonOriginalExists
	case modified(fs, entry):
		result.Reason = ReasonModified
	}
	if result.Reason != "" {
		logger.Get().Warn().Msgf("跳过撤销 %s: %s", entry.NewPath, result.Reason)
		return result
	}

	if err := fs.Rename(entry.NewPath, entry.OriginalPath); err != nil {
		logger.Get().Error().Err(err).Msgf("撤销失败: %s", entry.NewPath)
		result.Status, result.Reason = UndoFailed, err.Error()
		return result
	}

	logger.Get().Info().Msgf("已恢复: %s -> %s", entry.NewPath, entry.OriginalPath)
	result.Status = UndoRestored
	return result
}

func modified(fs afero.Fs, entry Entry) bool {
	fp := entry.Fingerprint
	if fp.Size == 0 && fp.Digest == "" {
		return false
	}

	info, err := fs.Stat(entry.NewPath)
	if err != nil || info.Size() != fp.Size {
		return true
	}
	if fp.Digest == "" {
		return false
	}

	current, err := FingerprintOf(fs, entry.NewPath)
	if err != nil {
		return true
	}
	return current.Digest != fp.Digest
}
