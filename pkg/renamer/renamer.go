// Package renamer 按顺序驱动提取、命名、冲突解决、记录和重命名。
package renamer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/extractor"
	"github.com/moyu-x/doc-renamer/pkg/ledger"
	"github.com/moyu-x/doc-renamer/pkg/logger"
	"github.com/moyu-x/doc-renamer/pkg/naming"
)

type Options struct {
	Mode        internal.Mode
	Categories  []internal.Category
	Workers     int
	MaxAttempts int
	MaxLength   int

	// OnOutcome 每处理完一个文件调用一次，done 从 1 开始
	OnOutcome func(done, total int, outcome internal.Outcome)
}

type Renamer struct {
	fs        afero.Fs
	extractor *extractor.Extractor
	ledger    *ledger.Ledger
	synth     *naming.Synthesizer
	resolver  *naming.Resolver
	opts      Options
	stopped   atomic.Bool
}

func New(fs afero.Fs, ext *extractor.Extractor, led *ledger.Ledger, opts Options) *Renamer {
	if opts.Mode == "" {
		opts.Mode = internal.ModePreview
	}
	if opts.Workers <= 0 {
		opts.Workers = internal.DefaultWorkers
	}

	logger.Get().Info().Msgf("创建重命名处理器，模式: %s", opts.Mode)
	return &Renamer{
		fs:        fs,
		extractor: ext,
		ledger:    led,
		synth:     naming.NewSynthesizer(opts.MaxLength),
		resolver:  naming.NewResolver(opts.MaxAttempts),
		opts:      opts,
	}
}

// Stop 请求在当前文件处理完成后停止
func (r *Renamer) Stop() {
	if r.stopped.CompareAndSwap(false, true) {
		logger.Get().Warn().Msg("收到停止请求，当前文件处理完成后停止")
	}
}

// Run 处理一批文件，每个文件产生一条结果。
// 只有输入为空或未选择类别时返回错误，单个文件的失败记录在结果中。
func (r *Renamer) Run(ctx context.Context, files []internal.ScannedFile) (*internal.BatchStats, []internal.Outcome, error) {
	if len(files) == 0 {
		return nil, nil, ErrNoFiles
	}
	if len(r.opts.Categories) == 0 {
		return nil, nil, ErrNoCategories
	}

	selected := make(map[internal.Category]bool, len(r.opts.Categories))
	for _, c := range r.opts.Categories {
		selected[c] = true
	}

	stats := &internal.BatchStats{
		BatchID:   r.ledger.BatchID(),
		Mode:      r.opts.Mode,
		StartTime: time.Now(),
	}

	logger.Get().Info().Msgf("开始处理批次 %s，共 %d 个文件", stats.BatchID, len(files))

	// 目录中已有的条目只在批次开始时读取一次
	seedErrs := r.seedDirectories(files, selected)

	pool, err := extractor.NewPool(r.extractor, r.opts.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("创建提取池失败: %w", err)
	}
	defer pool.Close()

	// 提取可以并发，结果按原顺序消费
	futures := make([]<-chan internal.ExtractionResult, len(files))
	window := r.opts.Workers * 2
	submitted := 0
	submitUpTo := func(n int) {
		for ; submitted < len(files) && submitted < n; submitted++ {
			if f := files[submitted]; r.needsExtraction(f, selected) && seedErrs[f.Dir()] == nil {
				futures[submitted] = pool.Submit(f)
			}
		}
	}

	outcomes := make([]internal.Outcome, 0, len(files))
	for i, file := range files {
		if r.stopped.Load() || ctx.Err() != nil {
			stats.Stopped = true
			logger.Get().Warn().Msgf("批处理已停止，已处理: %d/%d 个文件", i, len(files))
			break
		}

		submitUpTo(i + window)

		var outcome internal.Outcome
		switch {
		case file.Category == internal.CategoryUnknown:
			outcome = skipped(file, internal.ReasonUnsupported)
		case !selected[file.Category]:
			outcome = skipped(file, internal.ReasonNotSelected)
		case seedErrs[file.Dir()] != nil:
			outcome = failed(file, classifyError(seedErrs[file.Dir()]))
		default:
			outcome = r.process(<-futures[i])
		}

		outcomes = append(outcomes, outcome)
		stats.Add(outcome)
		r.logOutcome(i+1, len(files), outcome)
		if r.opts.OnOutcome != nil {
			r.opts.OnOutcome(i+1, len(files), outcome)
		}
	}

	stats.EndTime = time.Now()
	logger.Get().Info().Msgf("批处理完成，总耗时: %v", stats.EndTime.Sub(stats.StartTime))
	logger.Get().Info().Msgf("统计: Total=%d, Renamed=%d, Skipped=%d, Failed=%d",
		stats.Total, stats.Renamed, stats.Skipped, stats.Failed)
	return stats, outcomes, nil
}

func (r *Renamer) needsExtraction(f internal.ScannedFile, selected map[internal.Category]bool) bool {
	return f.Category != internal.CategoryUnknown && selected[f.Category]
}

func (r *Renamer) seedDirectories(files []internal.ScannedFile, selected map[internal.Category]bool) map[string]error {
	errs := make(map[string]error)
	seen := make(map[string]bool)
	for _, f := range files {
		dir := f.Dir()
		if seen[dir] || !r.needsExtraction(f, selected) {
			continue
		}
		seen[dir] = true
		if err := r.resolver.Seed(r.fs, dir); err != nil {
			logger.Get().Error().Err(err).Msgf("读取目录失败: %s", dir)
			errs[dir] = err
		}
	}
	return errs
}

// process 对单个已提取的文件执行命名、记录和重命名
func (r *Renamer) process(res internal.ExtractionResult) internal.Outcome {
	file := res.File

	if res.Status == internal.ExtractionCorrupt {
		o := failed(file, internal.ReasonCorrupt)
		if res.Err != nil {
			o.Detail = res.Err.Error()
		}
		return o
	}

	candidate := r.synth.Synthesize(res)
	resolved, err := r.resolver.Resolve(file.Dir(), candidate, file.Path)
	if err != nil {
		logger.Get().Error().Err(err).Msgf("无法生成唯一文件名: %s", file.Path)
		return failed(file, classifyError(err))
	}

	outcome := internal.Outcome{
		OriginalPath: file.Path,
		OriginalName: file.Name(),
		NewName:      resolved.FileName(),
		NewPath:      filepath.Join(file.Dir(), resolved.FileName()),
		Category:     file.Category,
		Extracted:    res.Text,
	}

	if strings.EqualFold(resolved.FileName(), file.Name()) {
		outcome.Status = internal.StatusSkipped
		outcome.Reason = internal.ReasonAlreadyNamed
		return outcome
	}

	if r.opts.Mode == internal.ModeApply {
		if reason := r.checkTarget(file.Path, outcome.NewPath); reason != "" {
			outcome.Status, outcome.Reason = internal.StatusFailed, reason
			return outcome
		}
	}

	fp := ledger.Fingerprint{Size: file.Size}
	if r.opts.Mode == internal.ModeApply {
		if fp, err = ledger.FingerprintOf(r.fs, file.Path); err != nil {
			outcome.Status, outcome.Reason = internal.StatusFailed, classifyError(err)
			return outcome
		}
	}

	// 先持久化记录，再修改文件系统
	id, err := r.ledger.Record(file.Path, outcome.NewPath, fp)
	if err != nil {
		logger.Get().Error().Err(err).Msgf("写入日志失败，跳过重命名: %s", file.Path)
		outcome.Status, outcome.Reason = internal.StatusFailed, ReasonLedgerWriteFail
		return outcome
	}
	outcome.EntryID = id

	if r.opts.Mode == internal.ModePreview {
		outcome.Status = internal.StatusRenamed
		outcome.Preview = true
		return outcome
	}

	if err := r.fs.Rename(file.Path, outcome.NewPath); err != nil {
		outcome.Status, outcome.Reason = internal.StatusFailed, classifyError(err)
		logger.Get().Error().Err(err).Msgf("重命名失败: %s", file.Path)
		r.markOutcome(id, ledger.OutcomeFailed, outcome.Reason)
		return outcome
	}

	outcome.Status = internal.StatusRenamed
	r.markOutcome(id, ledger.OutcomeRenamed, "")
	return outcome
}

// checkTarget 重命名前确认源文件仍在、目标不存在，不覆盖任何文件
func (r *Renamer) checkTarget(src, dst string) string {
	if _, err := r.fs.Stat(src); err != nil {
		return classifyError(err)
	}
	exists, err := afero.Exists(r.fs, dst)
	if err != nil {
		return classifyError(err)
	}
	if exists {
		return ReasonDestExists
	}
	return ""
}

func (r *Renamer) markOutcome(id, outcome, reason string) {
	if err := r.ledger.MarkOutcome(id, outcome, reason); err != nil {
		logger.Get().Error().Err(err).Msgf("写入结果失败: %s", id)
	}
}

func (r *Renamer) logOutcome(done, total int, o internal.Outcome) {
	switch o.Status {
	case internal.StatusRenamed:
		if o.Preview {
			logger.Get().Info().Msgf("[%d/%d] 预览: %s -> %s", done, total, o.OriginalName, o.NewName)
		} else {
			logger.Get().Info().Msgf("[%d/%d] 已重命名: %s -> %s", done, total, o.OriginalName, o.NewName)
		}
	case internal.StatusSkipped:
		logger.Get().Debug().Msgf("[%d/%d] 跳过: %s (%s)", done, total, o.OriginalName, o.Reason)
	case internal.StatusFailed:
		logger.Get().Error().Str("detail", o.Detail).Msgf("[%d/%d] 失败: %s (%s)", done, total, o.OriginalName, o.Reason)
	}
}

func skipped(file internal.ScannedFile, reason string) internal.Outcome {
	return internal.Outcome{
		OriginalPath: file.Path,
		OriginalName: file.Name(),
		Category:     file.Category,
		Status:       internal.StatusSkipped,
		Reason:       reason,
	}
}

func failed(file internal.ScannedFile, reason string) internal.Outcome {
	return internal.Outcome{
		OriginalPath: file.Path,
		OriginalName: file.Name(),
		Category:     file.Category,
		Status:       internal.StatusFailed,
		Reason:       reason,
	}
}
