package app

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/extractor"
	"github.com/moyu-x/doc-renamer/pkg/ledger"
	"github.com/moyu-x/doc-renamer/pkg/logger"
	"github.com/moyu-x/doc-renamer/pkg/renamer"
	"github.com/moyu-x/doc-renamer/pkg/scanner"
)

type RenameOptions struct {
	Root    string
	Types   []string
	DryRun  bool
	Verbose bool
	Console bool
}

// RenameJob 一次已经完成扫描、尚未执行的批处理
type RenameJob struct {
	Root    string
	Mode    internal.Mode
	Files   []internal.ScannedFile
	BatchID string

	renamer   *renamer.Renamer
	store     ledger.Store
	onOutcome func(done, total int, o internal.Outcome)
}

// NewRenameJob 加载配置、扫描目录并准备批处理
func NewRenameJob(opts *RenameOptions) (*RenameJob, error) {
	cfg, err := setup(opts.Verbose, opts.Console)
	if err != nil {
		return nil, err
	}

	categories, err := parseTypes(opts.Types)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	walker := scanner.NewFileWalker(fs)
	walker.Recursive = cfg.Scanner.Recursive
	walker.IncludeHidden = cfg.Scanner.IncludeHidden

	files, err := walker.Scan(opts.Root)
	if err != nil {
		return nil, err
	}

	mode := internal.ModeApply
	var store ledger.Store
	if opts.DryRun {
		mode = internal.ModePreview
		store = ledger.NewMemoryStore()
		logger.Get().Info().Msg("=== 预览模式，不会实际修改文件 ===")
	} else {
		if store, err = openStore(fs, cfg, opts.Root); err != nil {
			return nil, err
		}
	}

	job := &RenameJob{
		Root:  opts.Root,
		Mode:  mode,
		Files: files,
		store: store,
	}

	led := ledger.New(store, mode)
	job.BatchID = led.BatchID()
	job.renamer = renamer.New(fs, extractor.New(fs, cfg.Extract.MaxChars), led, renamer.Options{
		Mode:        mode,
		Categories:  categories,
		Workers:     cfg.Extract.Workers,
		MaxAttempts: cfg.Naming.MaxAttempts,
		MaxLength:   cfg.Naming.MaxLength,
		OnOutcome: func(done, total int, o internal.Outcome) {
			if job.onOutcome != nil {
				job.onOutcome(done, total, o)
			}
		},
	})

	return job, nil
}

// Run 执行批处理，onOutcome 可以为空
func (j *RenameJob) Run(ctx context.Context, onOutcome func(done, total int, o internal.Outcome)) (*internal.BatchStats, []internal.Outcome, error) {
	j.onOutcome = onOutcome
	stats, outcomes, err := j.renamer.Run(ctx, j.Files)
	if err != nil {
		return nil, nil, fmt.Errorf("批处理失败: %w", err)
	}
	return stats, outcomes, nil
}

func (j *RenameJob) Stop() {
	j.renamer.Stop()
}

func (j *RenameJob) Close() error {
	return j.store.Close()
}

// RunRename 扫描并处理目录，适用于不需要界面的场景
func RunRename(ctx context.Context, opts *RenameOptions) (*internal.BatchStats, []internal.Outcome, error) {
	job, err := NewRenameJob(opts)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := job.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("关闭日志失败")
		}
	}()

	return job.Run(ctx, nil)
}

// parseTypes 解析类别列表，"all" 表示全部类别
func parseTypes(types []string) ([]internal.Category, error) {
	seen := make(map[internal.Category]bool)
	var out []internal.Category
	for _, t := range types {
		if t == "all" {
			return internal.AllCategories(), nil
		}
		c, err := internal.ParseCategory(t)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}
