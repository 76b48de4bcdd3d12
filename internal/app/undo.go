package app

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/pkg/ledger"
)

type UndoOptions struct {
	Root    string
	BatchID string
	Verbose bool
	Console bool
}

var ErrNoHistory = errors.New("没有可撤销的历史记录")

// RunUndo 撤销指定批次，未指定时撤销最近一个批次
func RunUndo(opts *UndoOptions) ([]ledger.UndoResult, error) {
	cfg, err := setup(opts.Verbose, opts.Console)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	exists, err := storeExists(fs, cfg, opts.Root)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNoHistory
	}

	store, err := openStore(fs, cfg, opts.Root)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	results, err := ledger.Undo(fs, store, opts.BatchID)
	if errors.Is(err, ledger.ErrBatchNotFound) && opts.BatchID == "" {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("撤销失败: %w", err)
	}
	return results, nil
}
