package app

import (
	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/pkg/ledger"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

type HistoryOptions struct {
	Root    string
	Verbose bool
	Console bool
}

// RunHistory 读取日志中的全部批次
func RunHistory(opts *HistoryOptions) ([]ledger.Batch, error) {
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
		logger.Get().Info().Msg("没有找到历史记录")
		return nil, nil
	}

	store, err := openStore(fs, cfg, opts.Root)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return ledger.LoadBatches(store)
}
