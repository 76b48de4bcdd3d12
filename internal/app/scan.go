package app

import (
	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/pkg/scanner"
)

type ScanOptions struct {
	Root    string
	Verbose bool
	Console bool
}

// RunScan 扫描目录并按类别汇总
func RunScan(opts *ScanOptions) (*scanner.Report, error) {
	cfg, err := setup(opts.Verbose, opts.Console)
	if err != nil {
		return nil, err
	}

	walker := scanner.NewFileWalker(afero.NewOsFs())
	walker.Recursive = cfg.Scanner.Recursive
	walker.IncludeHidden = cfg.Scanner.IncludeHidden

	files, err := walker.Scan(opts.Root)
	if err != nil {
		return nil, err
	}

	report := scanner.Summarize(files)
	return &report, nil
}
