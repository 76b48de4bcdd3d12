package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/config"
	"github.com/moyu-x/doc-renamer/pkg/ledger"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

// setup 加载配置并初始化日志，console 为 false 时只写日志文件
func setup(verbose, console bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logLevel := cfg.Logging.Level
	if verbose {
		logLevel = "debug"
	}

	if err := logger.Init(logLevel, cfg.Logging.File, console); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	logger.Get().Info().Msg("加载配置完成")
	return cfg, nil
}

// ledgerPath 返回旁路日志文件路径，未配置时写在扫描根目录下
func ledgerPath(cfg *config.Config, root string) (string, error) {
	if cfg.Ledger.Path != "" {
		return cfg.Ledger.Path, nil
	}
	if root == "" {
		return "", fmt.Errorf("使用 %s 日志后端时必须指定目录", config.BackendFile)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("解析路径失败: %w", err)
	}
	return filepath.Join(abs, internal.DefaultLedgerFile), nil
}

// openStore 按配置打开日志存储
func openStore(fs afero.Fs, cfg *config.Config, root string) (ledger.Store, error) {
	switch strings.ToLower(cfg.Ledger.Backend) {
	case config.BackendSQLite:
		logger.Get().Info().Msgf("日志后端: sqlite (%s)", cfg.Ledger.Database)
		return ledger.OpenSQLStore(cfg.Ledger.Database)
	case config.BackendFile, "":
		path, err := ledgerPath(cfg, root)
		if err != nil {
			return nil, err
		}
		logger.Get().Info().Msgf("日志后端: file (%s)", path)
		return ledger.OpenFileStore(fs, path)
	}
	return nil, fmt.Errorf("未知的日志后端: %q", cfg.Ledger.Backend)
}

// storeExists 文件后端的日志尚未创建时返回 false
func storeExists(fs afero.Fs, cfg *config.Config, root string) (bool, error) {
	if strings.ToLower(cfg.Ledger.Backend) == config.BackendSQLite {
		return true, nil
	}
	path, err := ledgerPath(cfg, root)
	if err != nil {
		return false, err
	}
	return afero.Exists(fs, path)
}
