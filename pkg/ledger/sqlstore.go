package ledger

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

type eventRecord struct {
	ID           int64  `gorm:"primaryKey"`
	Kind         string `gorm:"not null"`
	BatchID      string `gorm:"index;not null"`
	EntryID      string `gorm:"index;not null"`
	Mode         string
	OriginalPath string
	NewPath      string
	Size         int64
	Digest       string
	HasPrint     bool
	Outcome      string
	Reason       string
	CreatedAt    time.Time `gorm:"not null"`
}

func (eventRecord) TableName() string {
	return "ledger_events"
}

// SQLStore 把事件写入 SQLite，适合跨目录保存全部历史
type SQLStore struct {
	db *gorm.DB
}

func OpenSQLStore(dbPath string) (*SQLStore, error) {
	expandedPath, err := expandPath(dbPath)
	if err != nil {
		logger.Get().Error().Err(err).Msg("扩展数据库路径失败")
		return nil, err
	}

	logger.Get().Info().Msgf("初始化历史数据库，路径: %s", expandedPath)

	if err := os.MkdirAll(filepath.Dir(expandedPath), 0755); err != nil {
		logger.Get().Error().Err(err).Msgf("创建数据库目录失败: %s", filepath.Dir(expandedPath))
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(expandedPath+"?_journal_mode=WAL&_synchronous=FULL"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Get().Error().Err(err).Msg("打开数据库连接失败")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Get().Error().Err(err).Msg("获取数据库连接失败")
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&eventRecord{}); err != nil {
		logger.Get().Error().Err(err).Msg("创建数据库表失败")
		sqlDB.Close()
		return nil, err
	}

	return &SQLStore{db: db}, nil
}

func expandPath(path string) (string, error) {
	if len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == '\\') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

func (s *SQLStore) Append(ev Event) error {
	rec := &eventRecord{
		Kind:         string(ev.Kind),
		BatchID:      ev.BatchID,
		EntryID:      ev.EntryID,
		Mode:         string(ev.Mode),
		OriginalPath: ev.OriginalPath,
		NewPath:      ev.NewPath,
		Outcome:      ev.Outcome,
		Reason:       ev.Reason,
		CreatedAt:    ev.Time,
	}
	if ev.Fingerprint != nil {
		rec.HasPrint = true
		rec.Size = ev.Fingerprint.Size
		rec.Digest = ev.Fingerprint.Digest
	}

	if err := s.db.Create(rec).Error; err != nil {
		logger.Get().Error().Err(err).Msgf("写入日志事件失败: %s", ev.EntryID)
		return err
	}
	return nil
}

func (s *SQLStore) Events() ([]Event, error) {
	var records []eventRecord
	if err := s.db.Order("id asc").Find(&records).Error; err != nil {
		logger.Get().Error().Err(err).Msg("查询日志事件失败")
		return nil, err
	}

	events := make([]Event, 0, len(records))
	for _, rec := range records {
		ev := Event{
			Kind:         EventKind(rec.Kind),
			BatchID:      rec.BatchID,
			EntryID:      rec.EntryID,
			Mode:         internal.Mode(rec.Mode),
			OriginalPath: rec.OriginalPath,
			NewPath:      rec.NewPath,
			Outcome:      rec.Outcome,
			Reason:       rec.Reason,
			Time:         rec.CreatedAt,
		}
		if rec.HasPrint {
			ev.Fingerprint = &Fingerprint{Size: rec.Size, Digest: rec.Digest}
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *SQLStore) Close() error {
	logger.Get().Debug().Msg("关闭历史数据库")
	sqlDB, err := s.db.DB()
	if err != nil {
		logger.Get().Error().Err(err).Msg("获取数据库连接失败")
		return err
	}
	return sqlDB.Close()
}
