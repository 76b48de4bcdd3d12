package internal

const (
	// 历史数据库默认路径
	DefaultDatabasePath = "~/.doc-renamer/history.db"

	// 配置文件默认路径
	DefaultConfigPath = "~/.doc-renamer/config.yaml"

	// 重命名日志（sidecar）文件名，写在扫描根目录下
	DefaultLedgerFile = ".doc-renamer-ledger.jsonl"

	// 提取并发数
	DefaultWorkers = 4

	// 候选文件名最大长度（字符数）
	DefaultMaxNameLength = 100

	// 段落标题截取长度（字符数）
	DefaultMaxTitleChars = 80

	// 冲突解决最大尝试次数
	DefaultMaxAttempts = 10000

	// 缓冲区大小
	DefaultBufferSize = 1000
)
