package internal

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// 文件类别
type Category string

const (
	CategoryWord       Category = "word"
	CategoryExcel      Category = "excel"
	CategoryPowerPoint Category = "powerpoint"
	CategoryPDF        Category = "pdf"
	CategoryCSV        Category = "csv"
	CategoryUnknown    Category = "unknown"
)

// AllCategories 按固定顺序返回所有支持的类别
func AllCategories() []Category {
	return []Category{CategoryWord, CategoryExcel, CategoryPowerPoint, CategoryPDF, CategoryCSV}
}

var categoryExtensions = map[Category][]string{
	CategoryWord:       {".doc", ".docx"},
	CategoryExcel:      {".xls", ".xlsx"},
	CategoryPowerPoint: {".ppt", ".pptx"},
	CategoryPDF:        {".pdf"},
	CategoryCSV:        {".csv"},
}

// Extensions 返回类别对应的扩展名（小写，带点）
func (c Category) Extensions() []string {
	return categoryExtensions[c]
}

// FriendlyName 返回类别的显示名称
func (c Category) FriendlyName() string {
	switch c {
	case CategoryWord:
		return "Word 文档"
	case CategoryExcel:
		return "Excel 表格"
	case CategoryPowerPoint:
		return "PowerPoint 演示文稿"
	case CategoryPDF:
		return "PDF 文档"
	case CategoryCSV:
		return "CSV 文件"
	default:
		return "未知类型"
	}
}

// CategoryForExt 根据扩展名判断类别，大小写不敏感
func CategoryForExt(ext string) Category {
	ext = strings.ToLower(ext)
	for cat, exts := range categoryExtensions {
		for _, e := range exts {
			if e == ext {
				return cat
			}
		}
	}
	return CategoryUnknown
}

// ParseCategory 解析命令行中的类别名称
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word", "doc", "docx":
		return CategoryWord, nil
	case "excel", "xls", "xlsx":
		return CategoryExcel, nil
	case "powerpoint", "ppt", "pptx":
		return CategoryPowerPoint, nil
	case "pdf":
		return CategoryPDF, nil
	case "csv":
		return CategoryCSV, nil
	}
	return CategoryUnknown, fmt.Errorf("未知的文件类别: %q", s)
}

// 扫描得到的文件描述，扫描后不再修改
type ScannedFile struct {
	Path     string // 绝对路径
	Ext      string // 原始扩展名（保留大小写）
	Category Category
	Size     int64
	Readable bool // 文件头与类别匹配且非空
}

// Dir 返回文件所在目录
func (f ScannedFile) Dir() string {
	return filepath.Dir(f.Path)
}

// Name 返回文件名
func (f ScannedFile) Name() string {
	return filepath.Base(f.Path)
}

// 提取状态
type ExtractionStatus string

const (
	ExtractionOK          ExtractionStatus = "ok"
	ExtractionEmpty       ExtractionStatus = "empty"
	ExtractionCorrupt     ExtractionStatus = "corrupt"
	ExtractionUnsupported ExtractionStatus = "unsupported"
)

// 提取结果，提取失败以状态表示而不是错误
type ExtractionResult struct {
	File   ScannedFile
	Text   string
	Status ExtractionStatus
	Err    error // 仅用于说明 corrupt 的原因
}

// 候选文件名
type NameCandidate struct {
	Base      string // 清理前的文本
	Sanitized string // 清理后的文件名主体，保证非空
	Ext       string // 小写扩展名，带点
	Fallback  bool   // 是否使用了 untitled_<hash> 兜底名称
}

// FileName 返回 Sanitized + Ext
func (c NameCandidate) FileName() string {
	return c.Sanitized + c.Ext
}

// 冲突解决后的最终文件名
type ResolvedName struct {
	Base    string
	Ext     string
	Counter int // 0 表示未加序号
}

// FileName 返回 Base + Ext
func (r ResolvedName) FileName() string {
	return r.Base + r.Ext
}

// 操作模式
type Mode string

const (
	ModePreview Mode = "preview"
	ModeApply   Mode = "apply"
)

// 单个文件的处理结果状态
type Status string

const (
	StatusRenamed Status = "renamed"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// 常用原因
const (
	ReasonNotSelected  = "not selected"
	ReasonUnsupported  = "unsupported"
	ReasonAlreadyNamed = "already named"
	ReasonCorrupt      = "corrupt"
)

// 单个文件的处理结果
type Outcome struct {
	OriginalPath string
	OriginalName string
	NewPath      string
	NewName      string
	Category     Category
	Status       Status
	Reason       string
	Detail       string // 失败的具体原因，例如解析错误
	Extracted    string
	EntryID      string
	Preview      bool // 预览模式下的 renamed 仅为计划，未实际执行
}

// 批处理统计
type BatchStats struct {
	BatchID   string
	Mode      Mode
	Total     int
	Renamed   int
	Skipped   int
	Failed    int
	Stopped   bool
	StartTime time.Time
	EndTime   time.Time
}

// Add 按结果累加统计
func (s *BatchStats) Add(o Outcome) {
	s.Total++
	switch o.Status {
	case StatusRenamed:
		s.Renamed++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}
