package scanner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

const (
	// 文件类型检测所需的文件头部大小（字节）
	HeaderSize = 8192
)

var (
	ErrSourceNotFound = errors.New("源目录不存在")
	ErrNotDirectory   = errors.New("源路径不是目录")
)

// OLE 复合文档魔数，旧版 .doc/.xls/.ppt 使用
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

type FileWalker struct {
	Fs            afero.Fs
	IncludeHidden bool
	Recursive     bool
}

func NewFileWalker(fs afero.Fs) *FileWalker {
	return &FileWalker{
		Fs:        fs,
		Recursive: true,
	}
}

func (w *FileWalker) Walk(root string, callback func(path string, info os.FileInfo) error) error {
	return afero.Walk(w.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Get().Debug().Err(err).Str("path", path).Msg("访问路径出错")
			return nil
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			if !w.Recursive || (!w.IncludeHidden && isHidden(info.Name())) {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.IncludeHidden && isHidden(info.Name()) {
			return nil
		}

		return callback(path, info)
	})
}

// Scan 扫描根目录，返回按路径排序的文件描述
// 根目录不存在或不是目录时返回前置条件错误
func (w *FileWalker) Scan(root string) ([]internal.ScannedFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("解析路径失败: %w", err)
	}

	info, err := w.Fs.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, absRoot)
		}
		return nil, fmt.Errorf("读取源目录失败: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	logger.Get().Info().Msgf("扫描目录: %s", absRoot)

	var files []internal.ScannedFile
	err = w.Walk(absRoot, func(path string, info os.FileInfo) error {
		if info.Name() == internal.DefaultLedgerFile {
			return nil
		}
		files = append(files, w.Describe(path, info))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	logger.Get().Info().Msgf("扫描完成，共找到 %d 个文件", len(files))
	return files, nil
}

// Describe 生成单个文件的描述，读取文件头判断是否可读
func (w *FileWalker) Describe(path string, info os.FileInfo) internal.ScannedFile {
	ext := filepath.Ext(path)
	f := internal.ScannedFile{
		Path:     path,
		Ext:      ext,
		Category: internal.CategoryForExt(ext),
		Size:     info.Size(),
	}

	if f.Category == internal.CategoryUnknown || f.Size == 0 {
		return f
	}

	head, err := w.readHeader(path)
	if err != nil {
		logger.Get().Debug().Err(err).Str("path", path).Msg("读取文件头失败")
		return f
	}

	f.Readable = containerMatches(f.Category, strings.ToLower(ext), head)
	if !f.Readable {
		logger.Get().Debug().Str("path", path).Str("category", string(f.Category)).Msg("文件头与扩展名不匹配")
	}
	return f
}

func (w *FileWalker) readHeader(path string) ([]byte, error) {
	file, err := w.Fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	head := make([]byte, HeaderSize)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return head[:n], nil
}

// containerMatches 判断文件头是否符合类别的容器格式
func containerMatches(cat internal.Category, ext string, head []byte) bool {
	kind, _ := filetype.Match(head)

	switch ext {
	case ".doc", ".xls", ".ppt":
		return isOLE(head)
	case ".docx", ".xlsx", ".pptx":
		// 受密码保护的 OOXML 实际是 OLE 容器，交给提取器报告
		return isZipKind(kind) || isOLE(head)
	}

	switch cat {
	case internal.CategoryPDF:
		return kind.Extension == "pdf"
	case internal.CategoryCSV:
		// CSV 没有魔数，只要不是已知的二进制格式即可
		return kind == types.Unknown
	}
	return false
}

func isZipKind(kind types.Type) bool {
	switch kind.Extension {
	case "zip", "docx", "xlsx", "pptx":
		return true
	}
	return false
}

func isOLE(head []byte) bool {
	if len(head) < len(oleMagic) {
		return false
	}
	for i, b := range oleMagic {
		if head[i] != b {
			return false
		}
	}
	return true
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// 类别汇总
type Summary struct {
	Category   internal.Category
	Count      int
	Unreadable int
	Extensions []string
}

// 扫描汇总
type Report struct {
	Total       int
	Supported   int
	Unsupported int
	Categories  []Summary
}

// Summarize 按类别汇总扫描结果
func Summarize(files []internal.ScannedFile) Report {
	byCat := make(map[internal.Category]*Summary)
	exts := make(map[internal.Category]map[string]bool)

	report := Report{Total: len(files)}
	for _, f := range files {
		if f.Category == internal.CategoryUnknown {
			report.Unsupported++
			continue
		}
		report.Supported++

		s, ok := byCat[f.Category]
		if !ok {
			s = &Summary{Category: f.Category}
			byCat[f.Category] = s
			exts[f.Category] = make(map[string]bool)
		}
		s.Count++
		if !f.Readable {
			s.Unreadable++
		}
		exts[f.Category][strings.ToLower(f.Ext)] = true
	}

	for _, cat := range internal.AllCategories() {
		s, ok := byCat[cat]
		if !ok {
			continue
		}
		for e := range exts[cat] {
			s.Extensions = append(s.Extensions, e)
		}
		sort.Strings(s.Extensions)
		report.Categories = append(report.Categories, *s)
	}
	return report
}
