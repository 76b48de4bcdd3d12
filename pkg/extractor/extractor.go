// Package extractor 从文档内容中提取可用于命名的短文本。
//
// 每种类别对应一个提取策略，所有策略遵循同一约定：
// 打不开的文件返回 corrupt 状态而不是错误，调用方永远不会收到 panic。
package extractor

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

var (
	ErrEmptyFile    = errors.New("空文件")
	ErrUnreadable   = errors.New("文件头与格式不符")
	ErrLegacyFormat = errors.New("旧版二进制格式")
)

// strategy 从完整的文件内容中提取文本，ext 为小写扩展名
type strategy func(data []byte, ext string, maxChars int) (string, error)

type Extractor struct {
	fs         afero.Fs
	maxChars   int
	strategies map[internal.Category]strategy
}

func New(fs afero.Fs, maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = internal.DefaultMaxTitleChars
	}
	return &Extractor{
		fs:       fs,
		maxChars: maxChars,
		strategies: map[internal.Category]strategy{
			internal.CategoryWord:       extractWord,
			internal.CategoryExcel:      extractExcel,
			internal.CategoryPowerPoint: extractPowerPoint,
			internal.CategoryPDF:        extractPDF,
			internal.CategoryCSV:        extractCSV,
		},
	}
}

// Extract 提取单个文件的标识文本
func (e *Extractor) Extract(file internal.ScannedFile) (result internal.ExtractionResult) {
	result = internal.ExtractionResult{File: file}

	extract, ok := e.strategies[file.Category]
	if !ok {
		result.Status = internal.ExtractionUnsupported
		return result
	}

	if file.Size == 0 {
		return corrupt(result, ErrEmptyFile)
	}
	if !file.Readable {
		return corrupt(result, ErrUnreadable)
	}

	data, err := afero.ReadFile(e.fs, file.Path)
	if err != nil {
		return corrupt(result, fmt.Errorf("读取文件失败: %w", err))
	}
	if len(data) == 0 {
		return corrupt(result, ErrEmptyFile)
	}

	// 第三方解析库遇到损坏文件时可能 panic
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Debug().Str("file", file.Path).Interface("panic", r).Msg("解析文件时发生 panic")
			result = corrupt(internal.ExtractionResult{File: file}, fmt.Errorf("解析失败: %v", r))
		}
	}()

	text, err := extract(data, strings.ToLower(file.Ext), e.maxChars)
	if err != nil {
		return corrupt(result, err)
	}

	text = normalizeText(text)
	if text == "" || IsGeneric(text) {
		logger.Get().Debug().Str("file", file.Path).Str("text", text).Msg("未提取到有效文本")
		result.Status = internal.ExtractionEmpty
		return result
	}

	result.Text = truncateRunes(text, e.maxChars)
	result.Status = internal.ExtractionOK
	logger.Get().Debug().Str("file", file.Path).Str("text", result.Text).Msg("提取完成")
	return result
}

func corrupt(result internal.ExtractionResult, err error) internal.ExtractionResult {
	logger.Get().Debug().Err(err).Str("file", result.File.Path).Msg("文件无法读取")
	result.Text = ""
	result.Status = internal.ExtractionCorrupt
	result.Err = err
	return result
}

// normalizeText 去掉控制字符并合并空白
func normalizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max]))
}

// firstLine 返回第一行长度超过 minLen 的非空文本
func firstLine(text string, minLen int) string {
	for _, line := range strings.Split(text, "\n") {
		line = normalizeText(line)
		if utf8.RuneCountInString(line) > minLen {
			return line
		}
	}
	return ""
}
