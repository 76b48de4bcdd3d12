// Package naming 把提取到的文本转换为安全的文件名，并在目录内解决重名。
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/hasher"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

// FallbackPrefix 无法提取文本时使用的名称前缀
const FallbackPrefix = "untitled_"

// Windows 文件名中不允许出现的字符
const reservedChars = `<>:"/\|?*`

var (
	fallbackPattern = regexp.MustCompile(`^untitled_[0-9a-f]{8}$`)

	// Windows 保留的设备名，带扩展名时同样不可用
	deviceNames = map[string]bool{
		"con": true, "prn": true, "aux": true, "nul": true,
		"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
		"com6": true, "com7": true, "com8": true, "com9": true,
		"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
		"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
	}
)

type Synthesizer struct {
	maxLength int
}

func NewSynthesizer(maxLength int) *Synthesizer {
	if maxLength <= 0 {
		maxLength = internal.DefaultMaxNameLength
	}
	return &Synthesizer{maxLength: maxLength}
}

// Synthesize 生成候选文件名，结果的 Sanitized 永远非空
func (s *Synthesizer) Synthesize(result internal.ExtractionResult) internal.NameCandidate {
	candidate := internal.NameCandidate{
		Base: result.Text,
		Ext:  strings.ToLower(result.File.Ext),
	}

	if result.Status == internal.ExtractionOK {
		candidate.Sanitized = Sanitize(result.Text, s.maxLength)
	}

	if candidate.Sanitized == "" {
		candidate.Sanitized = fallbackFor(result.File.Path)
		candidate.Fallback = true
		logger.Get().Debug().Str("file", result.File.Path).Str("name", candidate.Sanitized).Msg("使用兜底名称")
	}

	return candidate
}

// FallbackName 根据原始路径生成 untitled_<8 位十六进制>，与文件内容无关
func FallbackName(path string) string {
	return FallbackPrefix + hasher.PathToken(path)
}

// IsFallbackName 判断文件名主体是否为兜底名称
func IsFallbackName(stem string) bool {
	return fallbackPattern.MatchString(stem)
}

// fallbackFor 已经是兜底名称的文件保留原名，重复运行时不会换成新的哈希
func fallbackFor(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if IsFallbackName(stem) {
		return stem
	}
	return FallbackName(path)
}

// Sanitize 把任意文本转换为可用作文件名主体的字符串，
// 长度不超过 max 个字符，无法得到有效名称时返回空串
func Sanitize(text string, max int) string {
	s := norm.NFC.String(strings.ToValidUTF8(text, ""))

	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(reservedChars, r) || !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	s = escapeDeviceName(trimDots(s))
	if max > 0 && utf8.RuneCountInString(s) > max {
		s = shorten(s, max)
	}
	return s
}

// 结尾的点和空格在 Windows 上会被丢弃，开头的点会变成隐藏文件
func trimDots(s string) string {
	return strings.TrimLeft(strings.TrimRight(s, ". "), ". ")
}

// shorten 截断到 max 个字符；截断后重新成为设备名时少截一个字符，给下划线留位置
func shorten(s string, max int) string {
	cut := trimDots(truncateAtWord(s, max))
	if escapeDeviceName(cut) == cut {
		return cut
	}
	return escapeDeviceName(trimDots(truncateAtWord(s, max-1)))
}

// truncateAtWord 截断到 max 个字符，尽量在单词边界处断开
func truncateAtWord(s string, max int) string {
	runes := []rune(s)
	cut := string(runes[:max])
	if runes[max] == ' ' {
		return cut
	}
	if i := strings.LastIndex(cut, " "); i > 0 && utf8.RuneCountInString(cut[:i]) >= max/2 {
		return cut[:i]
	}
	return cut
}

// escapeDeviceName 在设备名后追加下划线，"aux.txt" 变为 "aux_.txt"
func escapeDeviceName(s string) string {
	stem, rest := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		stem, rest = s[:i], s[i:]
	}
	if !deviceNames[strings.ToLower(strings.TrimSpace(stem))] {
		return s
	}
	return strings.TrimSpace(stem) + "_" + rest
}
