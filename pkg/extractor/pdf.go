package extractor

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// 首页文本中作为标题的最短行长度
const minPDFLineLen = 3

// extractPDF 优先使用元数据标题，其次第一页的第一行文本
func extractPDF(data []byte, ext string, maxChars int) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("解析 pdf 失败: %w", err)
	}

	if title := normalizeText(r.Trailer().Key("Info").Key("Title").Text()); title != "" && !IsGeneric(title) {
		return title, nil
	}

	if r.NumPage() < 1 {
		return "", nil
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return "", nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		// 扫描件或字体异常，按无文本处理
		return "", nil
	}

	return truncateRunes(firstLine(text, minPDFLineLen), maxChars), nil
}
