package extractor

import (
	"bytes"
	"fmt"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
)

// extractLegacyTitle 从 OLE 复合文档的 SummaryInformation 中读取标题
// 旧版 .doc/.xls/.ppt 的正文是私有二进制格式，只读取属性集
func extractLegacyTitle(data []byte) (string, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLegacyFormat, err)
	}

	props := msoleps.New()
	var title, subject string

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if !msoleps.IsMSOLEPS(entry.Initial) {
			continue
		}
		if err := props.Reset(doc); err != nil {
			continue
		}
		for _, prop := range props.Property {
			switch prop.Name {
			case "Title":
				if title == "" {
					title = normalizeText(prop.String())
				}
			case "Subject":
				if subject == "" {
					subject = normalizeText(prop.String())
				}
			}
		}
	}

	switch {
	case title != "" && !IsGeneric(title):
		return title, nil
	case subject != "" && !IsGeneric(subject):
		return subject, nil
	}
	return "", nil
}
