package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractWord 优先返回第一个标题样式段落，其次第一个非空段落，最后是文档属性中的标题
func extractWord(data []byte, ext string, maxChars int) (string, error) {
	if ext == ".doc" {
		return extractLegacyTitle(data)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("打开 docx 压缩包失败: %w", err)
	}

	body := findZipFile(zr, "word/document.xml")
	if body == nil {
		return "", fmt.Errorf("docx 中缺少 word/document.xml")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("读取 word/document.xml 失败: %w", err)
	}
	defer rc.Close()

	heading, first, err := scanParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("解析 word/document.xml 失败: %w", err)
	}

	switch {
	case heading != "" && !IsGeneric(heading):
		return heading, nil
	case first != "" && !IsGeneric(first):
		return truncateRunes(first, maxChars), nil
	}

	return coreTitle(zr), nil
}

// scanParagraphs 顺序读取段落，遇到第一个标题段落即停止
func scanParagraphs(r io.Reader) (heading, first string, err error) {
	decoder := xml.NewDecoder(r)

	var (
		depth     int
		isHeading bool
		text      strings.Builder
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return "", first, nil
		}
		if err != nil {
			if first != "" {
				return "", first, nil
			}
			return "", "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					isHeading = false
					text.Reset()
				}
				depth++
			case "pStyle":
				if depth > 0 && isHeadingStyle(attr(t, "val")) {
					isHeading = true
				}
			case "outlineLvl":
				if depth > 0 {
					isHeading = true
				}
			case "t":
				if depth > 0 {
					var content struct {
						Text string `xml:",chardata"`
					}
					if err := decoder.DecodeElement(&content, &t); err == nil {
						text.WriteString(content.Text)
					}
				}
			case "tab", "br", "cr":
				if depth > 0 {
					text.WriteString(" ")
				}
			}
		case xml.EndElement:
			if t.Name.Local != "p" || depth == 0 {
				continue
			}
			depth--
			if depth > 0 {
				continue
			}
			para := normalizeText(text.String())
			if para == "" {
				continue
			}
			if isHeading {
				return para, first, nil
			}
			if first == "" {
				first = para
			}
		}
	}
}

// isHeadingStyle 识别内置标题样式，兼容本地化的样式 ID
func isHeadingStyle(style string) bool {
	s := strings.ToLower(style)
	for _, prefix := range []string{"heading", "title", "ttulo", "titulo", "título", "berschrift", "titre", "kop"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// coreTitle 读取 docProps/core.xml 中的 dc:title
func coreTitle(zr *zip.Reader) string {
	f := findZipFile(zr, "docProps/core.xml")
	if f == nil {
		return ""
	}
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()

	var props struct {
		Title string `xml:"title"`
	}
	if err := xml.NewDecoder(rc).Decode(&props); err != nil {
		return ""
	}
	title := normalizeText(props.Title)
	if IsGeneric(title) {
		return ""
	}
	return title
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if strings.EqualFold(strings.TrimPrefix(f.Name, "/"), name) {
			return f
		}
	}
	return nil
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
