package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

const defaultFirstSlide = "ppt/slides/slide1.xml"

type presentationXML struct {
	Slides []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsXML struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type slideXML struct {
	Shapes []slideShape `xml:"cSld>spTree>sp"`
}

type slideShape struct {
	Placeholder *struct {
		Type string `xml:"type,attr"`
	} `xml:"nvSpPr>nvPr>ph"`
	Paragraphs []struct {
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"txBody>p"`
}

func (s slideShape) isTitle() bool {
	if s.Placeholder == nil {
		return false
	}
	return s.Placeholder.Type == "title" || s.Placeholder.Type == "ctrTitle"
}

func (s slideShape) text() string {
	var parts []string
	for _, p := range s.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
		if t := normalizeText(b.String()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// extractPowerPoint 读取第一张幻灯片的标题占位符，没有时使用第一段文本
func extractPowerPoint(data []byte, ext string, maxChars int) (string, error) {
	if ext == ".ppt" {
		return extractLegacyTitle(data)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("打开 pptx 压缩包失败: %w", err)
	}

	slideName := firstSlidePath(zr)
	f := findZipFile(zr, slideName)
	if f == nil {
		if f = findZipFile(zr, defaultFirstSlide); f == nil {
			// 没有幻灯片的演示文稿视为空
			return "", nil
		}
	}

	raw, err := readZipFile(f)
	if err != nil {
		return "", fmt.Errorf("读取幻灯片失败: %w", err)
	}

	var slide slideXML
	if err := xml.Unmarshal(raw, &slide); err != nil {
		return "", fmt.Errorf("解析幻灯片失败: %w", err)
	}

	for _, sh := range slide.Shapes {
		if sh.isTitle() {
			if t := sh.text(); t != "" && !IsGeneric(t) {
				return t, nil
			}
		}
	}

	// 没有标题占位符时，按文档顺序取第一段非占位文本
	return firstTextRun(raw), nil
}

// firstSlidePath 按 presentation.xml 中的顺序找到第一张幻灯片
func firstSlidePath(zr *zip.Reader) string {
	presFile := findZipFile(zr, "ppt/presentation.xml")
	relsFile := findZipFile(zr, "ppt/_rels/presentation.xml.rels")
	if presFile == nil || relsFile == nil {
		return defaultFirstSlide
	}

	presRaw, err := readZipFile(presFile)
	if err != nil {
		return defaultFirstSlide
	}
	var pres presentationXML
	if err := xml.Unmarshal(presRaw, &pres); err != nil || len(pres.Slides) == 0 {
		return defaultFirstSlide
	}

	relsRaw, err := readZipFile(relsFile)
	if err != nil {
		return defaultFirstSlide
	}
	var rels relationshipsXML
	if err := xml.Unmarshal(relsRaw, &rels); err != nil {
		return defaultFirstSlide
	}

	for _, rel := range rels.Rels {
		if rel.ID != pres.Slides[0].RID {
			continue
		}
		if strings.HasPrefix(rel.Target, "/") {
			return strings.TrimPrefix(rel.Target, "/")
		}
		return path.Clean(path.Join("ppt", rel.Target))
	}
	return defaultFirstSlide
}

func firstTextRun(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return ""
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "t" {
			continue
		}
		var content struct {
			Text string `xml:",chardata"`
		}
		if err := decoder.DecodeElement(&content, &se); err != nil {
			continue
		}
		if t := normalizeText(content.Text); t != "" && !IsGeneric(t) {
			return t
		}
	}
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
