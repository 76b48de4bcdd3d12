// Package fixture 在内存中生成最小可用的办公文档，供测试使用
package fixture

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Paragraph Word 段落，Style 为空表示正文
type Paragraph struct {
	Style string
	Text  string
}

// Docx 生成包含给定段落的 docx
func Docx(paras ...Paragraph) []byte {
	return DocxWithProps("", paras...)
}

// DocxWithProps 生成带 docProps/core.xml 标题的 docx
func DocxWithProps(coreTitle string, paras ...Paragraph) []byte {
	var body strings.Builder
	for _, p := range paras {
		body.WriteString("<w:p>")
		if p.Style != "" {
			fmt.Fprintf(&body, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, html.EscapeString(p.Style))
		}
		fmt.Fprintf(&body, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, html.EscapeString(p.Text))
		body.WriteString("</w:p>")
	}

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml": fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<w:document xmlns:w="%s"><w:body>%s</w:body></w:document>`, nsW, body.String()),
	}
	if coreTitle != "" {
		files["docProps/core.xml"] = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>`+
			`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" `+
			`xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>%s</dc:title></cp:coreProperties>`, html.EscapeString(coreTitle))
	}
	return zipFiles(files)
}

// Slide 幻灯片，Title 为空时不生成标题占位符
type Slide struct {
	Title string
	Body  []string
}

// Pptx 生成演示文稿，order 指定 presentation.xml 中的幻灯片顺序（下标），为空时按原顺序
func Pptx(slides []Slide, order []int) []byte {
	if order == nil {
		for i := range slides {
			order = append(order, i)
		}
	}

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
	}

	var ids, rels strings.Builder
	for i, idx := range order {
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, idx+1)
	}
	for i, s := range slides {
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="%s/slide" Target="slides/slide%d.xml"/>`, i+1, nsR, i+1)
		files[fmt.Sprintf("ppt/slides/slide%d.xml", i+1)] = slideXML(s)
	}

	files["ppt/presentation.xml"] = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>`+
		`<p:presentation xmlns:p="%s" xmlns:r="%s"><p:sldIdLst>%s</p:sldIdLst></p:presentation>`, nsP, nsR, ids.String())
	files["ppt/_rels/presentation.xml.rels"] = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>`+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">%s</Relationships>`, rels.String())

	return zipFiles(files)
}

func slideXML(s Slide) string {
	var shapes strings.Builder
	if s.Title != "" {
		shapes.WriteString(shapeXML(`<p:ph type="title"/>`, s.Title))
	}
	for _, b := range s.Body {
		shapes.WriteString(shapeXML("", b))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>`+
		`<p:sld xmlns:p="%s" xmlns:a="%s"><p:cSld><p:spTree>%s</p:spTree></p:cSld></p:sld>`, nsP, nsA, shapes.String())
}

func shapeXML(ph, text string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Shape"/><p:cNvSpPr/><p:nvPr>%s</p:nvPr></p:nvSpPr>`+
		`<p:txBody><a:bodyPr/><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`, ph, html.EscapeString(text))
}

// Xlsx 生成单工作表的 xlsx，rows 从 A1 开始写入
func Xlsx(sheetName string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName != "" && sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return nil, err
		}
	} else {
		sheetName = "Sheet1"
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func zipFiles(files map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// [Content_Types].xml 放在第一个，和办公软件生成的文件一致
	names := []string{"[Content_Types].xml"}
	for name := range files {
		if name != "[Content_Types].xml" {
			names = append(names, name)
		}
	}

	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
