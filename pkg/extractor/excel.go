package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// 首行拼接时最多使用的单元格数
const maxJoinedCells = 3

// extractExcel 读取第一个工作表中第一行有内容的数据
// 该行只有一个单元格时直接使用，否则拼接前几个非空单元格
func extractExcel(data []byte, ext string, maxChars int) (string, error) {
	if ext == ".xls" {
		return extractLegacyTitle(data)
	}

	xf, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("打开 xlsx 失败: %w", err)
	}
	defer xf.Close()

	sheets := xf.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}

	rows, err := xf.Rows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("读取工作表失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return "", fmt.Errorf("读取行失败: %w", err)
		}
		if cells := nonEmpty(cols); len(cells) > 0 {
			return joinCells(cells), nil
		}
	}

	// 工作表没有内容时使用有意义的表名
	if name := normalizeText(sheets[0]); !IsGeneric(name) {
		return name, nil
	}
	return "", nil
}

func nonEmpty(cells []string) []string {
	var out []string
	for _, c := range cells {
		if c = normalizeText(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func joinCells(cells []string) string {
	if len(cells) > maxJoinedCells {
		cells = cells[:maxJoinedCells]
	}
	return strings.Join(cells, " - ")
}
