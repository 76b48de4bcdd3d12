package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/moyu-x/doc-renamer/internal"
)

// 完成界面最多列出的失败文件数
const failureLimit = 10

func (m *model) View() string {
	switch m.state {
	case StateProcessing:
		return m.processingView()
	case StateComplete:
		return m.completeView()
	default:
		return "未知状态"
	}
}

func (m *model) processingView() string {
	var b strings.Builder

	title := "🔄 正在重命名文件..."
	if m.mode == internal.ModePreview {
		title = "🔍 正在生成预览..."
	}
	if m.stopping {
		title = "⏸ 正在停止，等待当前文件完成..."
	}
	b.WriteString(titleStyle.Render(m.spinner.View()+" "+title) + "\n\n")

	b.WriteString(labelStyle.Render("处理进度：") + "\n")
	b.WriteString(m.progressBar.View() + "\n\n")

	b.WriteString(statsBoxStyle.Render(m.renderStats()) + "\n\n")

	b.WriteString(labelStyle.Render("当前文件：") + "\n")
	b.WriteString(filePathStyle.Render(m.currentFile) + "\n\n")

	if len(m.recent) > 0 {
		b.WriteString(labelStyle.Render("最近结果：") + "\n")
		for i := len(m.recent) - 1; i >= 0; i-- {
			b.WriteString(renderOutcome(m.recent[i]) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", 60)) + "\n")
	b.WriteString(hintStyle.Render("q 停止（当前文件完成后），Ctrl+C 停止并退出") + "\n")

	return lipgloss.NewStyle().
		Padding(2).
		Render(b.String())
}

func (m *model) completeView() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(errorTitleStyle.Render("❌ 批处理失败") + "\n\n")
		b.WriteString(textStyle.Render(m.err.Error()) + "\n\n")
	} else {
		title := "✅ 处理完成！"
		if m.stats.Stopped {
			title = "⏹ 已停止"
		}
		b.WriteString(successTitleStyle.Render(title) + "\n\n")
		b.WriteString(statsBoxStyle.Render(m.renderFinalStats()) + "\n\n")
	}

	if len(m.failures) > 0 {
		b.WriteString(labelStyle.Render("失败文件：") + "\n")
		for i, o := range m.failures {
			if i == failureLimit {
				b.WriteString(hintStyle.Render(fmt.Sprintf("  ... 另有 %d 个", len(m.failures)-failureLimit)) + "\n")
				break
			}
			b.WriteString(renderOutcome(o) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", 60)) + "\n")
	b.WriteString(hintStyle.Render("按 Enter 或 q 退出") + "\n")

	return lipgloss.NewStyle().
		Padding(2).
		Render(b.String())
}

func (m *model) renderStats() string {
	var b strings.Builder
	b.WriteString("📊 实时统计：\n\n")
	b.WriteString(fmt.Sprintf("  已处理：  %d / %d\n", m.processed, m.totalFiles))
	b.WriteString(fmt.Sprintf("  重命名：  %d\n", m.stats.Renamed))
	b.WriteString(fmt.Sprintf("  跳过：    %d\n", m.stats.Skipped))
	b.WriteString(fmt.Sprintf("  失败：    %d\n", m.stats.Failed))
	return b.String()
}

func (m *model) renderFinalStats() string {
	var b strings.Builder
	b.WriteString("📊 最终统计：\n\n")
	b.WriteString(fmt.Sprintf("  • 批次：       %s\n", m.stats.BatchID))
	b.WriteString(fmt.Sprintf("  • 模式：       %s\n", m.stats.Mode))
	b.WriteString(fmt.Sprintf("  • 已处理：     %d / %d 个\n", m.stats.Total, m.totalFiles))
	b.WriteString(fmt.Sprintf("    ├─ 重命名：  %d 个\n", m.stats.Renamed))
	b.WriteString(fmt.Sprintf("    ├─ 跳过：    %d 个\n", m.stats.Skipped))
	b.WriteString(fmt.Sprintf("    └─ 失败：    %d 个\n", m.stats.Failed))
	if !m.stats.EndTime.IsZero() {
		b.WriteString(fmt.Sprintf("  • 总耗时：     %s\n", m.stats.EndTime.Sub(m.stats.StartTime).Round(time.Millisecond)))
	}
	return b.String()
}

// renderOutcome 单行显示一个文件的处理结果
func renderOutcome(o internal.Outcome) string {
	switch o.Status {
	case internal.StatusRenamed:
		return renamedStyle.Render("  ✔ ") + textStyle.Render(o.OriginalName+" → "+o.NewName)
	case internal.StatusFailed:
		return failedStyle.Render("  ✘ ") + textStyle.Render(o.OriginalName) + hintStyle.Render(" ("+o.Reason+")")
	default:
		return hintStyle.Render("  - " + filepath.Base(o.OriginalPath) + " (" + o.Reason + ")")
	}
}
