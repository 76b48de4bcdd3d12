package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.progressBar.Width = msg.Width - 10

	case outcomeMsg:
		m.applyOutcome(msg)
		if m.totalFiles > 0 {
			percent := float64(m.processed) / float64(m.totalFiles)
			cmds = append(cmds, m.progressBar.SetPercent(percent))
		}
		m.logProgress()
		cmds = append(cmds, waitForUpdate(m.updates))
		return m, tea.Batch(cmds...)

	case completeMsg:
		m.state = StateComplete
		m.currentFile = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.stats != nil {
			m.stats = *msg.stats
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == StateProcessing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.state == StateProcessing {
		model, cmd := m.progressBar.Update(msg)
		m.progressBar = model.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey 处理中 q 请求停止，ctrl+c 停止并立即退出；完成后任意退出键结束界面
func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.requestStop()
		return m, tea.Quit
	case "q", "esc":
		if m.state == StateComplete {
			return m, tea.Quit
		}
		m.requestStop()
	case "enter":
		if m.state == StateComplete {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) requestStop() {
	if m.stopping || m.state == StateComplete {
		return
	}
	m.stopping = true
	logger.Get().Info().Msg("收到停止请求，当前文件处理完成后停止")
	m.job.Stop()
}

func (m *model) applyOutcome(msg outcomeMsg) {
	m.processed = msg.done
	if msg.total > 0 {
		m.totalFiles = msg.total
	}
	m.currentFile = msg.outcome.OriginalPath
	m.stats.Add(msg.outcome)

	m.recent = append(m.recent, msg.outcome)
	if len(m.recent) > recentLimit {
		m.recent = m.recent[len(m.recent)-recentLimit:]
	}
	if msg.outcome.Status == internal.StatusFailed {
		m.failures = append(m.failures, msg.outcome)
	}
}

// waitForUpdate 等待批处理推送下一条消息
func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m *model) logProgress() {
	if m.totalFiles == 0 {
		return
	}

	const logInterval = 100
	if m.processed-m.lastLogProcessed < logInterval && m.processed < m.totalFiles {
		return
	}

	percent := float64(m.processed) / float64(m.totalFiles) * 100
	logger.Get().Info().Msgf("处理进度: %d/%d (%.1f%%) - 重命名: %d, 跳过: %d, 失败: %d",
		m.processed, m.totalFiles, percent, m.stats.Renamed, m.stats.Skipped, m.stats.Failed)

	m.lastLogProcessed = m.processed
}
