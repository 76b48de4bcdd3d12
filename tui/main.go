package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

// Job 可在界面中执行并中途停止的批处理
type Job interface {
	Run(ctx context.Context, onOutcome func(done, total int, o internal.Outcome)) (*internal.BatchStats, []internal.Outcome, error)
	Stop()
}

// Result 界面退出后返回的批处理结果
type Result struct {
	Stats    *internal.BatchStats
	Outcomes []internal.Outcome
}

type teaModel struct {
	m *model
}

func (tm teaModel) Init() tea.Cmd {
	return tm.m.Init()
}

func (tm teaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := tm.m.Update(msg)
	return tm, cmd
}

func (tm teaModel) View() string {
	return tm.m.View()
}

// Run 在界面中执行批处理，界面退出前批处理一定已经结束
func Run(job Job, total int, mode internal.Mode) (*Result, error) {
	logger.Get().Info().Msg("启动 TUI 界面")

	updates := make(chan tea.Msg, internal.DefaultBufferSize)
	finished := make(chan completeMsg, 1)

	go func() {
		stats, outcomes, err := job.Run(context.Background(), func(done, total int, o internal.Outcome) {
			updates <- outcomeMsg{done: done, total: total, outcome: o}
		})
		msg := completeMsg{stats: stats, outcomes: outcomes, err: err}
		updates <- msg
		finished <- msg
	}()

	m := initialModel(job, total, mode, updates)
	p := tea.NewProgram(teaModel{m: &m}, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Get().Error().Err(err).Msg("TUI 运行错误")
		job.Stop()
		drain(updates, finished)
		return nil, err
	}

	// 用户提前退出时批处理已收到停止请求，等待当前文件完成
	res := drain(updates, finished)
	logger.Get().Info().Msg("TUI 正常退出")
	if res.err != nil {
		return nil, res.err
	}
	return &Result{Stats: res.stats, Outcomes: res.outcomes}, nil
}

func drain(updates <-chan tea.Msg, finished <-chan completeMsg) completeMsg {
	for {
		select {
		case res := <-finished:
			return res
		case <-updates:
		}
	}
}
