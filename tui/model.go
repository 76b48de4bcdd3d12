package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moyu-x/doc-renamer/internal"
)

type State int

const (
	StateProcessing State = iota
	StateComplete
)

// 处理界面保留的最近结果数量
const recentLimit = 8

type model struct {
	state            State
	mode             internal.Mode
	job              Job
	updates          <-chan tea.Msg
	totalFiles       int
	processed        int
	lastLogProcessed int
	stats            internal.BatchStats
	currentFile      string
	recent           []internal.Outcome
	failures         []internal.Outcome
	stopping         bool
	progressBar      progress.Model
	spinner          spinner.Model
	err              error
}

func initialModel(job Job, total int, mode internal.Mode, updates <-chan tea.Msg) model {
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.PercentageStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Width(4)

	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		FPS:    time.Second / 10,
	}
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		state:       StateProcessing,
		mode:        mode,
		job:         job,
		updates:     updates,
		totalFiles:  total,
		stats:       internal.BatchStats{Mode: mode},
		progressBar: progressBar,
		spinner:     s,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates))
}
