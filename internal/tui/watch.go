// Package tui provides the terminal user interface for tasklet's watch
// command: a read-only view that polls a task's status endpoint and renders
// subtask progress until the task reaches a terminal state.
//
// Users can quit early with 'q' or Ctrl+C; the view quits on its own once
// the task completes or fails.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasklet/pkg/models"
)

// FetchFunc returns the current snapshot of the watched task.
type FetchFunc func() (models.Task, error)

// pollInterval is how often the watcher refreshes the snapshot.
const pollInterval = 500 * time.Millisecond

type snapshotMsg models.Task

type fetchErrMsg struct{ err error }

type pollMsg struct{}

// WatchModel is the bubbletea model for the watch command.
type WatchModel struct {
	taskID  string
	fetch   FetchFunc
	spinner spinner.Model

	task     models.Task
	fetchErr error
	done     bool

	titleStyle      lipgloss.Style
	pendingStyle    lipgloss.Style
	processingStyle lipgloss.Style
	completedStyle  lipgloss.Style
	failedStyle     lipgloss.Style
	dimStyle        lipgloss.Style
}

// NewWatchModel creates a watcher for taskID backed by fetch.
func NewWatchModel(taskID string, fetch FetchFunc) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return WatchModel{
		taskID:  taskID,
		fetch:   fetch,
		spinner: sp,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		pendingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")), // Gray

		processingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")), // Yellow

		completedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")), // Green

		failedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")), // Red

		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Init starts the spinner and the first poll.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

// fetchCmd fetches a snapshot off the update loop.
func (m WatchModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		task, err := m.fetch()
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return snapshotMsg(task)
	}
}

func pollAfter() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

// Update handles messages.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case snapshotMsg:
		m.task = models.Task(msg)
		m.fetchErr = nil
		if m.task.Status.Terminal() {
			m.done = true
			return m, tea.Quit
		}
		return m, pollAfter()

	case fetchErrMsg:
		m.fetchErr = msg.err
		return m, pollAfter()

	case pollMsg:
		return m, m.fetchCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the task header and one line per subtask.
func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render(fmt.Sprintf("Task %s", m.taskID)))
	b.WriteString("\n")

	if m.fetchErr != nil {
		b.WriteString(m.failedStyle.Render(fmt.Sprintf("poll error: %v", m.fetchErr)))
		b.WriteString("\n")
	}

	if m.task.Prompt != "" {
		b.WriteString(m.dimStyle.Render(m.task.Prompt))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.task.Status {
	case models.TaskStatusPending:
		b.WriteString(m.pendingStyle.Render("pending"))
	case models.TaskStatusProcessing:
		b.WriteString(m.spinner.View())
		b.WriteString(m.processingStyle.Render(" processing"))
	case models.TaskStatusCompleted:
		b.WriteString(m.completedStyle.Render("✓ completed"))
	case models.TaskStatusFailed:
		b.WriteString(m.failedStyle.Render("✗ failed"))
		if m.task.Error != "" {
			b.WriteString(m.dimStyle.Render(" — " + m.task.Error))
		}
	}
	b.WriteString("\n")

	for _, st := range m.task.Subtasks {
		b.WriteString("  ")
		b.WriteString(m.renderSubtask(st))
		b.WriteString("\n")
	}

	if !m.done {
		b.WriteString("\n")
		b.WriteString(m.dimStyle.Render("press q to quit"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderSubtask formats one subtask line with its status glyph.
func (m WatchModel) renderSubtask(st models.Subtask) string {
	label := fmt.Sprintf("%d. %s", st.ID, st.Description)
	switch st.Status {
	case models.SubtaskProcessing:
		return m.spinner.View() + m.processingStyle.Render(" "+label)
	case models.SubtaskCompleted:
		return m.completedStyle.Render("✓ " + label)
	default:
		return m.pendingStyle.Render("· " + label)
	}
}

// Task returns the last snapshot the watcher saw.
func (m WatchModel) Task() models.Task {
	return m.task
}

// RunWatch runs the watcher to completion and returns the final snapshot.
func RunWatch(taskID string, fetch FetchFunc) (models.Task, error) {
	program := tea.NewProgram(NewWatchModel(taskID, fetch))
	final, err := program.Run()
	if err != nil {
		return models.Task{}, fmt.Errorf("run watch tui: %w", err)
	}
	model, ok := final.(WatchModel)
	if !ok {
		return models.Task{}, fmt.Errorf("unexpected model type %T", final)
	}
	return model.Task(), nil
}
