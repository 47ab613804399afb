package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"projecttracker/internal/client"
	"projecttracker/internal/model"
)

const requestTimeout = 10 * time.Second

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Interactive project board",
		Long: `Interactive project board.

Keys:
  j/k, up/down   move
  enter          open project
  space          toggle task completion
  r              reload
  tab, esc       back to projects
  q, ctrl+c      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := newLogger()
			defer l.Sync()

			m := newBoardModel(cmd.Context(), client.NewBoard(newClient(), l), l)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("board: %w", err)
			}
			return nil
		},
	}
}

type boardView int

const (
	viewProjects boardView = iota
	viewTasks
)

// boardDoneMsg 异步操作结束
type boardDoneMsg struct {
	action string
	err    error
}

type boardStyles struct {
	Title  lipgloss.Style
	Stage  lipgloss.Style
	Cursor lipgloss.Style
	Done   lipgloss.Style
	Subtle lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style
}

func defaultBoardStyles() boardStyles {
	return boardStyles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1),
		Stage:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Cursor: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Done:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
		Subtle: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}
}

// boardModel 终端看板；所有数据来自 client.Board 的快照
type boardModel struct {
	ctx    context.Context
	board  *client.Board
	logger *zap.Logger
	styles boardStyles

	view    boardView
	cursor  int
	loading bool
	status  string
	err     error
}

func newBoardModel(ctx context.Context, board *client.Board, l *zap.Logger) *boardModel {
	if ctx == nil {
		ctx = context.Background()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &boardModel{
		ctx:    ctx,
		board:  board,
		logger: l,
		styles: defaultBoardStyles(),
	}
}

// run 在后台执行一次 Board 操作
func (m *boardModel) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
		defer cancel()
		return boardDoneMsg{action: action, err: fn(ctx)}
	}
}

func (m *boardModel) Init() tea.Cmd {
	return m.run("load", m.board.Reload)
}

// visibleTasks 按阶段顺序展开的任务，光标在其上移动
func (m *boardModel) visibleTasks(snap client.Snapshot) []model.Task {
	var out []model.Task
	for _, s := range snap.Stages {
		out = append(out, snap.TasksFor(s.ID)...)
	}
	return out
}

func (m *boardModel) rows() int {
	snap := m.board.Snapshot()
	if m.view == viewProjects {
		return len(snap.Projects)
	}
	return len(m.visibleTasks(snap))
}

func (m *boardModel) clampCursor() {
	n := m.rows()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			m.logger.Warn("Board action failed", zap.String("action", msg.action), zap.Error(msg.err))
		} else {
			m.err = nil
			m.status = msg.action + " ok"
			if msg.action == "open" {
				m.view = viewTasks
				m.cursor = 0
			}
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "r":
		return m, m.run("reload", m.board.Reload)
	}

	if m.loading {
		return m, nil
	}

	snap := m.board.Snapshot()
	switch m.view {
	case viewProjects:
		if msg.String() == "enter" && m.cursor < len(snap.Projects) {
			id := snap.Projects[m.cursor].ID
			return m, m.run("open", func(ctx context.Context) error {
				return m.board.SelectProject(ctx, id)
			})
		}
	case viewTasks:
		switch msg.String() {
		case " ":
			tasks := m.visibleTasks(snap)
			if m.cursor < len(tasks) {
				task := tasks[m.cursor]
				return m, m.run("toggle", func(ctx context.Context) error {
					_, err := m.board.ToggleTask(ctx, task)
					return err
				})
			}
		case "tab", "esc":
			m.view = viewProjects
			m.cursor = 0
			for i, p := range snap.Projects {
				if snap.Selected != nil && p.ID == snap.Selected.ID {
					m.cursor = i
				}
			}
		}
	}
	return m, nil
}

func (m *boardModel) View() string {
	var b strings.Builder
	snap := m.board.Snapshot()

	switch m.view {
	case viewProjects:
		b.WriteString(m.styles.Title.Render("Projects") + "\n")
		if len(snap.Projects) == 0 {
			b.WriteString(m.styles.Subtle.Render("No projects. Try: trackctl seed") + "\n")
		}
		for i, p := range snap.Projects {
			b.WriteString(m.line(i, p.Name) + "\n")
		}
	case viewTasks:
		title := "Tasks"
		if snap.Selected != nil {
			title = snap.Selected.Name
		}
		b.WriteString(m.styles.Title.Render(title) + "\n")
		if len(snap.Stages) == 0 {
			b.WriteString(m.styles.Subtle.Render("No stages.") + "\n")
		}
		row := 0
		for _, s := range snap.Stages {
			b.WriteString(m.styles.Stage.Render(s.Name) + "\n")
			tasks := snap.TasksFor(s.ID)
			if len(tasks) == 0 {
				b.WriteString(m.styles.Subtle.Render("    no tasks") + "\n")
			}
			for _, t := range tasks {
				text := fmt.Sprintf("%s %s  %s  (%s)", checkbox(t.Completed), t.Deadline, t.Title, t.ResponsiblePerson)
				if t.Completed {
					text = m.styles.Done.Render(text)
				}
				b.WriteString(m.line(row, text) + "\n")
				row++
			}
		}
	}

	b.WriteString("\n" + m.statusLine() + "\n")
	return b.String()
}

func (m *boardModel) line(row int, text string) string {
	if row == m.cursor {
		return m.styles.Cursor.Render("> ") + text
	}
	return "  " + text
}

func (m *boardModel) statusLine() string {
	switch {
	case m.loading:
		return m.styles.Subtle.Render("loading…")
	case m.err != nil:
		return m.styles.Error.Render("error: " + m.err.Error())
	case m.status != "":
		return m.styles.Status.Render(m.status)
	}
	help := "enter open · r reload · q quit"
	if m.view == viewTasks {
		help = "space toggle · tab back · r reload · q quit"
	}
	return m.styles.Subtle.Render(help)
}
