// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/pulse/internal/board"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	refreshInterval time.Duration
}

// WithRefreshInterval sets how often the board file is re-read.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.refreshInterval = d
		}
	}
}

// RunTUI starts the board viewer over the given board file.
func RunTUI(ctx context.Context, dataFile string, opts ...TUIOption) error {
	c := &tuiConfig{
		refreshInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(dataFile, c.refreshInterval)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61afef"))
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75"))
	statusStyles = map[board.Status]lipgloss.Style{
		board.StatusActive: lipgloss.NewStyle().Foreground(lipgloss.Color("#98c379")),
		board.StatusLive:   lipgloss.NewStyle().Foreground(lipgloss.Color("#61afef")),
		board.StatusIdle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e5c07b")),
		board.StatusPaused: lipgloss.NewStyle().Foreground(lipgloss.Color("#abb2bf")),
	}
)

type tuiModel struct {
	dataFile        string
	refreshInterval time.Duration
	loadErr         error
	board           *board.Board
	selected        int
	filter          board.Status
	showHelp        bool
}

type tickMsg time.Time

func newTUIModel(dataFile string, refreshInterval time.Duration) *tuiModel {
	return &tuiModel{
		dataFile:        dataFile,
		refreshInterval: refreshInterval,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.refreshInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "j", "down":
			if m.selected < len(m.visible())-1 {
				m.selected++
			}
			return m, nil
		case "k", "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "1":
			m.setFilter(board.StatusActive)
			return m, nil
		case "2":
			m.setFilter(board.StatusLive)
			return m, nil
		case "3":
			m.setFilter(board.StatusIdle)
			return m, nil
		case "4":
			m.setFilter(board.StatusPaused)
			return m, nil
		case "0":
			m.setFilter("")
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.refreshInterval)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pulse") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.refreshInterval)
		return b.String()
	}

	if m.filter != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Filter: %s (0 to clear)", m.filter)) + "\n\n")
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading board:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.refreshInterval)
		return b.String()
	}
	if m.board == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.refreshInterval)
		return b.String()
	}

	projects := m.visible()
	if len(projects) == 0 {
		b.WriteString(dimStyle.Render("No projects.") + "\n\n")
		writeFooter(&b, m.refreshInterval)
		return b.String()
	}

	for i := range projects {
		writeProjectLine(&b, &projects[i], i == m.selected)
	}
	b.WriteString("\n")

	if m.selected < len(projects) {
		writeDetail(&b, &projects[m.selected])
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("Updated %s", m.board.Meta.LastUpdated.Local().Format("2006-01-02 15:04"))) + "\n")
	writeFooter(&b, m.refreshInterval)
	return b.String()
}

func (m *tuiModel) setFilter(s board.Status) {
	m.filter = s
	m.selected = 0
}

// visible returns projects matching the active filter.
func (m *tuiModel) visible() []board.Project {
	if m.board == nil {
		return nil
	}
	if m.filter == "" {
		return m.board.Projects
	}
	var out []board.Project
	for _, p := range m.board.Projects {
		if p.Status == m.filter {
			out = append(out, p)
		}
	}
	return out
}

func (m *tuiModel) refresh() {
	b, err := board.Load(m.dataFile)
	if err != nil {
		m.loadErr = err
		m.board = nil
		return
	}
	m.loadErr = nil
	m.board = b
	if n := len(m.visible()); m.selected >= n && n > 0 {
		m.selected = n - 1
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func writeProjectLine(b *strings.Builder, p *board.Project, selected bool) {
	marker := "  "
	if selected {
		marker = "> "
	}

	status := string(p.Status)
	if style, ok := statusStyles[p.Status]; ok {
		status = style.Render(status)
	}

	name := p.Name
	if p.Emoji != "" {
		name = p.Emoji + " " + name
	}
	if selected {
		name = titleStyle.Render(name)
	}

	done, total := p.Progress()
	b.WriteString(fmt.Sprintf("%s%-32s %s  %s\n", marker, name, status, progressBar(done, total)))
}

func writeDetail(b *strings.Builder, p *board.Project) {
	b.WriteString(titleStyle.Render(p.Name) + "\n")
	if p.Description != "" {
		b.WriteString("  " + dimStyle.Render(p.Description) + "\n")
	}
	if p.LastCommit != nil {
		b.WriteString(fmt.Sprintf("  Last commit: %s %s\n", p.LastCommit.Hash, p.LastCommit.Message))
	}
	b.WriteString(fmt.Sprintf("  Updated %dd ago, %d issues, %d PRs open\n\n", p.DaysSinceUpdate, p.OpenIssues, p.OpenPRs))

	for mi := range p.Milestones {
		ms := &p.Milestones[mi]
		name := ms.Name
		switch {
		case ms.Current:
			name = currentStyle.Render("* " + name)
		case ms.Done:
			name = doneStyle.Render(name)
		}
		b.WriteString("  " + name + "\n")
		if !ms.Current {
			continue
		}
		// Only the current milestone expands its task list.
		for _, task := range ms.Tasks {
			b.WriteString("    " + formatTask(task) + "\n")
		}
	}
	b.WriteString("\n")
}

func formatTask(t board.Task) string {
	mark := "[ ]"
	if t.Done {
		mark = "[x]"
	}
	line := mark + " " + t.Text
	switch {
	case t.Current:
		return currentStyle.Render(line)
	case t.Done:
		return doneStyle.Render(line)
	}
	return line
}

// progressBar renders a ten-cell bar with a done/total suffix.
func progressBar(done, total int) string {
	const cells = 10
	filled := 0
	if total > 0 {
		filled = done * cells / total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
	return fmt.Sprintf("%s %d/%d", bar, done, total)
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh board\n")
	b.WriteString("  j/k, arrows  Select project\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter active\n")
	b.WriteString("  2            Filter live\n")
	b.WriteString("  3            Filter idle\n")
	b.WriteString("  4            Filter paused\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(dimStyle.Render(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s", interval)) + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
