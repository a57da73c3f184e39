package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/twinworld/internal/harness"
	"github.com/vovakirdan/twinworld/internal/registry"
	"github.com/vovakirdan/twinworld/internal/storage"
)

// Runs browser layout constants
const (
	minWidthForSidebar = 100 // Minimum width to show the scenario sidebar
	sidebarWidth       = 20
	maxRuns            = 200
	detailRows         = 6 // dump rows shown around the first divergence
)

// allScenarios is the sidebar entry that disables filtering.
const allScenarios = "all"

// RunsKeyMap defines the key bindings for the runs browser.
type RunsKeyMap struct {
	Up           key.Binding
	Down         key.Binding
	NextScenario key.Binding
	PrevScenario key.Binding
	Detail       key.Binding
	Quit         key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RunsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextScenario, k.PrevScenario, k.Detail, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k RunsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextScenario, k.PrevScenario},
		{k.Detail, k.Quit},
	}
}

// DefaultRunsKeyMap returns default key bindings.
func DefaultRunsKeyMap() RunsKeyMap {
	return RunsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextScenario: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next scenario"),
		),
		PrevScenario: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev scenario"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "dump"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RunsModel is the Bubble Tea model for browsing stored runs.
type RunsModel struct {
	scenarios   []string
	cursor      int
	store       *storage.Store
	all         []storage.Run
	runs        []storage.Run // runs of the selected scenario
	detail      []harness.DumpRow
	showDetail  bool
	err         error
	table       table.Model
	help        help.Model
	keys        RunsKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewRunsModel creates a runs browser over store.
func NewRunsModel(store *storage.Store, width, height int) RunsModel {
	scenarios := []string{allScenarios}
	for _, info := range registry.List() {
		scenarios = append(scenarios, info.ID)
	}

	m := RunsModel{
		scenarios:   scenarios,
		store:       store,
		keys:        DefaultRunsKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()

	if store != nil {
		m.all, m.err = store.RecentRuns(maxRuns)
	}
	m.filter()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *RunsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Run", Width: 8},
		{Title: "Scenario", Width: 10},
		{Title: "Variant", Width: 10},
		{Title: "Frames", Width: 7},
		{Title: "Max |dy|", Width: 10},
		{Title: "Diverged", Width: 9},
		{Title: "Date", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10-m.detailHeight(), 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *RunsModel) detailHeight() int {
	if m.showDetail {
		return detailRows + 2
	}
	return 0
}

// filter narrows the loaded runs to the selected scenario.
func (m *RunsModel) filter() {
	scenario := m.scenarios[m.cursor]
	m.runs = nil
	for _, r := range m.all {
		if scenario == allScenarios || r.Scenario == scenario {
			m.runs = append(m.runs, r)
		}
	}
	m.updateTableRows()
	m.loadDetail()
}

// updateTableRows updates the table with the filtered runs.
func (m *RunsModel) updateTableRows() {
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		diverged := "no"
		if r.Diverged() {
			diverged = fmt.Sprintf("@%d", r.FirstDivergence)
		}
		rows[i] = table.Row{
			shortID(r.ID),
			r.Scenario,
			r.Variant,
			fmt.Sprintf("%d", r.Frames),
			fmt.Sprintf("%.3g", r.MaxDiffY),
			diverged,
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// loadDetail loads the dump rows of the selected run.
func (m *RunsModel) loadDetail() {
	m.detail = nil
	if !m.showDetail || m.store == nil || len(m.runs) == 0 {
		return
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.runs) {
		return
	}
	rows, err := m.store.DumpRows(m.runs[idx].ID)
	if err != nil {
		m.err = err
		return
	}
	m.detail = window(rows, m.runs[idx].FirstDivergence, detailRows)
}

// window returns up to n rows starting just before the first divergence.
func window(rows []harness.DumpRow, first, n int) []harness.DumpRow {
	start := 0
	if first > 0 {
		start = first - 1
	}
	if start > len(rows) {
		start = len(rows)
	}
	end := min(start+n, len(rows))
	return rows[start:end]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Init initializes the runs model.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the runs browser.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextScenario):
			m.cursor = (m.cursor + 1) % len(m.scenarios)
			m.filter()
			return m, nil

		case key.Matches(msg, m.keys.PrevScenario):
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.scenarios) - 1
			}
			m.filter()
			return m, nil

		case key.Matches(msg, m.keys.Detail):
			m.showDetail = !m.showDetail
			m.table.SetHeight(max(m.height-10-m.detailHeight(), 3))
			m.loadDetail()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			m.loadDetail()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the runs browser.
func (m RunsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	title := fmt.Sprintf("RUNS - %s (%d)", m.scenarios[m.cursor], len(m.runs))
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderTableContent())
	}

	if m.showDetail {
		b.WriteString("\n")
		b.WriteString(m.renderDetail())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.err.Error()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the scenario sidebar next to the table.
func (m RunsModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Scenarios\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, name := range m.scenarios {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(sidebar.String()), "  ", m.renderTableContent())
}

// renderTableContent renders the table or empty message.
func (m RunsModel) renderTableContent() string {
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.runs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return tableStyle.Render(emptyStyle.Render("No runs recorded yet.\nUse `twinworld run --save` to record one."))
	}

	return tableStyle.Render(m.table.View())
}

// renderDetail renders the dump rows around the selected run's divergence.
func (m RunsModel) renderDetail() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	if len(m.detail) == 0 {
		return style.Italic(true).Render("no dump stored for this run")
	}
	lines := make([]string, len(m.detail))
	for i, r := range m.detail {
		lines[i] = r.String()
		if r.Left != r.Right {
			lines[i] = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(lines[i])
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	padding := (width - textWidth) / 2
	return strings.Repeat(" ", padding) + text
}

// RunRuns runs the runs browser.
func RunRuns(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewRunsModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
