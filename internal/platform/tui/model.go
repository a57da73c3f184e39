package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/harness"
	"github.com/vovakirdan/twinworld/internal/render"
)

// plotRows is the height of the divergence trend panel.
const plotRows = 8

// Model is the Bubble Tea model of the live harness view.
type Model struct {
	harness  *harness.Harness
	canvas   *render.Canvas
	layout   render.Layout
	keys     *KeyMapper
	help     help.Model
	config   core.RuntimeConfig
	pending  control.Command
	lastTick time.Time
	showPlot bool
	err      error
	quitting bool
}

// NewModel creates a live view over h.
func NewModel(h *harness.Harness, cfg core.RuntimeConfig) Model {
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	m := Model{
		harness: h,
		layout:  render.DefaultLayout(),
		keys:    NewKeyMapper(),
		help:    help.New(),
		config:  cfg,
	}
	m.canvas = render.NewCanvas(core.NewScreen(cfg.ScreenW, m.screenHeight()))
	return m
}

func (m Model) screenHeight() int {
	h := m.config.ScreenH - 1 // help line
	if m.showPlot {
		h -= plotRows + 1
	}
	return max(h, 1)
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

func (m *Model) resize() {
	//nolint:errcheck // Never called mid-draw
	m.canvas.Resize(m.config.ScreenW, m.screenHeight())
}

// handleKey processes keyboard input. Harness keys are merged into the
// command of the next frame.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.Keys()
	switch {
	case key.Matches(msg, keys.Plot):
		m.showPlot = !m.showPlot
		m.resize()
		return m, nil
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	}

	cmd, quit := m.keys.MapKey(msg)
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	m.pending = m.pending.Merge(cmd)
	if m.err != nil && cmd.Reset {
		// A failed harness can only be revived by a reset.
		m.err = m.harness.Reset()
		m.pending = control.Command{}
		// The pause is not simulated time.
		m.lastTick = time.Time{}
		return m, tickCmd(m.config.TickRate)
	}
	return m, nil
}

// handleTick advances the harness by the real time since the previous frame.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.err != nil {
		return m, nil
	}
	dt := 1.0 / float64(m.config.TickRate)
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now

	_, err := m.harness.Tick(dt, m.pending)
	m.pending = control.Command{}
	if err != nil {
		m.err = err
		return m, nil
	}
	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".twinworld", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.harness.Config().Scenario, timestamp)
	//nolint:errcheck // Best-effort save, the view continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.canvas.Screen().String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if err := m.draw(); err != nil {
		return "render error: " + err.Error()
	}
	b.WriteString(RenderScreen(m.canvas.Screen()))

	if m.showPlot {
		b.WriteString("\n")
		b.WriteString(m.plot())
	}

	b.WriteString("\n")
	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		b.WriteString(errStyle.Render("halted: " + m.err.Error() + " (r to reset)"))
	} else {
		helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		b.WriteString(helpStyle.Render(m.help.View(m.keys.Keys())))
	}
	return b.String()
}

func (m Model) draw() error {
	if err := m.canvas.Begin(); err != nil {
		return err
	}
	if err := m.canvas.DrawHarness(m.harness, m.layout); err != nil {
		//nolint:errcheck // Session is closed either way
		m.canvas.End()
		return err
	}
	return m.canvas.End()
}

// plot renders the log-divergence trend.
func (m Model) plot() string {
	trend := m.harness.Trend()
	if len(trend) < 2 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Height(plotRows).
			Render("no divergence yet")
	}
	return asciigraph.Plot(trend,
		asciigraph.Height(plotRows-1),
		asciigraph.Width(max(m.config.ScreenW-12, 10)),
		asciigraph.Caption("log|diff-y|"),
	)
}

// Err returns the error that halted the harness, if any.
func (m Model) Err() error { return m.err }

// Run starts the Bubble Tea program with a live view over h.
func Run(h *harness.Harness, cfg core.RuntimeConfig) error {
	model := NewModel(h, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
