package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/core"
)

// Input scales applied to a single key press.
const (
	moveScale = 5.0
	rotScale  = 5.0
)

// WatchKeyMap defines the key bindings of the live view.
type WatchKeyMap struct {
	Up              key.Binding
	Down            key.Binding
	Left            key.Binding
	Right           key.Binding
	RotateLeft      key.Binding
	RotateRight     key.Binding
	DensityDown     key.Binding
	DensityUp       key.Binding
	FrictionDown    key.Binding
	FrictionUp      key.Binding
	RestitutionDown key.Binding
	RestitutionUp   key.Binding
	ShapePrev       key.Binding
	ShapeNext       key.Binding
	ControlPrev     key.Binding
	ControlNext     key.Binding
	Reset           key.Binding
	Plot            key.Binding
	Screenshot      key.Binding
	Help            key.Binding
	Quit            key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k WatchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.RotateLeft, k.Reset, k.Plot, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k WatchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.RotateLeft, k.RotateRight},
		{k.DensityDown, k.DensityUp, k.FrictionDown, k.FrictionUp, k.RestitutionDown, k.RestitutionUp},
		{k.ShapePrev, k.ShapeNext, k.ControlPrev, k.ControlNext},
		{k.Reset, k.Plot, k.Screenshot, k.Help, k.Quit},
	}
}

// DefaultWatchKeyMap returns default key bindings.
func DefaultWatchKeyMap() WatchKeyMap {
	return WatchKeyMap{
		Up:              key.NewBinding(key.WithKeys("w"), key.WithHelp("wasd", "push")),
		Down:            key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "push down")),
		Left:            key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "push left")),
		Right:           key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "push right")),
		RotateLeft:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "spin")),
		RotateRight:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "spin clockwise")),
		DensityDown:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "density ÷10")),
		DensityUp:       key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "density ×10")),
		FrictionDown:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "friction ÷10")),
		FrictionUp:      key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "friction ×10")),
		RestitutionDown: key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "restitution ÷10")),
		RestitutionUp:   key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "restitution ×10")),
		ShapePrev:       key.NewBinding(key.WithKeys("7"), key.WithHelp("7", "prev shape")),
		ShapeNext:       key.NewBinding(key.WithKeys("8"), key.WithHelp("8", "next shape")),
		ControlPrev:     key.NewBinding(key.WithKeys("9"), key.WithHelp("9", "prev controls")),
		ControlNext:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "next controls")),
		Reset:           key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Plot:            key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "trend")),
		Screenshot:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "screenshot")),
		Help:            key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:            key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// KeyMapper translates Bubble Tea key messages to harness commands.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys WatchKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultWatchKeyMap()}
}

// Keys returns the bindings, for help rendering.
func (km *KeyMapper) Keys() WatchKeyMap { return km.keys }

// MapKey translates a key message to a command.
// Returns the command (zero if the key is not a harness key) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (cmd control.Command, isQuit bool) {
	k := km.keys
	switch {
	case key.Matches(msg, k.Quit):
		return cmd, true
	case key.Matches(msg, k.Up):
		cmd.LinearForce = core.V(0, moveScale)
	case key.Matches(msg, k.Down):
		cmd.LinearForce = core.V(0, -moveScale)
	case key.Matches(msg, k.Left):
		cmd.LinearForce = core.V(-moveScale, 0)
	case key.Matches(msg, k.Right):
		cmd.LinearForce = core.V(moveScale, 0)
	case key.Matches(msg, k.RotateLeft):
		cmd.AngularForce = rotScale
	case key.Matches(msg, k.RotateRight):
		cmd.AngularForce = -rotScale
	case key.Matches(msg, k.DensityDown):
		cmd.DensityFactor = 0.1
	case key.Matches(msg, k.DensityUp):
		cmd.DensityFactor = 10
	case key.Matches(msg, k.FrictionDown):
		cmd.FrictionFactor = 0.1
	case key.Matches(msg, k.FrictionUp):
		cmd.FrictionFactor = 10
	case key.Matches(msg, k.RestitutionDown):
		cmd.RestitutionFactor = 0.1
	case key.Matches(msg, k.RestitutionUp):
		cmd.RestitutionFactor = 10
	case key.Matches(msg, k.ShapePrev):
		cmd.ShapeDelta = -1
	case key.Matches(msg, k.ShapeNext):
		cmd.ShapeDelta = 1
	case key.Matches(msg, k.ControlPrev):
		cmd.ControlDelta = -1
	case key.Matches(msg, k.ControlNext):
		cmd.ControlDelta = 1
	case key.Matches(msg, k.Reset):
		cmd.Reset = true
	}
	return cmd, false
}
