package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want control.Command
	}{
		{"w", runeKey('w'), control.Command{LinearForce: core.V(0, moveScale)}},
		{"s", runeKey('s'), control.Command{LinearForce: core.V(0, -moveScale)}},
		{"a", runeKey('a'), control.Command{LinearForce: core.V(-moveScale, 0)}},
		{"d", runeKey('d'), control.Command{LinearForce: core.V(moveScale, 0)}},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, control.Command{AngularForce: rotScale}},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, control.Command{AngularForce: -rotScale}},
		{"1", runeKey('1'), control.Command{DensityFactor: 0.1}},
		{"2", runeKey('2'), control.Command{DensityFactor: 10}},
		{"4", runeKey('4'), control.Command{FrictionFactor: 10}},
		{"5", runeKey('5'), control.Command{RestitutionFactor: 0.1}},
		{"7", runeKey('7'), control.Command{ShapeDelta: -1}},
		{"0", runeKey('0'), control.Command{ControlDelta: 1}},
		{"r", runeKey('r'), control.Command{Reset: true}},
		{"unbound", runeKey('x'), control.Command{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, quit := km.MapKey(tt.msg)
			if quit {
				t.Fatalf("MapKey(%s) quit = true", tt.name)
			}
			if got != tt.want {
				t.Errorf("MapKey(%s) = %+v, expected %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestMapKeyQuit(t *testing.T) {
	km := NewKeyMapper()
	for _, msg := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		if _, quit := km.MapKey(msg); !quit {
			t.Errorf("MapKey(%s) quit = false, expected true", msg.String())
		}
	}
}
