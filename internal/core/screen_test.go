package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("New screen should be filled with spaces, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetColored(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColored(5, 5, 'o', ColorRed)
	cell := s.GetCell(5, 5)
	if cell.Rune != 'o' || cell.Color != ColorRed {
		t.Errorf("GetCell(5, 5) = %+v, expected {o red}", cell)
	}

	// Out of bounds writes are ignored
	s.SetColored(-1, 0, 'A', ColorRed)
	s.SetColored(100, 0, 'A', ColorRed)
	if s.Get(-1, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}

	s.Clear()
	if cell := s.GetCell(5, 5); cell.Rune != ' ' || cell.Color != ColorDefault {
		t.Errorf("After Clear, GetCell(5, 5) = %+v, expected blank", cell)
	}
}

func TestScreenDrawTextColored(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawTextColored(2, 1, "Shape: Box", ColorYellow)

	if got := s.Row(1); !strings.HasPrefix(got, "  Shape: Box") {
		t.Errorf("Row(1) = %q, expected text at column 2", got)
	}
	if c := s.GetCell(2, 1).Color; c != ColorYellow {
		t.Errorf("color = %v, expected yellow", c)
	}

	// Clipped at the right edge
	s.DrawText(18, 0, "Hello")
	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("Text should be clipped at right boundary")
	}
}

func TestScreenDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           [][2]int
	}{
		{"horizontal", 1, 1, 4, 1, [][2]int{{1, 1}, {2, 1}, {3, 1}, {4, 1}}},
		{"vertical", 2, 0, 2, 3, [][2]int{{2, 0}, {2, 1}, {2, 2}, {2, 3}}},
		{"diagonal", 0, 0, 3, 3, [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"reversed", 4, 2, 1, 2, [][2]int{{1, 2}, {2, 2}, {3, 2}, {4, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreen(6, 6)
			s.DrawLine(tt.x0, tt.y0, tt.x1, tt.y1, '*', ColorGreen)
			for _, p := range tt.want {
				if s.Get(p[0], p[1]) != '*' {
					t.Errorf("expected '*' at (%d, %d), got %q", p[0], p[1], s.Get(p[0], p[1]))
				}
			}
		})
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawBox(NewRect(1, 1, 5, 4))

	corners := map[[2]int]rune{
		{1, 1}: '┌',
		{5, 1}: '┐',
		{1, 4}: '└',
		{5, 4}: '┘',
	}
	for p, r := range corners {
		if s.Get(p[0], p[1]) != r {
			t.Errorf("corner (%d, %d) = %q, expected %q", p[0], p[1], s.Get(p[0], p[1]), r)
		}
	}
	for x := 2; x < 5; x++ {
		if s.Get(x, 1) != '─' {
			t.Errorf("Top edge should be '─' at x=%d, got %q", x, s.Get(x, 1))
		}
	}
}

func TestScreenStringAndResize(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawText(0, 0, "AAAAA")
	s.DrawText(0, 1, "BBBBB")
	s.DrawText(0, 2, "CCCCC")

	if got, expected := s.String(), "AAAAA\nBBBBB\nCCCCC"; got != expected {
		t.Errorf("String() = %q, expected %q", got, expected)
	}

	s.Resize(8, 4)
	if s.Width() != 8 || s.Height() != 4 {
		t.Errorf("After resize, dimensions should be 8x4, got %dx%d", s.Width(), s.Height())
	}
	if got := s.Row(0); got != "        " {
		t.Errorf("Row(0) after resize = %q, expected blank", got)
	}
	if got := s.Row(-1); len(got) != 8 {
		t.Errorf("Out of bounds row length = %d, expected 8", len(got))
	}
}
