package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for entities and HUD elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorSalmon
	ColorOrange
	ColorGray
)

var colorNames = map[Color]string{
	ColorDefault: "default",
	ColorRed:     "red",
	ColorGreen:   "green",
	ColorYellow:  "yellow",
	ColorBlue:    "blue",
	ColorMagenta: "magenta",
	ColorCyan:    "cyan",
	ColorWhite:   "white",
	ColorSalmon:  "salmon",
	ColorOrange:  "orange",
	ColorGray:    "gray",
}

// String returns the lowercase color name.
func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "default"
}
