package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorDarkGray
)

// Scene roles mapped onto the palette.
const (
	ColorWall      = ColorGray
	ColorFloor     = ColorDarkGray
	ColorPlayer    = ColorBrightCyan
	ColorEscort    = ColorBrightGreen
	ColorExit      = ColorBrightYellow
	ColorSightLine = ColorWhite
	ColorBlocked   = ColorBrightRed
	ColorWaypoint  = ColorMagenta
	ColorHUD       = ColorBrightWhite
)
