package ansiesc

import (
	"errors"
	"fmt"
	"strings"
)

const CSI = "\x1b["

var ErrUnknownColor = errors.New("unknown color")

type Color int

const (
	Black Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	Default
)

var colorNames = [...]string{
	Black:   "black",
	Red:     "red",
	Green:   "green",
	Yellow:  "yellow",
	Blue:    "blue",
	Magenta: "magenta",
	Cyan:    "cyan",
	White:   "white",
	Default: "default",
}

func (c Color) Valid() bool {
	return c >= Black && c <= Default
}

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", int(c))
	}

	return colorNames[c]
}

// Foreground returns the SGR parameter selecting c as text color.
func (c Color) Foreground() (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownColor, c)
	}

	if c == Default {
		return 39, nil
	}

	return 30 + int(c), nil
}

// Background returns the SGR parameter selecting c as background color.
func (c Color) Background() (int, error) {
	fg, err := c.Foreground()
	if err != nil {
		return 0, err
	}

	return fg + 10, nil
}

func ParseColor(name string) (Color, error) {
	name = strings.ToLower(name)

	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, name)
}

func ShowCursor() string {
	return CSI + "?25h"
}

func HideCursor() string {
	return CSI + "?25l"
}

func ClearLine() string {
	return CSI + "2K"
}

func ClearScreen() string {
	return CSI + "2J"
}

func CursorUp(n int) string {
	if n < 0 {
		n = 0
	}

	return CSI + fmt.Sprintf("%dA", n)
}

func Inverse() string {
	return CSI + "7m"
}

func Reset() string {
	return CSI + "0m"
}

func SetColor(fg, bg Color) (string, error) {
	f, err := fg.Foreground()
	if err != nil {
		return "", fmt.Errorf("foreground: %w", err)
	}

	b, err := bg.Background()
	if err != nil {
		return "", fmt.Errorf("background: %w", err)
	}

	return CSI + fmt.Sprintf("%d;%dm", f, b), nil
}
