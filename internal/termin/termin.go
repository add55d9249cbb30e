package termin

import "fmt"

type KeyType int

type Key struct {
	Type KeyType
	Alt  bool
	Rune rune
}

const (
	KeyCharacter KeyType = iota - 1
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyEscape
	KeyBackspace
	KeyEnter
	KeyQuit
	KeyTab
	KeyControl
)

var keyNames = map[KeyType]string{
	KeyUp:        "up",
	KeyDown:      "down",
	KeyRight:     "right",
	KeyLeft:      "left",
	KeyEscape:    "escape",
	KeyBackspace: "backspace",
	KeyEnter:     "enter",
	KeyQuit:      "ctrl-c",
	KeyTab:       "tab",
}

func (k Key) String() string {
	var s string

	switch k.Type {
	case KeyCharacter:
		s = string(k.Rune)
	case KeyControl:
		s = fmt.Sprintf("ctrl-%c", k.Rune)
	default:
		s = keyNames[k.Type]
	}

	if k.Alt {
		s = "alt-" + s
	}

	return s
}

// Unknown is a byte sequence the decoder could not map to a key.
type Unknown struct {
	Bytes []byte
}

func (u Unknown) String() string {
	return fmt.Sprintf("unknown %q", u.Bytes)
}

type Event interface {
	String() string
}
