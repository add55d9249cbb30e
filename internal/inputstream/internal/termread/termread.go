package termread

import (
	"fmt"
	"ttyscreen/internal/termin"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Source delivers one keypress or burst of input per call.
type Source interface {
	ReadAvailable() ([]byte, error)
}

type Consumer struct {
	in     Source
	logger zerolog.Logger
}

func New(in Source, logger zerolog.Logger) *Consumer {
	return &Consumer{
		in:     in,
		logger: logger,
	}
}

func (r *Consumer) Poll() ([]termin.Event, error) {
	b, err := r.in.ReadAvailable()
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}

	r.logger.Trace().Hex("bytes", b).Msg("input")

	return Decode(b), nil
}

func Decode(b []byte) []termin.Event {
	runes := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		r, w := utf8.DecodeRune(b[i:])
		runes = append(runes, r)
		i += w
	}

	keys := make([]termin.Event, 0, len(runes))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case 3:
			keys = append(keys, termin.Key{Type: termin.KeyQuit})
		case 9:
			keys = append(keys, termin.Key{Type: termin.KeyTab})
		case 10, 13:
			keys = append(keys, termin.Key{Type: termin.KeyEnter})
		case 27:
			if i+1 >= len(runes) {
				keys = append(keys, termin.Key{Type: termin.KeyEscape})
				continue
			}

			if runes[i+1] != '[' && runes[i+1] != 'O' {
				// ESC followed by a plain key is how terminals send alt
				i++
				keys = append(keys, termin.Key{Type: termin.KeyCharacter, Alt: true, Rune: runes[i]})
				continue
			}

			if i+2 >= len(runes) {
				keys = append(keys, termin.Unknown{Bytes: []byte(string(runes[i:]))})
				i = len(runes)
				continue
			}

			k := runes[i+2]
			i += 2

			switch k {
			case 'A':
				keys = append(keys, termin.Key{Type: termin.KeyUp})
			case 'B':
				keys = append(keys, termin.Key{Type: termin.KeyDown})
			case 'C':
				keys = append(keys, termin.Key{Type: termin.KeyRight})
			case 'D':
				keys = append(keys, termin.Key{Type: termin.KeyLeft})
			default:
				keys = append(keys, termin.Unknown{Bytes: []byte(string(runes[i-2 : i+1]))})
			}
		case 127, 8:
			keys = append(keys, termin.Key{Type: termin.KeyBackspace})
		default:
			if r < 32 {
				keys = append(keys, termin.Key{Type: termin.KeyControl, Rune: r + 'a' - 1})
				continue
			}

			keys = append(keys, termin.Key{Type: termin.KeyCharacter, Rune: r})
		}
	}

	return keys
}
