// Package editor is a small read loop that shows each key pressed on a
// single status line.
package editor

import (
	"context"
	"fmt"
	"ttyscreen/internal/termin"
	"ttyscreen/internal/text"

	"github.com/rs/zerolog"
)

type Display interface {
	WriteFitted(*text.Line) error
	WithHiddenCursor(func() error) error
}

type Config struct {
	Display       Display
	InitialWidth  int
	InitialHeight int
	Cancel        context.CancelFunc
	Logger        zerolog.Logger
	Accent        text.Style
}

type Program struct {
	invalidated chan struct{}
	actions     chan func()
	stopped     chan struct{}
	display     Display
	logger      zerolog.Logger
	cancel      context.CancelFunc
	accent      text.Style
	model       *model
}

type model struct {
	height  int
	width   int
	last    termin.Event
	pressed int
}

func New(conf Config) *Program {
	return &Program{
		invalidated: make(chan struct{}, 1),
		actions:     make(chan func()),
		stopped:     make(chan struct{}),
		display:     conf.Display,
		logger:      conf.Logger,
		cancel:      conf.Cancel,
		accent:      conf.Accent,
		model: &model{
			height: conf.InitialHeight,
			width:  conf.InitialWidth,
		},
	}
}

// send hands a to the Run loop, dropping it once Run has returned.
func (p *Program) send(a func()) {
	select {
	case p.actions <- a:
	case <-p.stopped:
	}
}

func (p *Program) Input(events []termin.Event) {
	p.send(func() {
		for _, e := range events {
			p.model.last = e
			p.model.pressed++

			if k, ok := e.(termin.Key); ok {
				p.inputKey(k)
			}
		}

		p.invalidate()
	})
}

func (p *Program) inputKey(k termin.Key) {
	switch {
	case k.Type == termin.KeyQuit:
		p.cancel()
	case k.Type == termin.KeyCharacter && k.Rune == 'q' && !k.Alt:
		p.cancel()
	}
}

func (p *Program) Resize(w, h int) {
	p.send(func() {
		p.model.height = h
		p.model.width = w
		p.invalidate()
	})
}

func (p *Program) invalidate() {
	select {
	case p.invalidated <- struct{}{}:
	default:
	}
}

func (p *Program) line() *text.Line {
	key := "press a key, q to quit"
	if p.model.last != nil {
		key = p.model.last.String()
	}

	return text.From(
		text.Styled(p.accent),
		text.Str("key"),
		text.Reset(),
		text.Str("\t"),
		text.Inverse(),
		text.Str(key),
		text.Reset(),
		text.Str(fmt.Sprintf("\t#%d\t%dx%d", p.model.pressed, p.model.width, p.model.height)),
	)
}

func (p *Program) render() {
	err := p.display.WithHiddenCursor(func() error {
		return p.display.WriteFitted(p.line())
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("render")
	}
}

func (p *Program) Run(ctx context.Context) error {
	defer close(p.stopped)

	p.render()

	done := ctx.Done()

	for {
		select {
		case <-done:
			return nil
		case <-p.invalidated:
			p.render()
		case a := <-p.actions:
			a()

			select {
			case <-p.invalidated:
				p.render()
			default:
				continue
			}
		}
	}
}
