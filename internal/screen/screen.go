// Package screen drives a terminal session: it saves the terminal mode,
// switches to raw input, writes styled lines and restores the saved mode on
// every way out.
package screen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"ttyscreen/internal/termout"
	"ttyscreen/internal/text"
	"ttyscreen/internal/tty"

	"github.com/rs/zerolog"
)

var (
	ErrNotATTY = errors.New("not a tty: terminal reports zero height")
	ErrBusy    = errors.New("a screen session is already active")
)

// live guards the one physical terminal a process has.
var live atomic.Bool

// Terminal is the device a Screen owns. *tty.Handle implements it.
type Terminal interface {
	io.Writer
	ReadByte() (byte, error)
	ReadAvailable() ([]byte, error)
	WindowSize() (rows, cols int, err error)
	RunModeCommand(args string) (string, error)
	Close() error
}

type State int

const (
	StateUninitialized State = iota
	StateRaw
	StateSuspended
	StateRestored
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRaw:
		return "raw"
	case StateSuspended:
		return "suspended"
	case StateRestored:
		return "restored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Screen struct {
	term     Terminal
	out      *termout.Writer
	logger   zerolog.Logger
	original string
	saved    bool
	state    State
}

// Enter takes ownership of t and puts it in raw mode. On failure t is
// closed, and if its mode had been saved it is restored first.
func Enter(t Terminal, logger zerolog.Logger) (*Screen, error) {
	if !live.CompareAndSwap(false, true) {
		t.Close()
		return nil, ErrBusy
	}

	s := &Screen{
		term:   t,
		out:    termout.New(t),
		logger: logger,
	}

	original, err := t.RunModeCommand(tty.SaveArgs)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("save terminal mode: %w", err), s.Close())
	}

	s.original = original
	s.saved = true

	if err := s.raw(); err != nil {
		return nil, errors.Join(err, s.Close())
	}

	if s.Height() == 0 {
		return nil, errors.Join(ErrNotATTY, s.Close())
	}

	s.logger.Debug().Str("mode", s.original).Msg("screen session started")

	return s, nil
}

// Run enters a session, calls fn and closes the session whatever fn does,
// including panicking.
func Run(t Terminal, logger zerolog.Logger, fn func(*Screen) error) (err error) {
	s, err := Enter(t, logger)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(s)
}

func (s *Screen) State() State {
	return s.state
}

func (s *Screen) raw() error {
	if _, err := s.term.RunModeCommand(tty.RawArgs); err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}

	s.state = StateRaw

	return nil
}

func (s *Screen) restore() error {
	if _, err := s.term.RunModeCommand(s.original); err != nil {
		return fmt.Errorf("restore terminal mode: %w", err)
	}

	s.state = StateSuspended

	return nil
}

func (s *Screen) flush() error {
	err := s.out.Err()
	s.out.Reset()

	return err
}

// Close restores the saved mode, ends the line and releases the terminal.
// Only the first call has any effect.
func (s *Screen) Close() error {
	if s.state == StateRestored {
		return nil
	}

	var errs []error

	if s.saved {
		errs = append(errs, s.restore())

		s.out.Reset()
		s.out.Newline()
		errs = append(errs, s.flush())
	}

	errs = append(errs, s.term.Close())

	s.state = StateRestored
	live.Store(false)

	s.logger.Debug().Msg("screen session ended")

	return errors.Join(errs...)
}

func (s *Screen) Height() int {
	rows, _ := s.size()
	return rows
}

func (s *Screen) Width() int {
	_, cols := s.size()
	return cols
}

func (s *Screen) size() (int, int) {
	rows, cols, err := s.term.WindowSize()
	if err != nil {
		s.logger.Warn().Err(err).Msg("window size")
		return 0, 0
	}

	return rows, cols
}

func (s *Screen) ReadByte() (byte, error) {
	return s.term.ReadByte()
}

func (s *Screen) ReadAvailable() ([]byte, error) {
	return s.term.ReadAvailable()
}

// WriteLine redraws the current line with l. Tabs are expanded; the line is
// not clipped. The line is composed in full before anything reaches the
// terminal.
func (s *Screen) WriteLine(l *text.Line) error {
	var buf bytes.Buffer
	line := termout.New(&buf)

	line.ClearLine()
	line.CarriageReturn()

	for _, c := range l.Components() {
		switch c.Kind {
		case text.KindText:
			line.WriteString(text.ExpandTabs(c.Text))
		case text.KindStyle:
			seq, err := c.Style.Sequence()
			if err != nil {
				return fmt.Errorf("write line: %w", err)
			}

			line.WriteString(seq)
		default:
			return fmt.Errorf("write line: unknown component kind %d", c.Kind)
		}
	}

	s.out.Write(buf.Bytes())

	return s.flush()
}

// WriteFitted expands tabs, truncates l to the terminal width and writes it.
func (s *Screen) WriteFitted(l *text.Line) error {
	return s.WriteLine(l.ExpandTabs().Truncate(s.Width()))
}

func (s *Screen) CursorUp(n int) error {
	s.out.CursorUp(n)
	return s.flush()
}

func (s *Screen) Newline() error {
	s.out.Newline()
	return s.flush()
}

func (s *Screen) ClearScreen() error {
	s.out.ClearScreen()
	return s.flush()
}

// WithHiddenCursor runs fn with the cursor hidden and shows it again
// afterwards, even if fn fails or panics.
func (s *Screen) WithHiddenCursor(fn func() error) (err error) {
	s.out.HideCursor()
	if err := s.flush(); err != nil {
		return err
	}

	defer func() {
		s.out.ShowCursor()
		if ferr := s.flush(); ferr != nil {
			err = errors.Join(err, ferr)
		}
	}()

	return fn()
}

// Suspend hands the terminal back in its original mode while fn runs, then
// re-enters raw mode. If fn fails or panics the original mode is restored
// instead.
func (s *Screen) Suspend(fn func() error) (err error) {
	if err := s.restore(); err != nil {
		return err
	}

	resumed := false

	defer func() {
		if resumed {
			return
		}

		if rerr := s.restore(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	if err := fn(); err != nil {
		return err
	}

	if err := s.raw(); err != nil {
		return err
	}

	resumed = true

	return nil
}
