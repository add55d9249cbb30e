// Package tty wraps the controlling terminal device.
//
// The device is opened by path rather than taken from stdin/stdout so that a
// process with redirected standard streams can still draw and read keys.
package tty

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/pkg/term/termios"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const DefaultDevice = "/dev/tty"

var ErrNoTTY = errors.New("no controlling terminal")

type Option func(*Handle)

func WithDevice(path string) Option {
	return func(h *Handle) {
		h.path = path
	}
}

func WithModeRunner(r ModeRunner) Option {
	return func(h *Handle) {
		h.modes = r
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handle) {
		h.logger = logger
	}
}

type Handle struct {
	path   string
	file   *os.File
	fd     int
	buf    []byte
	modes  ModeRunner
	logger zerolog.Logger
}

func Open(opts ...Option) (*Handle, error) {
	h := &Handle{
		path:   DefaultDevice,
		buf:    make([]byte, 256),
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(h)
	}

	f, err := os.OpenFile(h.path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrNoTTY, h.path, err)
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		f.Close()
		return nil, fmt.Errorf("%w: %s is not a terminal", ErrNoTTY, h.path)
	}

	h.file = f
	h.fd = fd

	if h.modes == nil {
		if _, err := exec.LookPath("stty"); err != nil {
			h.logger.Warn().Err(err).Msg("stty not found, using native terminal modes")
			h.modes = NewNative()
		} else {
			h.modes = Stty{}
		}
	}

	h.logger.Debug().Str("device", h.path).Int("fd", fd).Msg("terminal opened")

	return h, nil
}

func (h *Handle) ReadByte() (byte, error) {
	n, err := h.file.Read(h.buf[:1])
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}

	if n == 0 {
		return 0, fmt.Errorf("read: %w", os.ErrClosed)
	}

	return h.buf[0], nil
}

// ReadAvailable blocks for one byte, then drains whatever else is already
// buffered so escape sequences and pastes arrive as one slice.
func (h *Handle) ReadAvailable() ([]byte, error) {
	b, err := h.ReadByte()
	if err != nil {
		return nil, err
	}

	out := []byte{b}

	for {
		ready, err := h.ready()
		if err != nil {
			return out, err
		}

		if !ready {
			return out, nil
		}

		n, err := h.file.Read(h.buf)
		if err != nil {
			return out, fmt.Errorf("read: %w", err)
		}

		if n == 0 {
			return out, nil
		}

		out = append(out, h.buf[:n]...)
	}
}

func (h *Handle) ready() (bool, error) {
	fds := []unix.PollFd{
		{Fd: int32(h.fd), Events: unix.POLLIN},
	}

	for {
		n, err := unix.Poll(fds, 0)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return false, fmt.Errorf("poll: %w", err)
		}

		return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
	}
}

func (h *Handle) Write(p []byte) (int, error) {
	return h.file.Write(p)
}

func (h *Handle) WindowSize() (rows, cols int, err error) {
	w, r, err := term.GetSize(h.fd)
	if err != nil {
		return 0, 0, fmt.Errorf("get term size: %w", err)
	}

	return r, w, nil
}

// Echo reports whether the terminal currently echoes input.
func (h *Handle) Echo() (bool, error) {
	var t unix.Termios
	if err := termios.Tcgetattr(uintptr(h.fd), &t); err != nil {
		return false, fmt.Errorf("tcgetattr: %w", err)
	}

	return t.Lflag&unix.ECHO != 0, nil
}

func (h *Handle) RunModeCommand(args string) (string, error) {
	h.logger.Debug().Str("args", args).Msg("mode command")

	out, err := h.modes.RunMode(h.file, args)
	if err != nil {
		h.logger.Error().Err(err).Str("args", args).Msg("mode command failed")
		return "", err
	}

	return out, nil
}

func (h *Handle) Close() error {
	return h.file.Close()
}
