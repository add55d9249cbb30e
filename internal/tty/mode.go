package tty

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// Argument forms understood by every ModeRunner.
const (
	SaveArgs = "-g"
	RawArgs  = "raw -echo -icanon"
)

var ErrModeCommandFailed = errors.New("mode command failed")

type ModeCommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ModeCommandError) Error() string {
	msg := fmt.Sprintf("%s: %q", ErrModeCommandFailed, e.Command)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}

	return msg
}

func (e *ModeCommandError) Unwrap() []error {
	return []error{ErrModeCommandFailed, e.Err}
}

// ModeRunner changes or reports the line discipline of dev. RunMode with
// SaveArgs returns a token that, passed back as args, restores that state.
type ModeRunner interface {
	RunMode(dev *os.File, args string) (string, error)
}

// Stty shells out to stty with the device as its stdin.
type Stty struct{}

func (Stty) RunMode(dev *os.File, args string) (string, error) {
	cmd := exec.Command("stty", strings.Fields(args)...)
	cmd.Stdin = dev

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ModeCommandError{
			Command: strings.TrimSpace("stty " + args),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}

	return strings.TrimRight(stdout.String(), " \t\r\n"), nil
}

// Native applies the same argument forms through termios calls instead of a
// subprocess. Saved states live in memory and are addressed by token.
type Native struct {
	saved map[string]*term.State
}

func NewNative() *Native {
	return &Native{
		saved: make(map[string]*term.State),
	}
}

func (n *Native) RunMode(dev *os.File, args string) (string, error) {
	fd := int(dev.Fd())

	fail := func(err error) (string, error) {
		return "", &ModeCommandError{Command: args, Err: err}
	}

	switch args {
	case SaveArgs:
		st, err := term.GetState(fd)
		if err != nil {
			return fail(err)
		}

		token := fmt.Sprintf("native:%d", len(n.saved))
		n.saved[token] = st

		return token, nil
	case RawArgs:
		if _, err := term.MakeRaw(fd); err != nil {
			return fail(err)
		}

		return "", nil
	}

	st, ok := n.saved[args]
	if !ok {
		return fail(errors.New("unknown mode token"))
	}

	if err := term.Restore(fd, st); err != nil {
		return fail(err)
	}

	return "", nil
}
