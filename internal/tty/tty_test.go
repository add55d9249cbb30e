package tty

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openPTY(t *testing.T, opts ...Option) (*os.File, *Handle) {
	t.Helper()

	ptmx, pts, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}

	t.Cleanup(func() {
		ptmx.Close()
		pts.Close()
	})

	h, err := Open(append([]Option{WithDevice(pts.Name())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	return ptmx, h
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(WithDevice(filepath.Join(t.TempDir(), "tty")))
	require.ErrorIs(t, err, ErrNoTTY)
}

func TestOpenNotATerminal(t *testing.T) {
	_, err := Open(WithDevice(os.DevNull))
	require.ErrorIs(t, err, ErrNoTTY)
}

func TestWindowSize(t *testing.T) {
	ptmx, h := openPTY(t)

	require.NoError(t, pty.Setsize(ptmx, &pty.Winsize{Rows: 24, Cols: 80}))

	rows, cols, err := h.WindowSize()
	require.NoError(t, err)
	assert.Equal(t, 24, rows)
	assert.Equal(t, 80, cols)
}

func TestNativeModes(t *testing.T) {
	_, h := openPTY(t, WithModeRunner(NewNative()))

	echo, err := h.Echo()
	require.NoError(t, err)
	require.True(t, echo)

	token, err := h.RunModeCommand(SaveArgs)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = h.RunModeCommand(RawArgs)
	require.NoError(t, err)

	echo, err = h.Echo()
	require.NoError(t, err)
	assert.False(t, echo)

	_, err = h.RunModeCommand(token)
	require.NoError(t, err)

	echo, err = h.Echo()
	require.NoError(t, err)
	assert.True(t, echo)

	_, err = h.RunModeCommand("native:unknown")
	require.ErrorIs(t, err, ErrModeCommandFailed)
}

func TestReadByteAndAvailable(t *testing.T) {
	ptmx, h := openPTY(t, WithModeRunner(NewNative()))

	_, err := h.RunModeCommand(RawArgs)
	require.NoError(t, err)

	_, err = ptmx.Write([]byte("q"))
	require.NoError(t, err)

	b, err := h.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('q'), b)

	_, err = ptmx.Write([]byte("\x1b[A"))
	require.NoError(t, err)

	got, err := h.ReadAvailable()
	require.NoError(t, err)
	assert.Equal(t, []byte("\x1b[A"), got)
}

func TestWrite(t *testing.T) {
	ptmx, h := openPTY(t, WithModeRunner(NewNative()))

	_, err := h.RunModeCommand(RawArgs)
	require.NoError(t, err)

	n, err := h.Write([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	buf := make([]byte, 2)
	_, err = io.ReadFull(ptmx, buf)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf))
}

func TestSttyModes(t *testing.T) {
	if _, err := exec.LookPath("stty"); err != nil {
		t.Skip("stty not installed")
	}

	_, h := openPTY(t, WithModeRunner(Stty{}))

	token, err := h.RunModeCommand(SaveArgs)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, strings.TrimSpace(token))

	_, err = h.RunModeCommand(RawArgs)
	require.NoError(t, err)

	echo, err := h.Echo()
	require.NoError(t, err)
	assert.False(t, echo)

	_, err = h.RunModeCommand(token)
	require.NoError(t, err)

	echo, err = h.Echo()
	require.NoError(t, err)
	assert.True(t, echo)
}

func TestSttyFailure(t *testing.T) {
	if _, err := exec.LookPath("stty"); err != nil {
		t.Skip("stty not installed")
	}

	_, h := openPTY(t, WithModeRunner(Stty{}))

	_, err := h.RunModeCommand("--no-such-setting")
	require.ErrorIs(t, err, ErrModeCommandFailed)

	var mce *ModeCommandError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "stty --no-such-setting", mce.Command)
}
