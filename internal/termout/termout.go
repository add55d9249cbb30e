package termout

import (
	"fmt"
	"io"
	"ttyscreen/internal/ansiesc"
)

// Writer emits escape sequences and text to out. The first write error is
// kept and every later call becomes a no-op until Reset.
type Writer struct {
	out io.Writer
	err error
}

func New(w io.Writer) *Writer {
	return &Writer{
		out: w,
	}
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) Reset() {
	w.err = nil
}

func (w *Writer) ClearScreen() {
	w.WriteString(ansiesc.ClearScreen())
}

func (w *Writer) ClearLine() {
	w.WriteString(ansiesc.ClearLine())
}

func (w *Writer) CarriageReturn() {
	w.WriteString("\r")
}

func (w *Writer) Newline() {
	w.WriteString("\n")
}

func (w *Writer) CursorUp(n int) {
	w.WriteString(ansiesc.CursorUp(n))
}

func (w *Writer) HideCursor() {
	w.WriteString(ansiesc.HideCursor())
}

func (w *Writer) ShowCursor() {
	w.WriteString(ansiesc.ShowCursor())
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}

	n, err := w.out.Write(p)
	if err != nil {
		w.err = fmt.Errorf("write terminal: %w", err)
	}

	return n, w.err
}

func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
