package editor

import (
	"context"
	"sync"
	"testing"
	"time"
	"ttyscreen/internal/ansiesc"
	"ttyscreen/internal/termin"
	"ttyscreen/internal/text"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type display struct {
	mu     sync.Mutex
	lines  []*text.Line
	hidden int
}

func (d *display) WriteFitted(l *text.Line) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lines = append(d.lines, l)
	return nil
}

func (d *display) WithHiddenCursor(fn func() error) error {
	d.mu.Lock()
	d.hidden++
	d.mu.Unlock()

	return fn()
}

func (d *display) last() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.lines) == 0 {
		return ""
	}

	return d.lines[len(d.lines)-1].String()
}

func start(t *testing.T) (*Program, *display, context.Context, chan error) {
	t.Helper()

	d := &display{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	p := New(Config{
		Display:       d,
		InitialWidth:  80,
		InitialHeight: 24,
		Cancel:        cancel,
		Logger:        zerolog.Nop(),
		Accent:        text.Style{Kind: text.StyleColor, Fg: ansiesc.Green, Bg: ansiesc.Default},
	})

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	return p, d, ctx, done
}

func TestRendersLastKey(t *testing.T) {
	p, d, _, _ := start(t)

	require.Eventually(t, func() bool { return d.last() != "" }, time.Second, time.Millisecond)
	assert.Contains(t, d.last(), "press a key")

	p.Input([]termin.Event{termin.Key{Type: termin.KeyUp}})

	require.Eventually(t, func() bool { return d.last() == "key\tup\t#1\t80x24" }, time.Second, time.Millisecond)
}

func TestResizeRerenders(t *testing.T) {
	p, d, _, _ := start(t)

	p.Resize(120, 40)

	require.Eventually(t, func() bool { return d.last() == "key\tpress a key, q to quit\t#0\t120x40" }, time.Second, time.Millisecond)
}

func TestQuitKeyCancels(t *testing.T) {
	for _, k := range []termin.Key{
		{Type: termin.KeyQuit},
		{Type: termin.KeyCharacter, Rune: 'q'},
	} {
		p, _, ctx, done := start(t)

		p.Input([]termin.Event{k})

		<-ctx.Done()
		require.NoError(t, <-done)
	}
}

func TestInputAfterStopDoesNotBlock(t *testing.T) {
	p, _, ctx, done := start(t)

	p.Input([]termin.Event{termin.Key{Type: termin.KeyQuit}})
	<-ctx.Done()
	require.NoError(t, <-done)

	p.Input([]termin.Event{termin.Key{Type: termin.KeyCharacter, Rune: 'x'}})
	p.Resize(10, 10)
}

func TestRendersAccentStyle(t *testing.T) {
	_, d, _, _ := start(t)

	require.Eventually(t, func() bool { return d.last() != "" }, time.Second, time.Millisecond)

	d.mu.Lock()
	first := d.lines[0].Components()[0]
	d.mu.Unlock()

	assert.Equal(t, text.Color(ansiesc.Green, ansiesc.Default), first)
}
