package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

func TestPanicToError(t *testing.T) {
	boom := errors.New("boom")

	assert.NoError(t, panicToError(nil))
	assert.EqualError(t, panicToError("bad"), "panic: bad")
	assert.ErrorIs(t, panicToError(boom), boom)
	assert.EqualError(t, panicToError(42), "panic: 42")
}

func TestRunProcessGroupRecoversPanics(t *testing.T) {
	var g errgroup.Group

	runProcessGroup(&g, context.Background(), runnerFunc(func(ctx context.Context) error {
		panic("exploded")
	}))

	assert.EqualError(t, g.Wait(), "panic: exploded")
}

func TestCancelerStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	c := NewCanceler(zerolog.Nop(), func() { close(stopped) })

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("canceler did not fire")
	}

	require.NoError(t, <-done)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"log-path", "log-level", "device", "mode-backend", "color"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
