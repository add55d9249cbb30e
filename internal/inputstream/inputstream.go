package inputstream

import (
	"context"
	"ttyscreen/internal/inputstream/internal/termread"
	"ttyscreen/internal/termin"

	"github.com/rs/zerolog"
)

type Receiver interface {
	Input([]termin.Event)
}

type Reader struct {
	in       termread.Source
	logger   zerolog.Logger
	receiver Receiver
}

func New(in termread.Source, logger zerolog.Logger, receiver Receiver) *Reader {
	return &Reader{
		in:       in,
		logger:   logger,
		receiver: receiver,
	}
}

func (r *Reader) Run(ctx context.Context) error {
	consumer := termread.New(r.in, r.logger)

	ch := make(chan []termin.Event)
	errs := make(chan error, 1)

	// terminal reads cannot be cancelled, so the polling goroutine is left
	// behind on shutdown rather than joined
	go func() {
		for {
			events, err := consumer.Poll()
			if err != nil {
				errs <- err
				return
			}

			select {
			case ch <- events:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := ctx.Done()

	for {
		select {
		case <-done:
			return nil
		case err := <-errs:
			r.logger.Error().Err(err).Msg("poll error")
			return err
		case events := <-ch:
			r.receiver.Input(events)
		}
	}
}
