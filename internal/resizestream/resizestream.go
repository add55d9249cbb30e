package resizestream

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Sizer interface {
	Height() int
	Width() int
}

type Receiver interface {
	Resize(w, h int)
}

type Listener struct {
	sizer    Sizer
	interval time.Duration
	logger   zerolog.Logger
	receiver Receiver
}

func New(sizer Sizer, logger zerolog.Logger, receiver Receiver) *Listener {
	return &Listener{
		sizer:    sizer,
		interval: 100 * time.Millisecond,
		logger:   logger,
		receiver: receiver,
	}
}

func (a Listener) Run(ctx context.Context) error {
	var width, height int

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w, h := a.sizer.Width(), a.sizer.Height()
			if w == 0 || h == 0 {
				continue
			}

			if width == w && height == h {
				continue
			}

			a.logger.Debug().Int("width", w).Int("height", h).Msg("resize")
			a.receiver.Resize(w, h)

			width = w
			height = h
		}
	}
}
