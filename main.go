package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"ttyscreen/internal/config"
	"ttyscreen/internal/editor"
	"ttyscreen/internal/inputstream"
	"ttyscreen/internal/resizestream"
	"ttyscreen/internal/screen"
	"ttyscreen/internal/tty"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ttyscreen",
		Short: "Echo keypresses on a raw-mode terminal status line",
		Long: `ttyscreen opens the controlling terminal directly, switches it to raw
input and redraws a single status line for every key pressed. The terminal
mode is restored on exit, including on errors. Press q or ctrl-c to quit.`,
		Example: `  ttyscreen --log-path /tmp/ttyscreen.log --log-level debug
  TTYSCREEN_MODE_BACKEND=native ttyscreen`,
		Args:          cobra.NoArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	conf, err := config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return err
	}

	f, err := conf.OpenLog()
	if err != nil {
		return err
	}
	defer f.Close()

	logger := zerolog.New(f).Level(conf.Level()).With().Timestamp().Caller().Logger()

	h, err := tty.Open(
		tty.WithDevice(conf.Device),
		tty.WithModeRunner(conf.ModeRunner()),
		tty.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}

	err = screen.Run(h, logger, func(s *screen.Screen) error {
		if echo, err := h.Echo(); err == nil {
			logger.Debug().Bool("echo", echo).Msg("raw mode applied")
		}

		return runEditor(s, conf, logger)
	})
	if err != nil {
		logger.Error().Err(err).Msg("session failed")
		return err
	}

	return nil
}

type Runner interface {
	Run(ctx context.Context) error
}

func runEditor(s *screen.Screen, conf *config.Config, logger zerolog.Logger) error {
	g, ctx := errgroup.WithContext(context.Background())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := editor.New(editor.Config{
		Display:       s,
		InitialWidth:  s.Width(),
		InitialHeight: s.Height(),
		Cancel:        cancel,
		Logger:        logger,
		Accent:        conf.Accent(),
	})

	runProcessGroup(g, ctx,
		program,
		inputstream.New(s, logger, program),
		resizestream.New(s, logger, program),
		NewCanceler(logger, cancel),
	)

	return g.Wait()
}

func runProcessGroup(g *errgroup.Group, ctx context.Context, runners ...Runner) {
	for _, r := range runners {
		r := r
		g.Go(func() (err error) {
			defer func() {
				if perr := recover(); perr != nil {
					err = panicToError(perr)
				}
			}()

			return r.Run(ctx)
		})
	}
}

func panicToError(a any) error {
	switch v := a.(type) {
	case nil:
		return nil
	case string:
		return fmt.Errorf("panic: %s", v)
	case error:
		return fmt.Errorf("panic: %w", v)
	default:
		return fmt.Errorf("panic: %v", v)
	}
}

type Canceler struct {
	logger  zerolog.Logger
	cancels []context.CancelFunc
}

func NewCanceler(logger zerolog.Logger, cancels ...context.CancelFunc) *Canceler {
	return &Canceler{
		logger:  logger,
		cancels: cancels,
	}
}

func (c *Canceler) Run(ctx context.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP)
	defer signal.Stop(signals)

	select {
	case <-ctx.Done():
		c.logger.Info().Msg("application quitting, shutting down...")
	case s := <-signals:
		c.logger.Info().Str("signal", s.String()).Msg("received signal, shutting down...")
	}

	for _, cancel := range c.cancels {
		cancel()
	}

	return nil
}
