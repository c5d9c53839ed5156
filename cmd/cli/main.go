package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labi-le/clipwatch/internal/emitter"
	"github.com/labi-le/clipwatch/internal/lock"
	"github.com/labi-le/clipwatch/internal/metadata"
	"github.com/labi-le/clipwatch/internal/monitor"
	"github.com/labi-le/clipwatch/internal/notification"
	"github.com/labi-le/clipwatch/pkg/clipboard/x11"
	"github.com/labi-le/clipwatch/pkg/id"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

type action struct {
	verbose     bool
	showVersion bool
	showHelp    bool
	notify      bool
	dedup       bool
	exclusive   bool
}

func parseFlags() (x11.Options, action) {
	var (
		opts x11.Options
		act  action
	)

	flag.StringVarP(&opts.Display, "display", "d", "", "X display to watch. Default: $DISPLAY")
	flag.Uint32Var(&opts.MaxTargets, "max_targets", x11.DefaultMaxTargets, "Maximum number of targets read from the owner")

	flag.BoolVar(&act.dedup, "dedup", false, "Skip a capture whose content equals the previous one")
	flag.BoolVar(&act.notify, "notify", false, "Show a desktop notification for every capture")
	flag.BoolVar(&act.exclusive, "exclusive", false, "Refuse to start if another instance watches the same display")
	flag.BoolVar(&act.verbose, "verbose", false, "Verbose logs")
	flag.BoolVarP(&act.showVersion, "version", "v", false, "Show version")
	flag.BoolVarP(&act.showHelp, "help", "h", false, "Show help")

	flag.Parse()

	if opts.MaxTargets == 0 {
		opts.MaxTargets = x11.DefaultMaxTargets
	}

	return opts, act
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts, cfg := parseFlags()

	if cfg.showHelp {
		flag.Usage()
		return
	}

	applyTagsOverrides(&cfg)
	logger := initLogger(cfg.verbose)

	logger.Info().EmbedObject(metadata.Build{}).Send()

	if cfg.showVersion {
		// ^
		return
	}

	if cfg.verbose {
		logger.Info().Msg("verbose mode enabled")
	}

	if cfg.exclusive {
		unlock := lock.Must(logger, opts.Display)
		defer unlock()
	}

	ids, err := id.NewGenerator()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init id generator")
	}

	clip, err := x11.New(logger, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to watch clipboard")
	}
	defer clip.Close()

	mon := monitor.New(monitor.Options{
		Logger:   logger,
		Emitter:  emitter.New(os.Stdout, time.Now),
		Notifier: notification.New(cfg.notify),
		IDs:      ids,
		Dedup:    cfg.dedup,
	})

	logger.Info().Str("display", opts.Display).Msg("watching clipboard")

	if err := clip.Watch(ctx, mon.Handle); err != nil {
		logger.Fatal().Err(err).Msg("clipboard watch stopped")
	}
}

func initLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	if verbose {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			short := file
			for i := len(file) - 1; i > 0; i-- {
				if file[i] == '/' {
					short = file[i+1:]
					break
				}
			}
			return fmt.Sprintf("%s:%d", short, line)
		}
		return zerolog.New(output).
			Level(zerolog.TraceLevel).
			With().
			Timestamp().
			Caller().
			Logger()
	}

	return zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}
