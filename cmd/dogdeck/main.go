package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/pawtrail/dogdeck/internal/app"
	"github.com/pawtrail/dogdeck/internal/config"
	"github.com/pawtrail/dogdeck/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dogdeck failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("dogdeck", pflag.ContinueOnError)
	pretty := flags.Bool("pretty", false, "indent JSON output")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("dogdeck starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := app.New(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize deck", "error", err)
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.ErrorObj("failed to close deck", "error", err)
		}
	}()

	return dispatch(ctx, d, flags.Args(), os.Stdout, *pretty)
}
