package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/davral/homebid/internal/config"
	"github.com/davral/homebid/pkg/logger"
)

// cfg is populated once in the app Before hook and read by the commands.
var cfg *config.Config //nolint:gochecknoglobals // CLI process state

func main() {
	app := &cli.App{
		Name:  "homebid",
		Usage: "Housing matching and bidding engine",
		Before: func(c *cli.Context) error {
			if err := logger.Init(); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			loaded, err := config.Load(c.Context)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				logger.Get().Warn(c.Context, "invalid log_level; falling back to info",
					logger.String("log_level", cfg.LogLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			return nil
		},
		Commands: []*cli.Command{
			matchCmd,
			seedCmd,
			reportCmd,
		},
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
