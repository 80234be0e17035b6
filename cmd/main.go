package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tastemaker/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "tastemaker",
		Usage:    "Recommend catalog tracks from the songs you already like",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   runner.configure,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
