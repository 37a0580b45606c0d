package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/pulse/internal/board"
	"github.com/nibzard/pulse/internal/config"
	"github.com/nibzard/pulse/internal/scan"
	"github.com/nibzard/pulse/internal/server"
)

// serveCommand runs the HTTP server until the context is cancelled.
// Every request rebuilds the board from the configured source.
func serveCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("pulse serve", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	agg := scan.New(cfg, src, logger)

	srv := server.New(cfg.ServeAddr, func(ctx context.Context) (*board.Board, error) {
		return agg.Run(ctx)
	}, logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	<-ctx.Done()
	return srv.Shutdown(context.Background())
}
