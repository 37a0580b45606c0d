package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nibzard/pulse/internal/board"
	"github.com/nibzard/pulse/internal/config"
	"github.com/nibzard/pulse/internal/scan"
	"github.com/nibzard/pulse/internal/source"
)

// scanCommand probes repositories and rewrites the board document. With
// a repo argument only that repository is rescanned; the rest of the
// document is preserved.
func scanCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("pulse scan", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "Print the board instead of writing it")

	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}

	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	agg := scan.New(cfg, src, logger)

	var b *board.Board
	if len(remaining) == 1 {
		b, err = rescanOne(ctx, cfg, agg, remaining[0])
		if err != nil {
			return err
		}
	} else {
		b, err = agg.Run(ctx)
		if err != nil {
			return fmt.Errorf("scanning repositories: %w", err)
		}
	}

	result := b.Validate(board.ValidationOptions{SchemaPath: cfg.SchemaFile})
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if !result.Valid {
		for _, e := range result.Errors {
			logger.Error("validation failed", "err", e)
		}
		return fmt.Errorf("scanned board failed validation")
	}

	if *dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	if err := b.Save(cfg.DataFile); err != nil {
		return fmt.Errorf("saving board: %w", err)
	}
	logger.Info("board written", "path", cfg.DataFile, "projects", len(b.Projects))
	return nil
}

// rescanOne scans a single repository and merges it into the stored
// board. A missing board file starts a fresh single-project document.
func rescanOne(ctx context.Context, cfg *config.Config, agg *scan.Aggregator, name string) (*board.Board, error) {
	repo := parseRepo(name, cfg.Owners)
	p := agg.ScanRepo(ctx, repo, nil)

	b, err := board.Load(cfg.DataFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		b = &board.Board{
			Meta:     board.Meta{Version: board.SchemaVersion, LastScanType: "single"},
			Projects: []board.Project{},
		}
	}

	b.UpsertProject(p)
	b.Meta.LastScanType = "single"
	return b, nil
}

func parseRepo(name string, owners []string) source.Repo {
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return source.Repo{Owner: name[:i], Name: name[i+1:]}
		}
	}
	owner := ""
	if len(owners) > 0 {
		owner = owners[0]
	}
	return source.Repo{Owner: owner, Name: name}
}
