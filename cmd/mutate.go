package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/nibzard/pulse/internal/board"
	"github.com/nibzard/pulse/internal/config"
)

// maxSuggestions caps how many near-match ids are printed after a
// failed lookup.
const maxSuggestions = 3

// doneCommand marks a milestone, task, or subtask done by id.
func doneCommand(cfg *config.Config, args []string) error {
	return mutateCommand(cfg, args, "done", func(b *board.Board, id string) error {
		return b.MarkDone(id, time.Now().UTC())
	})
}

// currentCommand moves the focus pointer to the given id.
func currentCommand(cfg *config.Config, args []string) error {
	return mutateCommand(cfg, args, "current", func(b *board.Board, id string) error {
		return b.SetCurrent(id)
	})
}

func mutateCommand(cfg *config.Config, args []string, name string, apply func(*board.Board, string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pulse %s <id>", name)
	}
	id := args[0]

	b, err := board.Load(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("loading board (run 'pulse scan' first): %w", err)
	}

	if err := apply(b, id); err != nil {
		var nf *board.NotFoundError
		if errors.As(err, &nf) {
			printSuggestions(id, b.IDs())
		}
		return err
	}

	if err := b.Save(cfg.DataFile); err != nil {
		return fmt.Errorf("saving board: %w", err)
	}
	return nil
}

// printSuggestions fuzzy-matches the failed id against every known id
// and prints the closest few.
func printSuggestions(id string, ids []string) {
	matches := fuzzy.Find(id, ids)
	if len(matches) == 0 {
		return
	}
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	fmt.Fprintln(os.Stderr, "Did you mean:")
	for _, m := range matches {
		fmt.Fprintf(os.Stderr, "  %s\n", m.Str)
	}
}
