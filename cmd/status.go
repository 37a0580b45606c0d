package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nibzard/pulse/internal/board"
	"github.com/nibzard/pulse/internal/config"
	"github.com/nibzard/pulse/internal/ui"
)

// statusCommand prints the board as a text report, or launches the TUI
// viewer with -ui tui.
func statusCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pulse status", flag.ContinueOnError)
	uiMode := fs.String("ui", "", "UI mode (tui for terminal UI)")
	verbose := fs.Bool("v", false, "Show every milestone and task")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	if *uiMode == "tui" {
		return ui.RunTUI(ctx, cfg.DataFile)
	}

	b, err := board.Load(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("loading board (run 'pulse scan' first): %w", err)
	}

	writeStatusReport(os.Stdout, b, *verbose)
	return nil
}

func writeStatusReport(w io.Writer, b *board.Board, verbose bool) {
	fmt.Fprintf(w, "Pulse: %d projects, updated %s\n\n",
		b.Meta.ProjectCount, b.Meta.LastUpdated.Local().Format("2006-01-02 15:04"))

	for pi := range b.Projects {
		p := &b.Projects[pi]
		done, total := p.Progress()

		name := p.Name
		if p.Emoji != "" {
			name = p.Emoji + " " + name
		}
		fmt.Fprintf(w, "%-32s %-7s %3d%% (%d/%d)\n", name, p.Status, p.Percent(), done, total)

		if current := p.CurrentTask(); current != "" {
			fmt.Fprintf(w, "  -> %s\n", current)
		}

		if !verbose {
			continue
		}
		for mi := range p.Milestones {
			m := &p.Milestones[mi]
			mark := " "
			switch {
			case m.Done:
				mark = "x"
			case m.Current:
				mark = ">"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, m.Name)
			for _, task := range m.Tasks {
				fmt.Fprintf(w, "      %s\n", formatReportTask(task))
				for _, st := range task.Subtasks {
					fmt.Fprintf(w, "        %s\n", formatReportTask(st))
				}
			}
		}
		fmt.Fprintln(w)
	}
}

func formatReportTask(t board.Task) string {
	mark := "[ ]"
	if t.Done {
		mark = "[x]"
	}
	line := mark + " " + t.Text
	if t.Current {
		line += "  <- current"
	}
	return line
}
