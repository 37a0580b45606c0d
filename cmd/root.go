// Package cmd implements the CLI command structure for pulse.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/pulse/internal/config"
	"github.com/nibzard/pulse/internal/logging"
	"github.com/nibzard/pulse/internal/source"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the pulse CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pulse", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger := logging.FromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps)

	subcommand := "status"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "scan":
		return scanCommand(ctx, cfg, logger, remainingArgs)
	case "status":
		return statusCommand(ctx, cfg, remainingArgs)
	case "done":
		return doneCommand(cfg, remainingArgs)
	case "current":
		return currentCommand(cfg, remainingArgs)
	case "serve":
		return serveCommand(ctx, cfg, logger, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newSource builds the content source for the configured backend.
func newSource(cfg *config.Config) (source.Source, error) {
	switch cfg.Backend {
	case "fs":
		return source.NewFS(cfg.ProjectsRoot), nil
	case "github":
		return source.NewGitHub(cfg.Token), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("pulse version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Pulse - A personal project dashboard built from checklist markdown")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pulse [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  scan [repo]   Scan all tracked repositories (or one) and rewrite the board")
	fmt.Fprintln(w, "  status        Show the board (default command)")
	fmt.Fprintln(w, "  done <id>     Mark a milestone, task, or subtask done")
	fmt.Fprintln(w, "  current <id>  Move the current focus pointer")
	fmt.Fprintln(w, "  serve         Serve the board over HTTP")
	fmt.Fprintln(w, "  doctor        Check config, backend, and board file validity")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Status Options (use with 'status' command):")
	fmt.Fprintln(w, "  -ui string")
	fmt.Fprintln(w, "        UI mode (tui for terminal UI)")
	fmt.Fprintln(w, "  -v    Show every milestone and task")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Scan Options (use with 'scan' command):")
	fmt.Fprintln(w, "  -dry-run")
	fmt.Fprintln(w, "        Print the board instead of writing it")
}
