package cmd

import (
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/nibzard/pulse/internal/board"
	"github.com/nibzard/pulse/internal/config"
)

// doctorCommand checks config, backend prerequisites, and board file
// validity.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pulse doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	fmt.Println("Pulse Doctor")
	fmt.Println("============")
	fmt.Println()

	allOK := true

	fmt.Println("Config:")
	fmt.Printf("  ✅ Backend: %s\n", cfg.Backend)
	fmt.Printf("  ✅ Batch size: %d\n", cfg.BatchSize)
	fmt.Printf("  ✅ Thresholds: idle after %dd, paused after %dd\n", cfg.IdleAfterDays, cfg.PausedAfterDays)
	if len(cfg.Owners) == 0 && len(cfg.Tracked) == 0 {
		fmt.Println("  ⚠️  No owners or tracked repositories configured")
	} else if *verbose {
		fmt.Printf("  ✅ Owners: %v, tracked: %v\n", cfg.Owners, cfg.Tracked)
	}
	fmt.Println()

	fmt.Println("Backend:")
	switch cfg.Backend {
	case "fs":
		fmt.Printf("  Projects root: %s\n", cfg.ProjectsRoot)
		if info, err := os.Stat(cfg.ProjectsRoot); err != nil {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		} else if !info.IsDir() {
			fmt.Println("  ❌ Error: path is not a directory")
			allOK = false
		} else {
			fmt.Println("  ✅ OK")
		}
		if path, err := exec.LookPath("git"); err != nil {
			fmt.Println("  ⚠️  git not found (activity probes will be empty)")
		} else if *verbose {
			fmt.Printf("  ✅ git: %s\n", path)
		}
	case "github":
		if cfg.Token == "" {
			fmt.Println("  ⚠️  No token set (GITHUB_TOKEN or PULSE_GITHUB_TOKEN); scans will return no data")
		} else {
			fmt.Println("  ✅ Token present")
		}
	}
	fmt.Println()

	fmt.Printf("Board file: %s\n", cfg.DataFile)
	if _, err := os.Stat(cfg.DataFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (run 'pulse scan' to create it)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		b, err := board.Load(cfg.DataFile)
		if err != nil {
			fmt.Printf("  ❌ Load error: %v\n", err)
			allOK = false
		} else {
			fmt.Println("  ✅ OK")
			result := b.Validate(board.ValidationOptions{SchemaPath: cfg.SchemaFile})
			for _, w := range result.Warnings {
				fmt.Printf("  ⚠️  %s\n", w)
			}
			if result.Valid {
				fmt.Println("  ✅ Valid")
			} else {
				fmt.Println("  ❌ Validation failed:")
				for _, e := range result.Errors {
					fmt.Printf("     - %v\n", e)
				}
				allOK = false
			}
			if *verbose {
				fmt.Printf("  Projects: %d\n", len(b.Projects))
				for pi := range b.Projects {
					p := &b.Projects[pi]
					fmt.Printf("    - [%s] %s: %d%%\n", p.Status, p.Name, p.Percent())
				}
			}
		}
	}
	fmt.Println()

	fmt.Printf("Schema file: %s\n", cfg.SchemaFile)
	if info, err := os.Stat(cfg.SchemaFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (validation falls back to minimal checks)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if info.IsDir() {
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Pulse may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}
