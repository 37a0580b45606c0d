package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"
)

// Load reads and parses a board document from path. A missing or
// malformed file is fatal to the caller: no command can proceed
// without a readable store.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board file: %w", err)
	}

	var b Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse board file: %w", err)
	}

	return &b, nil
}

// Save rewrites the full document atomically with 2-space indentation.
// Every save refreshes meta.lastUpdated and meta.projectCount as part
// of the same write.
func (b *Board) Save(path string) error {
	b.Meta.LastUpdated = time.Now().UTC()
	b.Meta.Version = SchemaVersion
	b.Meta.ProjectCount = len(b.Projects)

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write board file: %w", err)
	}

	return nil
}
