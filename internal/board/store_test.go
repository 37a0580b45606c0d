package board

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "board.json")

	original := testBoard()
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Meta.Version != SchemaVersion {
		t.Errorf("meta.version: got %d, want %d", loaded.Meta.Version, SchemaVersion)
	}
	if loaded.Meta.ProjectCount != 1 {
		t.Errorf("meta.projectCount: got %d, want 1", loaded.Meta.ProjectCount)
	}
	if len(loaded.Projects) != 1 || loaded.Projects[0].ID != "pulse" {
		t.Fatalf("projects not preserved: %+v", loaded.Projects)
	}
	if loaded.Projects[0].Milestones[0].Tasks[1].Subtasks[0].ID != "s1" {
		t.Error("subtasks not preserved")
	}
}

func TestSaveRefreshesLastUpdated(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "board.json")

	b := testBoard()
	stale := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	b.Meta.LastUpdated = stale

	if err := b.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !b.Meta.LastUpdated.After(stale) {
		t.Errorf("lastUpdated not refreshed: %v", b.Meta.LastUpdated)
	}
}

func TestSaveFormat(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "board.json")

	if err := testBoard().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := string(data)
	if !strings.HasSuffix(text, "\n") {
		t.Error("file should end with a newline")
	}
	if !strings.Contains(text, "\n  \"projects\"") {
		t.Error("file should be pretty-printed with 2-space indent")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse board file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestProgressAndPercent(t *testing.T) {
	b := testBoard()
	p := &b.Projects[0]

	// Leaves: t1, B.1-B.3 (t2 contributes its subtasks), t3.
	done, total := p.Progress()
	if done != 1 || total != 5 {
		t.Errorf("progress: got %d/%d, want 1/5", done, total)
	}
	if p.Percent() != 20 {
		t.Errorf("percent: got %d, want 20", p.Percent())
	}
}

func TestPercentZeroTasks(t *testing.T) {
	p := &Project{ID: "empty", Name: "empty", Status: StatusActive}
	if p.Percent() != 0 {
		t.Errorf("percent with zero leaf tasks: got %d, want 0", p.Percent())
	}
}

func TestCurrentTaskWalksToSubtask(t *testing.T) {
	b := testBoard()
	if got := b.Projects[0].CurrentTask(); got != "B.1" {
		t.Errorf("CurrentTask: got %q, want B.1", got)
	}
}

func TestValidateMinimal(t *testing.T) {
	tests := []struct {
		name    string
		board   *Board
		wantErr bool
	}{
		{"valid", testBoard(), false},
		{
			"wrong version",
			&Board{Meta: Meta{Version: 99}, Projects: []Project{}},
			true,
		},
		{
			"missing projects",
			&Board{Meta: Meta{Version: SchemaVersion}},
			true,
		},
		{
			"project missing id",
			&Board{Meta: Meta{Version: SchemaVersion}, Projects: []Project{{Name: "x", Status: StatusActive}}},
			true,
		},
		{
			"invalid status",
			&Board{Meta: Meta{Version: SchemaVersion}, Projects: []Project{{ID: "x", Name: "x", Status: "zombie"}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.board.Validate(ValidationOptions{})
			if result.Valid == tt.wantErr {
				t.Errorf("Valid: got %v, errors: %v", result.Valid, result.Errors)
			}
		})
	}
}

func TestValidateReportsPaths(t *testing.T) {
	b := &Board{Meta: Meta{Version: SchemaVersion}, Projects: []Project{{Name: "x", Status: StatusActive}}}
	result := b.Validate(ValidationOptions{})
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0].Error(), "projects[0].id") {
		t.Errorf("expected path in error, got %v", result.Errors)
	}
}

func TestValidateMissingSchemaFallsBack(t *testing.T) {
	result := testBoard().Validate(ValidationOptions{SchemaPath: filepath.Join(t.TempDir(), "nope.json")})
	if result.UsedSchema {
		t.Error("schema validation should not have been used")
	}
	if !result.Valid {
		t.Errorf("fallback validation should pass: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the missing schema")
	}
}
