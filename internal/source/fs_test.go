package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsTaskDoc(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"ROADMAP.md", true},
		{"docs/prd.md", true},
		{"TODO.md", true},
		{"tasks/project-tasks.md", true},
		{"Checklist.md", true},
		{"README.md", false},
		{"roadmap.txt", false},
		{"notes.md", false},
		{"src/todo.go", false},
	}

	for _, tt := range tests {
		if got := IsTaskDoc(tt.path); got != tt.want {
			t.Errorf("IsTaskDoc(%q): got %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFSListDocs(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "myproj")
	mustWrite(t, filepath.Join(repoDir, "ROADMAP.md"), "- [ ] a\n")
	mustWrite(t, filepath.Join(repoDir, "docs", "tasks.md"), "- [ ] b\n")
	mustWrite(t, filepath.Join(repoDir, "README.md"), "hello\n")
	mustWrite(t, filepath.Join(repoDir, ".git", "todo.md"), "ignored\n")
	mustWrite(t, filepath.Join(repoDir, "node_modules", "pkg", "TODO.md"), "ignored\n")

	src := NewFS(root)
	docs, err := src.ListDocs(context.Background(), Repo{Name: "myproj"})
	if err != nil {
		t.Fatalf("ListDocs failed: %v", err)
	}

	want := map[string]bool{"ROADMAP.md": true, "docs/tasks.md": true}
	if len(docs) != len(want) {
		t.Fatalf("docs: got %v, want %v", docs, want)
	}
	for _, d := range docs {
		if !want[d] {
			t.Errorf("unexpected doc %q", d)
		}
	}
}

func TestFSListRepos(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "alpha", "README.md"), "a\n")
	mustWrite(t, filepath.Join(root, "beta", "README.md"), "b\n")
	mustWrite(t, filepath.Join(root, ".cache", "x"), "ignored\n")
	mustWrite(t, filepath.Join(root, "stray.txt"), "ignored\n")

	src := NewFS(root)
	repos, err := src.ListRepos(context.Background(), "")
	if err != nil {
		t.Fatalf("ListRepos failed: %v", err)
	}

	if len(repos) != 2 {
		t.Fatalf("repos: got %v", repos)
	}
	names := map[string]bool{repos[0].Name: true, repos[1].Name: true}
	if !names["alpha"] || !names["beta"] {
		t.Errorf("repos: got %v", repos)
	}
}

func TestFSListDocsMissingDir(t *testing.T) {
	src := NewFS(t.TempDir())
	if _, err := src.ListDocs(context.Background(), Repo{Name: "absent"}); err == nil {
		t.Fatal("expected error for missing repo dir")
	}
}

func TestFSFetchDoc(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "p", "ROADMAP.md"), "## Phase 1\n- [ ] x\n")

	src := NewFS(root)
	content, err := src.FetchDoc(context.Background(), Repo{Name: "p"}, "ROADMAP.md")
	if err != nil {
		t.Fatalf("FetchDoc failed: %v", err)
	}
	if content != "## Phase 1\n- [ ] x\n" {
		t.Errorf("content: got %q", content)
	}

	if _, err := src.FetchDoc(context.Background(), Repo{Name: "p"}, "missing.md"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want int
	}{
		{now.AddDate(0, 0, -5), 5},
		{now, 0},
		{now.Add(2 * time.Hour), 0},
		{time.Time{}, 0},
	}

	for _, tt := range tests {
		if got := DaysSince(tt.t, now); got != tt.want {
			t.Errorf("DaysSince(%v): got %d, want %d", tt.t, got, tt.want)
		}
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
