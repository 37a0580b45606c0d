package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// FS probes repositories checked out under a single projects root
// directory. Git signals are read by shelling out to git; when git is
// unavailable the signals degrade to zero values.
type FS struct {
	Root string
	now  func() time.Time
}

// NewFS creates a filesystem source rooted at the given directory.
func NewFS(root string) *FS {
	return &FS{Root: root, now: func() time.Time { return time.Now().UTC() }}
}

func (f *FS) Name() string { return "fs" }

func (f *FS) repoDir(repo Repo) string {
	return filepath.Join(f.Root, repo.Name)
}

// ListRepos enumerates the checkouts directly under the projects root.
// The owner argument is ignored on this backend.
func (f *FS) ListRepos(ctx context.Context, owner string) ([]RepoInfo, error) {
	entries, err := os.ReadDir(f.Root)
	if err != nil {
		return nil, fmt.Errorf("read projects root %s: %w", f.Root, err)
	}

	var repos []RepoInfo
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		repos = append(repos, RepoInfo{Name: e.Name()})
	}
	return repos, nil
}

// ListDocs walks the repository checkout and returns candidate task
// document paths relative to the repository root. Dot-directories and
// node_modules are skipped.
func (f *FS) ListDocs(ctx context.Context, repo Repo) ([]string, error) {
	dir := f.repoDir(repo)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("repo dir %s: %w", dir, err)
	}

	var docs []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			name := d.Name()
			if p != dir && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return relErr
		}
		if IsTaskDoc(rel) {
			docs = append(docs, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return docs, nil
}

// FetchDoc reads one document relative to the repository checkout.
func (f *FS) FetchDoc(ctx context.Context, repo Repo, path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(f.repoDir(repo), filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// Activity probes the most recent commit and working tree state via
// git. Issue and PR counts are not available on this backend.
func (f *FS) Activity(ctx context.Context, repo Repo) (*Activity, error) {
	act := &Activity{}

	commits, err := f.RecentCommits(ctx, repo, 1)
	if err == nil && len(commits) > 0 {
		c := commits[0]
		act.LastCommit = &c
		act.DaysSinceUpdate = DaysSince(c.Date, f.now())
	}

	if out, err := gitOutput(ctx, f.repoDir(repo), "status", "--porcelain"); err == nil {
		lines := nonEmptyLines(out)
		act.Dirty = len(lines) > 0
		act.ChangedFiles = len(lines)
	}

	return act, nil
}

// RecentCommits reads the git log, newest first.
func (f *FS) RecentCommits(ctx context.Context, repo Repo, n int) ([]Commit, error) {
	out, err := gitOutput(ctx, f.repoDir(repo), "log", fmt.Sprintf("-%d", n), "--format=%H%x09%s%x09%cI")
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	var commits []Commit
	for _, line := range nonEmptyLines(out) {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		c := Commit{Hash: parts[0], Message: parts[1]}
		if t, err := time.Parse(time.RFC3339, parts[2]); err == nil {
			c.Date = t
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
