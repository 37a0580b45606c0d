// Package source resolves and fetches candidate task documents for a
// repository, from a local checkout or the GitHub API.
package source

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// docTokens are the filename tokens that mark a markdown file as a
// candidate task document.
var docTokens = []string{"prd", "roadmap", "todo", "checklist", "tasks"}

// IsTaskDoc reports whether a path names a candidate task document:
// a markdown file whose basename contains one of the known tokens.
// Matching is case-insensitive.
func IsTaskDoc(p string) bool {
	base := strings.ToLower(path.Base(p))
	if !strings.HasSuffix(base, ".md") {
		return false
	}
	for _, tok := range docTokens {
		if strings.Contains(base, tok) {
			return true
		}
	}
	return false
}

// Commit is a single commit probed from a repository.
type Commit struct {
	Hash    string
	Message string
	Date    time.Time
}

// Activity holds the auxiliary signals probed per repository. Fields
// not supported by a backend are left at their zero values.
type Activity struct {
	LastCommit      *Commit
	DaysSinceUpdate int
	Dirty           bool
	ChangedFiles    int
	OpenIssues      int
	OpenPRs         int
}

// Repo identifies a repository within a backend. Owner is empty for
// local checkouts.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

// Source lists and fetches task documents and probes repository
// metadata. All failures for a single repository or file are recoverable:
// callers treat them as that unit contributing no data.
type Source interface {
	// Name identifies the backend ("fs" or "github").
	Name() string
	// ListDocs returns candidate task document paths within the repo.
	ListDocs(ctx context.Context, repo Repo) ([]string, error)
	// FetchDoc returns the raw text of one document.
	FetchDoc(ctx context.Context, repo Repo, path string) (string, error)
	// Activity probes repository metadata signals.
	Activity(ctx context.Context, repo Repo) (*Activity, error)
	// RecentCommits returns up to n most recent commits, newest first.
	RecentCommits(ctx context.Context, repo Repo, n int) ([]Commit, error)
}

// RepoInfo describes a discovered repository.
type RepoInfo struct {
	Name        string
	Description string
	URL         string
	Archived    bool
	PushedAt    time.Time
}

// Lister is implemented by backends that can enumerate the repositories
// of an account.
type Lister interface {
	ListRepos(ctx context.Context, owner string) ([]RepoInfo, error)
}

// ErrNoToken is returned by remote calls when no API credential is
// configured; every remote probe short-circuits to "no data".
var ErrNoToken = errors.New("no API token configured")

// DaysSince converts a timestamp into whole days before now, never
// negative.
func DaysSince(t time.Time, now time.Time) int {
	if t.IsZero() {
		return 0
	}
	d := int(now.Sub(t).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
