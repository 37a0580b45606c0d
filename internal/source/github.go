package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHub probes repositories through the GitHub REST API. All calls
// short-circuit to ErrNoToken when no bearer credential is configured.
type GitHub struct {
	BaseURL string
	Token   string
	Client  *http.Client
	now     func() time.Time
}

// NewGitHub creates a GitHub source with a 10 second request timeout.
func NewGitHub(token string) *GitHub {
	return &GitHub{
		BaseURL: defaultGitHubAPI,
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (g *GitHub) Name() string { return "github" }

// get performs an authenticated GET and decodes the JSON response.
func (g *GitHub) get(ctx context.Context, path string, out interface{}) error {
	if g.Token == "" {
		return ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.Token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ListRepos enumerates the repositories owned by an account, newest
// pushed first. Archived filtering is left to the caller so skip-list
// decisions stay in one place.
func (g *GitHub) ListRepos(ctx context.Context, owner string) ([]RepoInfo, error) {
	var raw []struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		HTMLURL     string    `json:"html_url"`
		Archived    bool      `json:"archived"`
		PushedAt    time.Time `json:"pushed_at"`
	}
	path := fmt.Sprintf("/users/%s/repos?per_page=100&sort=pushed&type=owner", url.PathEscape(owner))
	if err := g.get(ctx, path, &raw); err != nil {
		return nil, err
	}

	repos := make([]RepoInfo, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, RepoInfo{
			Name:        r.Name,
			Description: r.Description,
			URL:         r.HTMLURL,
			Archived:    r.Archived,
			PushedAt:    r.PushedAt,
		})
	}
	return repos, nil
}

// ListDocs fetches the recursive tree of the default branch and filters
// it down to candidate task documents.
func (g *GitHub) ListDocs(ctx context.Context, repo Repo) ([]string, error) {
	branch, err := g.defaultBranch(ctx, repo)
	if err != nil {
		return nil, err
	}

	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}
	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name), url.PathEscape(branch))
	if err := g.get(ctx, path, &tree); err != nil {
		return nil, err
	}

	var docs []string
	for _, entry := range tree.Tree {
		if entry.Type == "blob" && IsTaskDoc(entry.Path) {
			docs = append(docs, entry.Path)
		}
	}
	return docs, nil
}

func (g *GitHub) defaultBranch(ctx context.Context, repo Repo) (string, error) {
	var info struct {
		DefaultBranch string `json:"default_branch"`
	}
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	if err := g.get(ctx, path, &info); err != nil {
		return "", err
	}
	if info.DefaultBranch == "" {
		return "main", nil
	}
	return info.DefaultBranch, nil
}

// FetchDoc retrieves one file through the contents endpoint and decodes
// its base64 envelope.
func (g *GitHub) FetchDoc(ctx context.Context, repo Repo, docPath string) (string, error) {
	var envelope struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	path := fmt.Sprintf("/repos/%s/%s/contents/%s",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name), escapeDocPath(docPath))
	if err := g.get(ctx, path, &envelope); err != nil {
		return "", err
	}

	if envelope.Encoding != "base64" {
		return "", fmt.Errorf("fetch %s: unexpected encoding %q", docPath, envelope.Encoding)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(envelope.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", docPath, err)
	}
	return string(decoded), nil
}

// Activity probes the last commit, open issue count, and open non-draft
// pull request count. Working tree signals do not exist on this backend.
func (g *GitHub) Activity(ctx context.Context, repo Repo) (*Activity, error) {
	act := &Activity{}

	commits, err := g.RecentCommits(ctx, repo, 1)
	if err != nil {
		return nil, err
	}
	if len(commits) > 0 {
		c := commits[0]
		act.LastCommit = &c
		act.DaysSinceUpdate = DaysSince(c.Date, g.now())
	}

	var issues []struct {
		PullRequest *struct{} `json:"pull_request"`
	}
	issuePath := fmt.Sprintf("/repos/%s/%s/issues?state=open&per_page=100",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	if err := g.get(ctx, issuePath, &issues); err == nil {
		for _, issue := range issues {
			// The issues endpoint reports PRs too; count real issues only.
			if issue.PullRequest == nil {
				act.OpenIssues++
			}
		}
	}

	var pulls []struct {
		Draft bool `json:"draft"`
	}
	pullPath := fmt.Sprintf("/repos/%s/%s/pulls?state=open&per_page=100",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	if err := g.get(ctx, pullPath, &pulls); err == nil {
		for _, pr := range pulls {
			if !pr.Draft {
				act.OpenPRs++
			}
		}
	}

	return act, nil
}

// RecentCommits lists up to n commits from the default branch, newest
// first.
func (g *GitHub) RecentCommits(ctx context.Context, repo Repo, n int) ([]Commit, error) {
	var raw []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message   string `json:"message"`
			Committer struct {
				Date time.Time `json:"date"`
			} `json:"committer"`
		} `json:"commit"`
	}
	path := fmt.Sprintf("/repos/%s/%s/commits?per_page=%d",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name), n)
	if err := g.get(ctx, path, &raw); err != nil {
		return nil, err
	}

	commits := make([]Commit, 0, len(raw))
	for _, c := range raw {
		msg := c.Commit.Message
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		commits = append(commits, Commit{
			Hash:    c.SHA,
			Message: msg,
			Date:    c.Commit.Committer.Date,
		})
	}
	return commits, nil
}

// escapeDocPath escapes each path segment while keeping separators.
func escapeDocPath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
