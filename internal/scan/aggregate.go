// Package scan orchestrates probing, parsing, and merging into the
// board document.
package scan

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/pulse/internal/board"
	"github.com/nibzard/pulse/internal/checklist"
	"github.com/nibzard/pulse/internal/config"
	"github.com/nibzard/pulse/internal/source"
)

// prdTableNameCol is the task-name column used when scanning
// table-embedded checklists.
const prdTableNameCol = 1

// palette is the fixed set of colors assigned to projects without a
// configured color. Assignment hashes the repository name, so a given
// name always renders the same color across runs.
var palette = []string{
	"#e06c75", "#98c379", "#e5c07b", "#61afef",
	"#c678dd", "#56b6c2", "#d19a66", "#abb2bf",
}

// Aggregator builds the board document from a content source.
type Aggregator struct {
	cfg    *config.Config
	src    source.Source
	logger *log.Logger
	now    func() time.Time
}

// New creates an aggregator over the given source.
func New(cfg *config.Config, src source.Source, logger *log.Logger) *Aggregator {
	return &Aggregator{
		cfg:    cfg,
		src:    src,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// target is one repository queued for probing, with any metadata known
// from discovery.
type target struct {
	repo source.Repo
	info *source.RepoInfo
}

// Run scans every tracked or discovered repository and returns the full
// board. Individual repository failures degrade to empty projects;
// only an empty target list is an error.
func (a *Aggregator) Run(ctx context.Context) (*board.Board, error) {
	targets, err := a.resolveTargets(ctx)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no repositories to scan")
	}

	a.logger.Info("scanning repositories", "count", len(targets), "backend", a.src.Name(), "batch", a.cfg.BatchSize)

	projects := make([]board.Project, len(targets))
	for start := 0; start < len(targets); start += a.cfg.BatchSize {
		end := start + a.cfg.BatchSize
		if end > len(targets) {
			end = len(targets)
		}

		// All repositories in a batch are probed concurrently; batches
		// run sequentially to stay under API rate limits.
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				projects[i] = a.ScanRepo(ctx, targets[i].repo, targets[i].info)
			}(i)
		}
		wg.Wait()
	}

	sortProjects(projects)

	b := &board.Board{
		Meta: board.Meta{
			Version:      board.SchemaVersion,
			LastScanType: "full",
			Sources:      []string{a.src.Name()},
		},
		Projects: projects,
	}
	return b, nil
}

// resolveTargets builds the repository list. A static tracked list wins
// when configured; otherwise repositories are discovered from the
// backend, per owner for remote backends and ownerless for the
// filesystem. Archived and skip-listed repositories are excluded; names
// are deduplicated case-insensitively across owners, first seen wins.
func (a *Aggregator) resolveTargets(ctx context.Context) ([]target, error) {
	if len(a.cfg.Tracked) > 0 {
		var targets []target
		for _, name := range a.cfg.Tracked {
			if a.cfg.Skipped(name) {
				continue
			}
			targets = append(targets, target{repo: parseRepoName(name, a.cfg.Owners)})
		}
		return targets, nil
	}

	lister, canList := a.src.(source.Lister)
	if !canList {
		return nil, nil
	}

	owners := a.cfg.Owners
	if len(owners) == 0 {
		owners = []string{""}
	}

	var targets []target
	seen := make(map[string]bool)
	for _, owner := range owners {
		repos, err := lister.ListRepos(ctx, owner)
		if err != nil {
			a.logger.Warn("listing repos failed", "owner", owner, "err", err)
			continue
		}
		for _, info := range repos {
			key := strings.ToLower(info.Name)
			if info.Archived || a.cfg.Skipped(info.Name) || seen[key] {
				continue
			}
			seen[key] = true
			info := info
			targets = append(targets, target{
				repo: source.Repo{Owner: owner, Name: info.Name},
				info: &info,
			})
		}
	}
	return targets, nil
}

// parseRepoName splits an optional "owner/name" form, falling back to
// the first configured owner.
func parseRepoName(name string, owners []string) source.Repo {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return source.Repo{Owner: name[:i], Name: name[i+1:]}
	}
	owner := ""
	if len(owners) > 0 {
		owner = owners[0]
	}
	return source.Repo{Owner: owner, Name: name}
}

// ScanRepo probes one repository and assembles its project record.
// Every probe failure is logged and treated as that unit contributing
// no data.
func (a *Aggregator) ScanRepo(ctx context.Context, repo source.Repo, info *source.RepoInfo) board.Project {
	projID := checklist.Slugify(repo.Name)

	docs, err := a.src.ListDocs(ctx, repo)
	if err != nil {
		a.logger.Warn("listing task docs failed", "repo", repo.String(), "err", err)
		docs = nil
	}

	var items []checklist.Item
	for _, doc := range docs {
		content, err := a.src.FetchDoc(ctx, repo, doc)
		if err != nil {
			a.logger.Warn("fetching doc failed", "repo", repo.String(), "doc", doc, "err", err)
			continue
		}
		parsed := checklist.Parse(content, doc)
		parsed = append(parsed, checklist.ParseTable(content, doc, prdTableNameCol)...)
		a.logger.Debug("parsed doc", "repo", repo.String(), "doc", doc, "items", len(parsed))
		items = append(items, parsed...)
	}

	milestones := toMilestones(projID, checklist.MergeSections(items))

	act, err := a.src.Activity(ctx, repo)
	if err != nil {
		a.logger.Warn("probing activity failed", "repo", repo.String(), "err", err)
		act = &source.Activity{}
	}

	if len(milestones) == 0 {
		milestones = a.fallbackMilestone(ctx, repo, projID)
	}

	p := board.Project{
		ID:              projID,
		Name:            repo.Name,
		Owner:           repo.Owner,
		Status:          a.deriveStatus(repo.Name, act.DaysSinceUpdate),
		DaysSinceUpdate: act.DaysSinceUpdate,
		OpenIssues:      act.OpenIssues,
		OpenPRs:         act.OpenPRs,
		SourceCount:     len(docs),
		Milestones:      milestones,
	}
	if act.LastCommit != nil {
		p.LastCommit = &board.Commit{
			Hash:    act.LastCommit.Hash,
			Message: act.LastCommit.Message,
			Date:    act.LastCommit.Date.Format(time.RFC3339),
		}
	}

	if info != nil {
		p.Description = info.Description
		p.Repo = info.URL
	} else if repo.Owner != "" {
		p.Repo = "https://github.com/" + repo.Owner + "/" + repo.Name
	}

	if ov, ok := a.cfg.Override(repo.Name); ok {
		applyOverride(&p, ov)
	}
	if p.Color == "" {
		p.Color = colorFor(repo.Name)
	}

	return p
}

// toMilestones converts merged sections into board milestones, deriving
// ids from the project id, the section slug, and the task content hash.
func toMilestones(projID string, sections []checklist.Section) []board.Milestone {
	milestones := make([]board.Milestone, 0, len(sections))
	for _, sec := range sections {
		m := board.Milestone{
			ID:      projID + "-" + sec.Slug,
			Name:    sec.Name,
			Done:    sec.Done,
			Current: sec.Current,
			Source:  sec.Source,
			Tasks:   make([]board.Task, 0, len(sec.Tasks)),
		}
		for _, task := range sec.Tasks {
			m.Tasks = append(m.Tasks, board.Task{
				ID:      projID + "-" + sec.Slug + "-" + task.Hash,
				Text:    task.Text,
				Done:    task.Done,
				Current: task.Current,
			})
		}
		milestones = append(milestones, m)
	}
	return milestones
}

// fallbackMilestone synthesizes a Recent Activity section from the
// latest commit messages so every tracked repository surfaces at least
// one section. Its tasks are all done and the section is current.
func (a *Aggregator) fallbackMilestone(ctx context.Context, repo source.Repo, projID string) []board.Milestone {
	commits, err := a.src.RecentCommits(ctx, repo, a.cfg.RecentCommits)
	if err != nil {
		a.logger.Warn("fetching recent commits failed", "repo", repo.String(), "err", err)
	}

	const slug = "recent-activity"
	m := board.Milestone{
		ID:      projID + "-" + slug,
		Name:    "Recent Activity",
		Done:    true,
		Current: true,
		Tasks:   make([]board.Task, 0, len(commits)),
	}
	for _, c := range commits {
		m.Tasks = append(m.Tasks, board.Task{
			ID:   projID + "-" + slug + "-" + checklist.TaskHash(slug, c.Hash+c.Message),
			Text: c.Message,
			Done: true,
		})
	}
	return []board.Milestone{m}
}

// deriveStatus applies the per-repo override unless the repository has
// been globally idle beyond the paused window, then falls back to
// staleness thresholds.
func (a *Aggregator) deriveStatus(name string, daysSince int) board.Status {
	if ov, ok := a.cfg.Override(name); ok && ov.Status != "" {
		s := board.Status(ov.Status)
		if s.Valid() && daysSince <= a.cfg.PausedAfterDays {
			return s
		}
	}

	switch {
	case daysSince > a.cfg.PausedAfterDays:
		return board.StatusPaused
	case daysSince > a.cfg.IdleAfterDays:
		return board.StatusIdle
	default:
		return board.StatusActive
	}
}

func applyOverride(p *board.Project, ov config.RepoOverride) {
	if ov.Emoji != "" {
		p.Emoji = ov.Emoji
	}
	if ov.Color != "" {
		p.Color = ov.Color
	}
	if ov.Description != "" {
		p.Description = ov.Description
	}
	if ov.Priority != 0 {
		p.Priority = ov.Priority
	}
}

// colorFor hashes a repository name into the palette.
func colorFor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(name)))
	return palette[h.Sum32()%uint32(len(palette))]
}

// sortProjects orders projects by status rank, then detected source
// count descending, then recency. The sort is stable so ties keep
// input order.
func sortProjects(projects []board.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		ri, rj := projects[i].Status.Rank(), projects[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		if projects[i].SourceCount != projects[j].SourceCount {
			return projects[i].SourceCount > projects[j].SourceCount
		}
		return projects[i].DaysSinceUpdate < projects[j].DaysSinceUpdate
	})
}
