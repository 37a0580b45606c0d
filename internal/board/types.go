// Package board holds the persisted dashboard document and its mutations.
package board

import (
	"time"
)

// SchemaVersion is the current board document version.
const SchemaVersion = 1

// Status represents a project's activity status.
type Status string

const (
	StatusActive Status = "active"
	StatusLive   Status = "live"
	StatusPaused Status = "paused"
	StatusIdle   Status = "idle"
)

// Rank orders statuses for display: active projects first, live next,
// then idle and paused. Unknown statuses sort last.
func (s Status) Rank() int {
	switch s {
	case StatusActive:
		return 0
	case StatusLive:
		return 1
	case StatusIdle:
		return 2
	case StatusPaused:
		return 3
	default:
		return 4
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusLive, StatusPaused, StatusIdle:
		return true
	}
	return false
}

// Task is a single checklist item. A task may carry subtasks one level
// deep; progress counting treats subtasks as the leaves when present.
type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Done        bool       `json:"done"`
	Current     bool       `json:"current"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Subtasks    []Task     `json:"subtasks,omitempty"`
}

// Milestone is a named, ordered group of tasks merged from one or more
// source documents.
type Milestone struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Done        bool       `json:"done"`
	Current     bool       `json:"current"`
	Source      string     `json:"source,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Tasks       []Task     `json:"tasks"`
}

// Commit records the most recent commit seen for a project.
type Commit struct {
	Hash    string `json:"hash,omitempty"`
	Message string `json:"message,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Project is one tracked repository.
type Project struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Emoji           string      `json:"emoji,omitempty"`
	Description     string      `json:"description,omitempty"`
	Color           string      `json:"color,omitempty"`
	Priority        int         `json:"priority,omitempty"`
	Status          Status      `json:"status"`
	Repo            string      `json:"repo,omitempty"`
	Owner           string      `json:"owner,omitempty"`
	LastCommit      *Commit     `json:"lastCommit,omitempty"`
	DaysSinceUpdate int         `json:"daysSinceUpdate"`
	OpenIssues      int         `json:"openIssues"`
	OpenPRs         int         `json:"openPRs"`
	SourceCount     int         `json:"sourceCount"`
	Milestones      []Milestone `json:"milestones"`
}

// Meta describes the scan that produced the document.
type Meta struct {
	LastUpdated  time.Time `json:"lastUpdated"`
	LastScanType string    `json:"lastScanType,omitempty"`
	Version      int       `json:"version"`
	ProjectCount int       `json:"projectCount"`
	Sources      []string  `json:"sources,omitempty"`
}

// Board is the full persisted document.
type Board struct {
	Meta     Meta      `json:"meta"`
	Projects []Project `json:"projects"`
}

// Progress returns done and total leaf task counts for the project.
// A task with subtasks contributes its subtasks instead of itself.
func (p *Project) Progress() (done, total int) {
	for mi := range p.Milestones {
		for ti := range p.Milestones[mi].Tasks {
			task := &p.Milestones[mi].Tasks[ti]
			if len(task.Subtasks) > 0 {
				for _, st := range task.Subtasks {
					total++
					if st.Done {
						done++
					}
				}
				continue
			}
			total++
			if task.Done {
				done++
			}
		}
	}
	return done, total
}

// Percent returns the completion percentage, defined as 0 when the
// project has no leaf tasks.
func (p *Project) Percent() int {
	done, total := p.Progress()
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

// CurrentTask returns the project's current task text, walking down to
// the current subtask when one is set. Empty when nothing is current.
func (p *Project) CurrentTask() string {
	for mi := range p.Milestones {
		for ti := range p.Milestones[mi].Tasks {
			task := &p.Milestones[mi].Tasks[ti]
			for _, st := range task.Subtasks {
				if st.Current {
					return st.Text
				}
			}
			if task.Current {
				return task.Text
			}
		}
	}
	return ""
}
