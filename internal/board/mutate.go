package board

import (
	"fmt"
	"strings"
	"time"
)

// NotFoundError reports a task or milestone id absent from the document.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.ID)
}

// match is a resolved node within the document tree. Exactly one of
// milestone, task, or subtask is the matched node; the fields above it
// identify its ancestors.
type match struct {
	milestone *Milestone
	task      *Task
	subtask   *Task
	subIndex  int
}

// find locates a node by id, depth-first: project, then milestone, then
// task, then subtask.
func (b *Board) find(id string) *match {
	for pi := range b.Projects {
		for mi := range b.Projects[pi].Milestones {
			m := &b.Projects[pi].Milestones[mi]
			if m.ID == id {
				return &match{milestone: m}
			}
			for ti := range m.Tasks {
				task := &m.Tasks[ti]
				if task.ID == id {
					return &match{milestone: m, task: task}
				}
				for si := range task.Subtasks {
					if task.Subtasks[si].ID == id {
						return &match{milestone: m, task: task, subtask: &task.Subtasks[si], subIndex: si}
					}
				}
			}
		}
	}
	return nil
}

// MarkDone marks the node with the given id as done, stamps its
// completion time, and clears its current flag. Completing a subtask
// advances the current pointer to the immediately following sibling
// subtask; there is no auto-advance across tasks or milestones.
func (b *Board) MarkDone(id string, now time.Time) error {
	m := b.find(id)
	if m == nil {
		return &NotFoundError{ID: id}
	}

	switch {
	case m.subtask != nil:
		m.subtask.Done = true
		m.subtask.Current = false
		m.subtask.CompletedAt = &now
		for si := range m.task.Subtasks {
			m.task.Subtasks[si].Current = false
		}
		if next := m.subIndex + 1; next < len(m.task.Subtasks) {
			m.task.Subtasks[next].Current = true
		}
	case m.task != nil:
		m.task.Done = true
		m.task.Current = false
		m.task.CompletedAt = &now
	default:
		m.milestone.Done = true
		m.milestone.Current = false
		m.milestone.CompletedAt = &now
	}

	return nil
}

// SetCurrent clears every current flag in the document and marks the
// node with the given id as current. Matching a task also marks its
// owning milestone current; matching a subtask marks its owning task
// and milestone current.
func (b *Board) SetCurrent(id string) error {
	m := b.find(id)
	if m == nil {
		return &NotFoundError{ID: id}
	}

	b.clearCurrent()

	m.milestone.Current = true
	if m.task != nil {
		m.task.Current = true
	}
	if m.subtask != nil {
		m.subtask.Current = true
	}

	return nil
}

// clearCurrent resets every current flag in the document.
func (b *Board) clearCurrent() {
	for pi := range b.Projects {
		clearProjectCurrent(&b.Projects[pi])
	}
}

func clearProjectCurrent(p *Project) {
	for mi := range p.Milestones {
		m := &p.Milestones[mi]
		m.Current = false
		for ti := range m.Tasks {
			m.Tasks[ti].Current = false
			for si := range m.Tasks[ti].Subtasks {
				m.Tasks[ti].Subtasks[si].Current = false
			}
		}
	}
}

// Normalize re-derives the focus pointer for every project from done
// flags: the first not-done milestone is current, its frontier task is
// current, and that task's frontier subtask is current when it has
// subtasks. All other current flags are cleared, so the document never
// holds more than one focus per level within a project.
func (b *Board) Normalize() {
	for pi := range b.Projects {
		p := &b.Projects[pi]
		clearProjectCurrent(p)
		for mi := range p.Milestones {
			m := &p.Milestones[mi]
			if m.Done {
				continue
			}
			m.Current = true
			markFrontierTask(m)
			break
		}
	}
}

func markFrontierTask(m *Milestone) {
	for ti := range m.Tasks {
		task := &m.Tasks[ti]
		if task.Done {
			continue
		}
		task.Current = true
		for si := range task.Subtasks {
			if !task.Subtasks[si].Done {
				task.Subtasks[si].Current = true
				break
			}
		}
		return
	}
}

// IDs returns every milestone, task, and subtask id in the document,
// used for suggesting near matches when a lookup fails.
func (b *Board) IDs() []string {
	var ids []string
	for pi := range b.Projects {
		for mi := range b.Projects[pi].Milestones {
			m := &b.Projects[pi].Milestones[mi]
			ids = append(ids, m.ID)
			for ti := range m.Tasks {
				ids = append(ids, m.Tasks[ti].ID)
				for si := range m.Tasks[ti].Subtasks {
					ids = append(ids, m.Tasks[ti].Subtasks[si].ID)
				}
			}
		}
	}
	return ids
}

// UpsertProject replaces the project with the same id, or appends the
// project when it is new. Matching is case-insensitive on id.
func (b *Board) UpsertProject(p Project) {
	for i := range b.Projects {
		if strings.EqualFold(b.Projects[i].ID, p.ID) {
			b.Projects[i] = p
			return
		}
	}
	b.Projects = append(b.Projects, p)
}
