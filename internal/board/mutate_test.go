package board

import (
	"errors"
	"testing"
	"time"
)

func testBoard() *Board {
	return &Board{
		Meta: Meta{Version: SchemaVersion},
		Projects: []Project{
			{
				ID:     "pulse",
				Name:   "pulse",
				Status: StatusActive,
				Milestones: []Milestone{
					{
						ID:   "pulse-phase-1",
						Name: "Phase 1",
						Tasks: []Task{
							{ID: "t1", Text: "A", Done: true},
							{
								ID:      "t2",
								Text:    "B",
								Current: true,
								Subtasks: []Task{
									{ID: "s1", Text: "B.1", Current: true},
									{ID: "s2", Text: "B.2"},
									{ID: "s3", Text: "B.3"},
								},
							},
						},
						Current: true,
					},
					{
						ID:    "pulse-phase-2",
						Name:  "Phase 2",
						Tasks: []Task{{ID: "t3", Text: "C"}},
					},
				},
			},
		},
	}
}

func currentSubtasks(task *Task) []string {
	var ids []string
	for _, st := range task.Subtasks {
		if st.Current {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

func TestMarkDoneSubtaskAdvancesSibling(t *testing.T) {
	b := testBoard()
	now := time.Now().UTC()

	if err := b.MarkDone("s1", now); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	task := &b.Projects[0].Milestones[0].Tasks[1]
	if !task.Subtasks[0].Done {
		t.Error("s1 should be done")
	}
	if task.Subtasks[0].CompletedAt == nil {
		t.Error("s1 should have a completion timestamp")
	}

	got := currentSubtasks(task)
	if len(got) != 1 || got[0] != "s2" {
		t.Errorf("current subtasks: got %v, want [s2]", got)
	}
}

func TestMarkDoneLastSubtaskLeavesNoneCurrent(t *testing.T) {
	b := testBoard()

	if err := b.MarkDone("s3", time.Now().UTC()); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	task := &b.Projects[0].Milestones[0].Tasks[1]
	if got := currentSubtasks(task); len(got) != 0 {
		t.Errorf("current subtasks: got %v, want none", got)
	}
}

func TestMarkDoneTaskDoesNotAdvance(t *testing.T) {
	b := testBoard()

	if err := b.MarkDone("t2", time.Now().UTC()); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	m := &b.Projects[0].Milestones[0]
	if !m.Tasks[1].Done || m.Tasks[1].Current {
		t.Errorf("t2: got done=%v current=%v", m.Tasks[1].Done, m.Tasks[1].Current)
	}
	// No auto-advance across tasks or milestones.
	if b.Projects[0].Milestones[1].Tasks[0].Current {
		t.Error("t3 should not become current")
	}
}

func TestMarkDoneMilestone(t *testing.T) {
	b := testBoard()

	if err := b.MarkDone("pulse-phase-1", time.Now().UTC()); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	m := &b.Projects[0].Milestones[0]
	if !m.Done || m.Current || m.CompletedAt == nil {
		t.Errorf("milestone: got done=%v current=%v completedAt=%v", m.Done, m.Current, m.CompletedAt)
	}
}

func TestMarkDoneNotFound(t *testing.T) {
	b := testBoard()

	err := b.MarkDone("nope", time.Now().UTC())
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.ID != "nope" {
		t.Errorf("NotFoundError.ID: got %q", nf.ID)
	}
}

func countCurrent(b *Board) (milestones, tasks, subtasks int) {
	for pi := range b.Projects {
		for mi := range b.Projects[pi].Milestones {
			m := &b.Projects[pi].Milestones[mi]
			if m.Current {
				milestones++
			}
			for ti := range m.Tasks {
				if m.Tasks[ti].Current {
					tasks++
				}
				for si := range m.Tasks[ti].Subtasks {
					if m.Tasks[ti].Subtasks[si].Current {
						subtasks++
					}
				}
			}
		}
	}
	return milestones, tasks, subtasks
}

func TestSetCurrentSubtaskChain(t *testing.T) {
	b := testBoard()

	if err := b.SetCurrent("s2"); err != nil {
		t.Fatalf("SetCurrent failed: %v", err)
	}

	ms, ts, ss := countCurrent(b)
	if ms != 1 || ts != 1 || ss != 1 {
		t.Errorf("current counts: got m=%d t=%d s=%d, want 1 each", ms, ts, ss)
	}
	if !b.Projects[0].Milestones[0].Tasks[1].Subtasks[1].Current {
		t.Error("s2 should be current")
	}
	if !b.Projects[0].Milestones[0].Tasks[1].Current {
		t.Error("owning task t2 should be current")
	}
	if !b.Projects[0].Milestones[0].Current {
		t.Error("owning milestone should be current")
	}
}

func TestSetCurrentTaskClearsOtherProjectsFlags(t *testing.T) {
	b := testBoard()
	b.Projects = append(b.Projects, Project{
		ID: "other", Name: "other", Status: StatusIdle,
		Milestones: []Milestone{{
			ID: "other-m", Name: "M", Current: true,
			Tasks: []Task{{ID: "ot", Text: "x", Current: true}},
		}},
	})

	if err := b.SetCurrent("t3"); err != nil {
		t.Fatalf("SetCurrent failed: %v", err)
	}

	ms, ts, ss := countCurrent(b)
	if ms != 1 || ts != 1 || ss != 0 {
		t.Errorf("current counts: got m=%d t=%d s=%d, want 1/1/0", ms, ts, ss)
	}
	if !b.Projects[0].Milestones[1].Tasks[0].Current {
		t.Error("t3 should be current")
	}
}

func TestSetCurrentMilestoneOnly(t *testing.T) {
	b := testBoard()

	if err := b.SetCurrent("pulse-phase-2"); err != nil {
		t.Fatalf("SetCurrent failed: %v", err)
	}

	ms, ts, ss := countCurrent(b)
	if ms != 1 || ts != 0 || ss != 0 {
		t.Errorf("current counts: got m=%d t=%d s=%d, want 1/0/0", ms, ts, ss)
	}
}

func TestSetCurrentNotFound(t *testing.T) {
	b := testBoard()
	var nf *NotFoundError
	if err := b.SetCurrent("missing"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	// A failed lookup must not clear existing flags.
	if !b.Projects[0].Milestones[0].Current {
		t.Error("existing current flag was cleared by a failed SetCurrent")
	}
}

func TestNormalizeSingleFocusPerLevel(t *testing.T) {
	b := testBoard()
	// Scatter inconsistent flags the way an unguarded aggregation could.
	b.Projects[0].Milestones[1].Current = true
	b.Projects[0].Milestones[0].Tasks[0].Current = true
	b.Projects[0].Milestones[0].Tasks[1].Subtasks[2].Current = true

	b.Normalize()

	ms, ts, ss := countCurrent(b)
	if ms != 1 || ts != 1 || ss != 1 {
		t.Errorf("current counts: got m=%d t=%d s=%d, want 1 each", ms, ts, ss)
	}
	if !b.Projects[0].Milestones[0].Current {
		t.Error("first not-done milestone should be current")
	}
	if !b.Projects[0].Milestones[0].Tasks[1].Current {
		t.Error("frontier task t2 should be current")
	}
	if !b.Projects[0].Milestones[0].Tasks[1].Subtasks[0].Current {
		t.Error("frontier subtask s1 should be current")
	}
}

func TestNormalizeAllDone(t *testing.T) {
	b := testBoard()
	for mi := range b.Projects[0].Milestones {
		b.Projects[0].Milestones[mi].Done = true
	}

	b.Normalize()

	ms, ts, ss := countCurrent(b)
	if ms != 0 || ts != 0 || ss != 0 {
		t.Errorf("current counts: got m=%d t=%d s=%d, want none", ms, ts, ss)
	}
}

func TestUpsertProject(t *testing.T) {
	b := testBoard()
	b.UpsertProject(Project{ID: "PULSE", Name: "pulse", Status: StatusLive})
	if len(b.Projects) != 1 {
		t.Fatalf("projects: got %d, want 1 (case-insensitive replace)", len(b.Projects))
	}
	if b.Projects[0].Status != StatusLive {
		t.Errorf("status: got %s, want live", b.Projects[0].Status)
	}

	b.UpsertProject(Project{ID: "new", Name: "new", Status: StatusActive})
	if len(b.Projects) != 2 {
		t.Fatalf("projects: got %d, want 2 after append", len(b.Projects))
	}
}
