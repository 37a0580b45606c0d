package checklist

import (
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Phase 1", "phase-1"},
		{"Phase 1!!!", "phase-1"},
		{"  PHASE   1  ", "phase-1"},
		{"v2.0 — Launch", "v2-0-launch"},
		{"", "section"},
		{"???", "section"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.label); got != tt.want {
			t.Errorf("Slugify(%q): got %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := "this is a very long section heading that keeps going and going and going"
	slug := Slugify(long)
	if len(slug) > 48 {
		t.Errorf("slug too long: %d bytes (%q)", len(slug), slug)
	}
	if slug[len(slug)-1] == '-' {
		t.Errorf("slug has trailing hyphen: %q", slug)
	}
}

func TestMergeSectionsCollision(t *testing.T) {
	// Two documents whose headings slugify to the same key.
	items := append(
		Parse("## Phase 1\n- [x] A\n- [ ] B\n", "ROADMAP.md"),
		Parse("## phase 1!\n- [ ] B\n- [ ] C\n", "tasks.md")...,
	)

	sections := MergeSections(items)
	if len(sections) != 1 {
		t.Fatalf("sections: got %d, want 1", len(sections))
	}

	sec := sections[0]
	if sec.Slug != "phase-1" {
		t.Errorf("Slug: got %q, want phase-1", sec.Slug)
	}
	if sec.Name != "Phase 1" {
		t.Errorf("Name: got %q, want first-seen label Phase 1", sec.Name)
	}
	if sec.Source != "ROADMAP.md,tasks.md" {
		t.Errorf("Source: got %q", sec.Source)
	}

	want := []string{"A", "B", "C"}
	if len(sec.Tasks) != len(want) {
		t.Fatalf("tasks: got %d, want %d", len(sec.Tasks), len(want))
	}
	for i, text := range want {
		if sec.Tasks[i].Text != text {
			t.Errorf("tasks[%d]: got %q, want %q", i, sec.Tasks[i].Text, text)
		}
	}
}

func TestMergeSectionsDedupIsCaseSensitive(t *testing.T) {
	items := []Item{
		{Section: "Phase 1", Text: "ship it", Source: "a.md"},
		{Section: "Phase 1", Text: "Ship it", Source: "b.md"},
	}
	sections := MergeSections(items)
	if len(sections) != 1 || len(sections[0].Tasks) != 2 {
		t.Fatalf("expected 1 section with 2 tasks, got %+v", sections)
	}
}

func TestMergeSectionsCurrentPointer(t *testing.T) {
	items := append(
		Parse("## Phase 1\n- [x] A\n- [ ] B\n", "ROADMAP.md"),
		Parse("## Phase 2\n- [ ] C\n", "ROADMAP.md")...,
	)

	sections := MergeSections(items)
	if len(sections) != 2 {
		t.Fatalf("sections: got %d, want 2", len(sections))
	}

	p1, p2 := sections[0], sections[1]
	if p1.Done {
		t.Error("Phase 1 should not be done")
	}
	if !p1.Current {
		t.Error("Phase 1 should be current (first not-done section)")
	}
	if p2.Current {
		t.Error("Phase 2 should not be current")
	}
	if !p1.Tasks[1].Current {
		t.Error("task B should be the frontier task")
	}
	if p1.Tasks[0].Current || p2.Tasks[0].Current {
		t.Error("only the frontier task of the current section may be current")
	}
}

func TestMergeSectionsDoneSectionSkipped(t *testing.T) {
	items := append(
		Parse("## Phase 1\n- [x] A\n", "r.md"),
		Parse("## Phase 2\n- [ ] B\n", "r.md")...,
	)

	sections := MergeSections(items)
	if !sections[0].Done {
		t.Error("Phase 1 should be done")
	}
	if sections[0].Current {
		t.Error("done section must not be current")
	}
	if !sections[1].Current {
		t.Error("Phase 2 should be current")
	}
}

func TestMergeSectionsAllDone(t *testing.T) {
	sections := MergeSections(Parse("## Phase 1\n- [x] A\n", "r.md"))
	for _, sec := range sections {
		if sec.Current {
			t.Errorf("section %q current despite everything done", sec.Name)
		}
	}
}

func TestTaskHashStableAcrossReordering(t *testing.T) {
	a := MergeSections([]Item{
		{Section: "Phase 1", Text: "A", Source: "r.md"},
		{Section: "Phase 1", Text: "B", Source: "r.md"},
	})
	b := MergeSections([]Item{
		{Section: "Phase 1", Text: "B", Source: "r.md"},
		{Section: "Phase 1", Text: "A", Source: "r.md"},
	})

	hashes := func(secs []Section) map[string]string {
		m := make(map[string]string)
		for _, s := range secs {
			for _, task := range s.Tasks {
				m[task.Text] = task.Hash
			}
		}
		return m
	}

	ha, hb := hashes(a), hashes(b)
	for text, h := range ha {
		if hb[text] != h {
			t.Errorf("hash for %q changed across reordering: %q vs %q", text, h, hb[text])
		}
	}
	if ha["A"] == ha["B"] {
		t.Error("distinct tasks share a hash")
	}
}
