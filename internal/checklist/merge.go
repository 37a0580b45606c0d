package checklist

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// maxSlugLen bounds section slugs so grouping keys stay short enough to
// use in ids.
const maxSlugLen = 48

// Task is a deduplicated task inside a merged section.
type Task struct {
	Hash    string
	Text    string
	Done    bool
	Current bool
}

// Section is a named, ordered group of tasks merged from one or more
// source documents that share a slug.
type Section struct {
	Slug    string
	Name    string
	Done    bool
	Current bool
	Source  string
	Tasks   []Task
}

// Slugify normalizes a section label into a grouping key: lowercase,
// runs of non-alphanumeric characters collapsed to a single hyphen,
// truncated to a bounded length. Labels differing only in case or
// punctuation collide intentionally.
func Slugify(label string) string {
	var b strings.Builder
	lastHyphen := true // trim leading hyphens
	for _, r := range strings.ToLower(label) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
			continue
		}
		b.WriteRune(r)
		lastHyphen = false
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "section"
	}
	return slug
}

// TaskHash derives a stable task identifier from the section slug and the
// task text, so ids survive reordering of the source documents.
func TaskHash(slug, text string) string {
	sum := sha1.Sum([]byte(slug + "\x00" + text))
	return hex.EncodeToString(sum[:])[:8]
}

// MergeSections groups items by section slug, preserving first-seen
// section and task order. Items from later documents whose exact text
// already appears in the section are dropped. Section done is the AND of
// its tasks' done flags. At most one section carries the current flag
// (the first not-done one), and only that section's frontier task (the
// first not-done task whose predecessors are all done) is marked current,
// so a merge never produces more than one focus per level.
func MergeSections(items []Item) []Section {
	var order []string
	bySlug := make(map[string]*Section)

	for _, it := range items {
		slug := Slugify(it.Section)
		sec, ok := bySlug[slug]
		if !ok {
			sec = &Section{Slug: slug, Name: it.Section, Source: it.Source}
			bySlug[slug] = sec
			order = append(order, slug)
		} else if !sourceListed(sec.Source, it.Source) {
			sec.Source += "," + it.Source
		}
		if taskListed(sec.Tasks, it.Text) {
			continue
		}
		sec.Tasks = append(sec.Tasks, Task{
			Hash: TaskHash(slug, it.Text),
			Text: it.Text,
			Done: it.Done,
		})
	}

	sections := make([]Section, 0, len(order))
	for _, slug := range order {
		sec := bySlug[slug]
		sec.Done = allDone(sec.Tasks)
		sections = append(sections, *sec)
	}

	markCurrent(sections)
	return sections
}

// markCurrent sets the single current section and its frontier task.
func markCurrent(sections []Section) {
	for i := range sections {
		if sections[i].Done {
			continue
		}
		sections[i].Current = true
		if f := frontier(sections[i].Tasks); f >= 0 {
			sections[i].Tasks[f].Current = true
		}
		return
	}
}

// frontier returns the index of the first not-done task whose
// predecessors are all done, or -1.
func frontier(tasks []Task) int {
	for i, t := range tasks {
		if !t.Done {
			return i
		}
	}
	return -1
}

func allDone(tasks []Task) bool {
	for _, t := range tasks {
		if !t.Done {
			return false
		}
	}
	return true
}

func taskListed(tasks []Task, text string) bool {
	for _, t := range tasks {
		if t.Text == text {
			return true
		}
	}
	return false
}

func sourceListed(joined, source string) bool {
	for _, s := range strings.Split(joined, ",") {
		if s == source {
			return true
		}
	}
	return false
}
