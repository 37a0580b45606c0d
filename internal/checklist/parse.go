// Package checklist extracts task records from markdown checklists.
package checklist

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Item is a single checklist line scanned out of a markdown document,
// tagged with the heading that was in effect when the line was read.
type Item struct {
	Section string
	Text    string
	Done    bool
	Source  string
}

var (
	bulletRe  = regexp.MustCompile(`^\s*[-*]\s+\[([ xX])\]\s+(.+)$`)
	headingRe = regexp.MustCompile(`^(#{1,3})\s+(.+?)\s*$`)
	markerRe  = regexp.MustCompile(`\[([ xX])\]`)
)

// Parse scans content line by line and returns every well-formed bullet
// checklist item in input order. Headings of level 1-3 set the section
// for subsequent items; items appearing before any heading are tagged
// with a section derived from the source filename. Malformed checklist
// lines are ignored.
func Parse(content, source string) []Item {
	var items []Item
	section := DefaultSection(source)

	for _, line := range strings.Split(content, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			section = m[2]
			continue
		}
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		items = append(items, Item{
			Section: section,
			Text:    strings.TrimSpace(m[2]),
			Done:    strings.EqualFold(m[1], "x"),
			Source:  source,
		})
	}

	return items
}

// ParseTable scans pipe-delimited table rows whose status cell contains a
// checklist marker. The task name is taken from the cell at nameCol
// (zero-based, counted after the leading pipe). Divider rows and rows
// whose name cell is the literal "Task" header are skipped. Heading
// tracking works as in Parse.
func ParseTable(content, source string, nameCol int) []Item {
	var items []Item
	section := DefaultSection(source)

	for _, line := range strings.Split(content, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			section = m[2]
			continue
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			continue
		}
		cells := splitRow(trimmed)
		if nameCol < 0 || nameCol >= len(cells) {
			continue
		}
		name := cells[nameCol]
		if name == "" || name == "Task" || isDivider(name) {
			continue
		}
		marker := ""
		for _, cell := range cells {
			if m := markerRe.FindStringSubmatch(cell); m != nil {
				marker = m[1]
				break
			}
		}
		if marker == "" {
			continue
		}
		items = append(items, Item{
			Section: section,
			Text:    name,
			Done:    strings.EqualFold(marker, "x"),
			Source:  source,
		})
	}

	return items
}

// DefaultSection derives a section label from a source file path:
// the basename without extension, with separators replaced by spaces.
func DefaultSection(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Tasks"
	}
	return base
}

// splitRow splits a table row into trimmed cells, dropping the empty
// fragments produced by the leading and trailing pipes.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isDivider(cell string) bool {
	if cell == "" {
		return false
	}
	for _, r := range cell {
		if r != '-' && r != ':' {
			return false
		}
	}
	return true
}
