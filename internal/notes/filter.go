package notes

import (
	"fmt"
	"strings"

	"github.com/mrshanahan/notes-console/pkg/notes"
)

type Filter string

const (
	FilterAll     Filter = "all"
	FilterEnabled Filter = "enabled"
	FilterMerged  Filter = "merged"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterEnabled, FilterMerged:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter: %q", s)
	}
}

// Apply returns the notes matching f, preserving order.
func Apply(list []*notes.Note, f Filter) []*notes.Note {
	switch f {
	case FilterEnabled:
		return selectNotes(list, func(n *notes.Note) bool { return n.EnableRemind })
	case FilterMerged:
		return selectNotes(list, func(n *notes.Note) bool { return n.MergeRemind })
	default:
		return selectNotes(list, func(*notes.Note) bool { return true })
	}
}

// Search returns the notes whose title or content contains keyword,
// ignoring case. The keyword is trimmed; an empty keyword matches nothing,
// callers fall back to the filter view instead.
func Search(list []*notes.Note, keyword string) []*notes.Note {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return []*notes.Note{}
	}
	return selectNotes(list, func(n *notes.Note) bool {
		return strings.Contains(strings.ToLower(n.Title), keyword) ||
			strings.Contains(strings.ToLower(n.Content), keyword)
	})
}

func selectNotes(list []*notes.Note, keep func(*notes.Note) bool) []*notes.Note {
	out := make([]*notes.Note, 0, len(list))
	for _, n := range list {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
