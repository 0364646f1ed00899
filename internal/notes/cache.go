package notes

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mrshanahan/notes-console/pkg/notes"
)

type Lister interface {
	ListNotes(ctx context.Context) ([]*notes.Note, error)
}

// View is what the list area shows after a refresh, filter change or search.
type View struct {
	Notes   []*notes.Note
	Filter  Filter
	Keyword string
	// Total is the size of the cache the view was derived from.
	Total int
}

// Searching reports whether the keyword overrides the filter.
func (v View) Searching() bool {
	return v.Keyword != ""
}

// Cache is the in-memory copy of the backend's note list. It is replaced
// wholesale on every refresh and never patched.
type Cache struct {
	mu      sync.RWMutex
	notes   []*notes.Note
	filter  Filter
	keyword string
}

func NewCache() *Cache {
	return &Cache{filter: FilterAll}
}

// Refresh fetches the full list and replaces the cache. On failure the cache
// is emptied and the error returned.
func (c *Cache) Refresh(ctx context.Context, lister Lister) error {
	list, err := lister.ListNotes(ctx)
	if err != nil {
		c.Replace(nil)
		return err
	}
	c.Replace(list)
	return nil
}

// Replace sorts list newest first and makes it the cache content.
func (c *Cache) Replace(list []*notes.Note) {
	sorted := make([]*notes.Note, 0, len(list))
	for _, n := range list {
		if n != nil {
			sorted = append(sorted, n)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt.Time)
	})

	c.mu.Lock()
	c.notes = sorted
	c.mu.Unlock()
}

// SetFilter selects f and clears any search keyword.
func (c *Cache) SetFilter(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.keyword = ""
}

func (c *Cache) SetKeyword(keyword string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keyword = strings.TrimSpace(keyword)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.notes)
}

// View derives the visible subset: the keyword search when a keyword is set,
// otherwise the active filter.
func (c *Cache) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	view := View{Filter: c.filter, Keyword: c.keyword, Total: len(c.notes)}
	if c.keyword != "" {
		view.Notes = Search(c.notes, c.keyword)
	} else {
		view.Notes = Apply(c.notes, c.filter)
	}
	return view
}
