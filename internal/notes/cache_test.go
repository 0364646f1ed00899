package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mrshanahan/notes-console/pkg/notes"
)

type stubLister struct {
	list []*notes.Note
	err  error
}

func (s stubLister) ListNotes(context.Context) ([]*notes.Note, error) {
	return s.list, s.err
}

func note(id string, created time.Time, enabled, merged bool) *notes.Note {
	return &notes.Note{
		ID:           id,
		Title:        "Title " + id,
		Content:      "content of " + id,
		EnableRemind: enabled,
		MergeRemind:  merged,
		CreatedAt:    notes.Timestamp{Time: created},
	}
}

func ids(list []*notes.Note) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sampleNotes() []*notes.Note {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []*notes.Note{
		note("old", base.Add(-48*time.Hour), true, false),
		note("new", base, false, true),
		note("mid", base.Add(-24*time.Hour), true, true),
	}
}

func TestRefresh_SortsNewestFirst(t *testing.T) {
	cache := NewCache()
	if err := cache.Refresh(context.Background(), stubLister{list: sampleNotes()}); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	view := cache.View()
	if got := ids(view.Notes); !equalIDs(got, []string{"new", "mid", "old"}) {
		t.Fatalf("expected newest first, got %v", got)
	}
	for i := 1; i < len(view.Notes); i++ {
		if view.Notes[i-1].CreatedAt.Before(view.Notes[i].CreatedAt.Time) {
			t.Fatalf("notes out of order at %d", i)
		}
	}
}

func TestRefresh_FailureEmptiesCache(t *testing.T) {
	cache := NewCache()
	cache.Replace(sampleNotes())

	wantErr := errors.New("boom")
	if err := cache.Refresh(context.Background(), stubLister{err: wantErr}); !errors.Is(err, wantErr) {
		t.Fatalf("expected refresh error, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after failed refresh, got %d", cache.Len())
	}
}

func TestRefresh_ReplacesWholesale(t *testing.T) {
	cache := NewCache()
	cache.Replace(sampleNotes())

	fresh := []*notes.Note{note("only", time.Now(), false, false)}
	if err := cache.Refresh(context.Background(), stubLister{list: fresh}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := ids(cache.View().Notes); !equalIDs(got, []string{"only"}) {
		t.Fatalf("expected cache to be replaced, got %v", got)
	}
}

func TestFilters(t *testing.T) {
	cache := NewCache()
	cache.Replace(sampleNotes())

	cases := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"new", "mid", "old"}},
		{FilterEnabled, []string{"mid", "old"}},
		{FilterMerged, []string{"new", "mid"}},
	}
	for _, tc := range cases {
		cache.SetFilter(tc.filter)
		once := ids(cache.View().Notes)
		cache.SetFilter(tc.filter)
		twice := ids(cache.View().Notes)
		if !equalIDs(once, tc.want) {
			t.Fatalf("filter %s: expected %v, got %v", tc.filter, tc.want, once)
		}
		if !equalIDs(once, twice) {
			t.Fatalf("filter %s not idempotent: %v vs %v", tc.filter, once, twice)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	list := sampleNotes()
	for _, f := range []Filter{FilterAll, FilterEnabled, FilterMerged} {
		once := Apply(list, f)
		twice := Apply(once, f)
		if !equalIDs(ids(once), ids(twice)) {
			t.Fatalf("filter %s: %v vs %v", f, ids(once), ids(twice))
		}
	}
}

func TestSearch_OverridesFilterWithoutChangingIt(t *testing.T) {
	cache := NewCache()
	cache.Replace(sampleNotes())
	cache.SetFilter(FilterEnabled)

	cache.SetKeyword("TITLE NEW")
	view := cache.View()
	if got := ids(view.Notes); !equalIDs(got, []string{"new"}) {
		t.Fatalf("expected search to ignore filter, got %v", got)
	}
	if view.Filter != FilterEnabled || !view.Searching() {
		t.Fatalf("expected stored filter to remain, got %+v", view)
	}

	cache.SetKeyword("   ")
	if got := ids(cache.View().Notes); !equalIDs(got, []string{"mid", "old"}) {
		t.Fatalf("expected empty keyword to fall back to filter, got %v", got)
	}
}

func TestSetFilter_ClearsKeyword(t *testing.T) {
	cache := NewCache()
	cache.Replace(sampleNotes())
	cache.SetKeyword("old")
	cache.SetFilter(FilterAll)

	view := cache.View()
	if view.Searching() || len(view.Notes) != 3 {
		t.Fatalf("expected keyword to be cleared, got %+v", view)
	}
}

func TestSearch_ExactTitleAnyCase(t *testing.T) {
	list := sampleNotes()
	for _, n := range list {
		for _, kw := range []string{n.Title, "  " + n.Title + " ", strings.ToUpper(n.Title)} {
			found := false
			for _, m := range Search(list, kw) {
				if m.ID == n.ID {
					found = true
				}
			}
			if !found {
				t.Fatalf("search %q did not include %s", kw, n.ID)
			}
		}
	}
}

func TestSearch_MatchesContent(t *testing.T) {
	got := ids(Search(sampleNotes(), "CONTENT OF MID"))
	if !equalIDs(got, []string{"mid"}) {
		t.Fatalf("expected content match, got %v", got)
	}
}

func TestParseFilter(t *testing.T) {
	for _, raw := range []string{"all", "Enabled", " merged "} {
		if _, err := ParseFilter(raw); err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
	}
	if _, err := ParseFilter("archived"); err == nil {
		t.Fatalf("expected unknown filter to fail")
	}
}

