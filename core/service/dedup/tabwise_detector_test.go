package dedup

import (
	"testing"
	"time"

	"tabwise_server/core/domain"
)

func TestDetectExactDuplicates(t *testing.T) {
	d := NewDetector()

	tabs := []domain.TabSnapshot{
		{ID: 1, URL: "https://example.com/article?utm_source=mail", Title: "Article"},
		{ID: 2, URL: "https://www.example.com/article", Title: "Article"},
		{ID: 3, URL: "https://example.com/other", Title: "Other"},
	}

	groups := d.Detect(tabs)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.Kind != domain.DuplicateExact {
		t.Errorf("kind = %q, want exact", g.Kind)
	}
	if len(g.Close) != 1 {
		t.Errorf("close count = %d, want 1", len(g.Close))
	}
	if g.Keep.ID == g.Close[0].ID {
		t.Error("keeper also marked for closing")
	}
}

func TestDetectSimilarByTitle(t *testing.T) {
	d := NewDetector()

	tabs := []domain.TabSnapshot{
		{ID: 1, URL: "https://docs.example.com/page/v1", Title: "Getting Started Guide"},
		{ID: 2, URL: "https://docs.example.com/page/v2", Title: "Getting Started Guide"},
	}

	groups := d.Detect(tabs)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Kind != domain.DuplicateSimilar {
		t.Errorf("kind = %q, want similar", groups[0].Kind)
	}
}

func TestDetectSameTitleDifferentHost(t *testing.T) {
	d := NewDetector()

	// Identical titles on different hosts are not duplicates.
	tabs := []domain.TabSnapshot{
		{ID: 1, URL: "https://a.example.com/x", Title: "Dashboard"},
		{ID: 2, URL: "https://b.example.com/x", Title: "Dashboard"},
	}

	if groups := d.Detect(tabs); len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}

func TestKeeperPrefersActive(t *testing.T) {
	d := NewDetector()

	now := time.Now()
	tabs := []domain.TabSnapshot{
		{ID: 1, URL: "https://example.com/a", LastAccessed: now},
		{ID: 2, URL: "https://example.com/a", Active: true, LastAccessed: now.Add(-time.Hour)},
		{ID: 3, URL: "https://example.com/a", LastAccessed: now.Add(-time.Minute)},
	}

	groups := d.Detect(tabs)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Keep.ID != 2 {
		t.Errorf("keeper = %d, want active tab 2", groups[0].Keep.ID)
	}
	if len(groups[0].Close) != 2 {
		t.Errorf("close count = %d, want 2", len(groups[0].Close))
	}
}

func TestKeeperPrefersRecentWhenNoneActive(t *testing.T) {
	d := NewDetector()

	now := time.Now()
	tabs := []domain.TabSnapshot{
		{ID: 1, URL: "https://example.com/a", LastAccessed: now.Add(-2 * time.Hour)},
		{ID: 2, URL: "https://example.com/a", LastAccessed: now},
		{ID: 3, URL: "https://example.com/a", LastAccessed: now.Add(-time.Hour)},
	}

	groups := d.Detect(tabs)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Keep.ID != 2 {
		t.Errorf("keeper = %d, want most recent tab 2", groups[0].Keep.ID)
	}
}

func TestDetectGreedyFirstMatchWins(t *testing.T) {
	d := NewDetector()

	// All three collapse into one group anchored at the first tab.
	tabs := []domain.TabSnapshot{
		{ID: 1, URL: "https://example.com/p"},
		{ID: 2, URL: "https://example.com/p/"},
		{ID: 3, URL: "https://example.com/p#frag"},
	}

	groups := d.Detect(tabs)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if got := len(groups[0].Members()); got != 3 {
		t.Errorf("group size = %d, want 3", got)
	}
}

func TestCloseTabIDs(t *testing.T) {
	groups := []domain.DuplicateGroup{
		{Keep: domain.TabSnapshot{ID: 1}, Close: []domain.TabSnapshot{{ID: 2}, {ID: 3}}},
		{Keep: domain.TabSnapshot{ID: 4}, Close: []domain.TabSnapshot{{ID: 5}}},
	}

	ids := CloseTabIDs(groups)
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}
	want := map[int]bool{2: true, 3: true, 5: true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected close id %d", id)
		}
	}
}

func TestDetectEmptyAndSingle(t *testing.T) {
	d := NewDetector()

	if groups := d.Detect(nil); len(groups) != 0 {
		t.Errorf("nil input: got %d groups", len(groups))
	}
	single := []domain.TabSnapshot{{ID: 1, URL: "https://example.com"}}
	if groups := d.Detect(single); len(groups) != 0 {
		t.Errorf("single tab: got %d groups", len(groups))
	}
}
