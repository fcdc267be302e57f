package detect

import (
	"testing"

	"tabwise_server/core/domain"
)

func tab(id int, url, title string) domain.TabSnapshot {
	return domain.TabSnapshot{ID: id, URL: url, Title: title}
}

func TestProjectDetectorGroupsByRepo(t *testing.T) {
	d := NewProjectDetector()

	tabs := []domain.TabSnapshot{
		tab(1, "https://github.com/golang/go/issues/123", "issue"),
		tab(2, "https://github.com/golang/go/pull/456", "pull"),
		tab(3, "https://github.com/other/repo", "other repo"),
		tab(4, "https://example.com/golang/go", "not a code host"),
	}

	groups := d.Detect(tabs, make(ClaimSet))
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.Label != "GH golang/go" {
		t.Errorf("label = %q, want %q", g.Label, "GH golang/go")
	}
	if len(g.TabIDs) != 2 {
		t.Errorf("members = %v, want [1 2]", g.TabIDs)
	}
}

func TestProjectDetectorReleasesSingles(t *testing.T) {
	d := NewProjectDetector()
	claimed := make(ClaimSet)

	tabs := []domain.TabSnapshot{
		tab(1, "https://github.com/solo/repo", "solo"),
	}

	if groups := d.Detect(tabs, claimed); len(groups) != 0 {
		t.Fatalf("got %d groups, want 0", len(groups))
	}
	if claimed.Claimed(1) {
		t.Error("single-member candidate must be released, not claimed")
	}
}

func TestProjectDetectorSkipsNonRepoPages(t *testing.T) {
	d := NewProjectDetector()

	tabs := []domain.TabSnapshot{
		tab(1, "https://github.com/settings/profile", ""),
		tab(2, "https://github.com/settings/keys", ""),
		tab(3, "https://github.com/marketplace", ""),
	}

	if groups := d.Detect(tabs, make(ClaimSet)); len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}

func TestContextualDetectorClaims(t *testing.T) {
	d := NewCommunicationDetector()
	claimed := make(ClaimSet)

	tabs := []domain.TabSnapshot{
		tab(1, "https://app.slack.com/client/T1/C2", "team chat"),
		tab(2, "https://discord.com/channels/1/2", "server"),
		tab(3, "https://example.com/page", "unrelated"),
	}

	groups := d.Detect(tabs, claimed)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if len(groups[0].TabIDs) != 2 {
		t.Errorf("members = %v, want two communication tabs", groups[0].TabIDs)
	}
	if !claimed.Claimed(1) || !claimed.Claimed(2) {
		t.Error("emitted tabs must be claimed")
	}
	if claimed.Claimed(3) {
		t.Error("unrelated tab must stay unclaimed")
	}
}

func TestContextualDetectorRespectsClaims(t *testing.T) {
	d := NewMediaDetector()
	claimed := make(ClaimSet)
	claimed.Claim(1)

	tabs := []domain.TabSnapshot{
		tab(1, "https://www.youtube.com/watch?v=a", "video a"),
		tab(2, "https://www.youtube.com/watch?v=b", "video b"),
	}

	// Only one unclaimed media tab remains, below the cluster minimum.
	if groups := d.Detect(tabs, claimed); len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
	if claimed.Claimed(2) {
		t.Error("released tab must stay unclaimed")
	}
}

func TestRegistryOrderProjectFirst(t *testing.T) {
	r := NewDefaultRegistry()

	// GitHub repo tabs match both the project detector and nothing else;
	// slack/discord tabs fall to the communication detector afterwards.
	tabs := []domain.TabSnapshot{
		tab(1, "https://github.com/golang/go/issues/1", ""),
		tab(2, "https://github.com/golang/go/wiki", ""),
		tab(3, "https://app.slack.com/client/T1", ""),
		tab(4, "https://discord.com/channels/9", ""),
	}

	groups := r.DetectAll(tabs, nil)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Detector != DetectorProject {
		t.Errorf("first group from %q, want project", groups[0].Detector)
	}
	if groups[1].Detector != DetectorCommunication {
		t.Errorf("second group from %q, want communication", groups[1].Detector)
	}
}

func TestRegistryStrictPartition(t *testing.T) {
	r := NewDefaultRegistry()

	tabs := []domain.TabSnapshot{
		tab(1, "https://github.com/o/r/issues/1", ""),
		tab(2, "https://github.com/o/r/pull/2", ""),
		tab(3, "https://www.youtube.com/watch?v=x", ""),
		tab(4, "https://open.spotify.com/track/y", ""),
		tab(5, "https://trello.com/b/z", ""),
		tab(6, "https://www.notion.so/page", ""),
		tab(7, "https://www.amazon.com/dp/B0", ""),
		tab(8, "https://www.ebay.com/itm/1", ""),
	}

	groups := r.DetectAll(tabs, nil)

	seen := make(map[int]string)
	for _, g := range groups {
		for _, id := range g.TabIDs {
			if prev, dup := seen[id]; dup {
				t.Errorf("tab %d claimed by both %q and %q", id, prev, g.Detector)
			}
			seen[id] = g.Detector
		}
		if len(g.TabIDs) < MinClusterSize {
			t.Errorf("detector %q emitted group below minimum: %v", g.Detector, g.TabIDs)
		}
	}
}

func TestDocumentationSatellites(t *testing.T) {
	d := NewDocumentationDetector()

	tabs := []domain.TabSnapshot{
		tab(1, "https://developer.mozilla.org/en-US/docs/Web/API/fetch", "fetch API reference"),
		tab(2, "https://stackoverflow.com/q/1", "how streams work"),
		// Satellite: title shares tokens with the anchor titles.
		tab(3, "https://blog.example.com/posts/9", "understanding the fetch API"),
		// Unrelated title on an unrelated host stays out.
		tab(4, "https://blog.example.com/posts/10", "my sourdough starter"),
	}

	groups := d.Detect(tabs, make(ClaimSet))
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	ids := make(map[int]bool)
	for _, id := range groups[0].TabIDs {
		ids[id] = true
	}
	if !ids[1] || !ids[2] {
		t.Errorf("anchors missing from group: %v", groups[0].TabIDs)
	}
	if !ids[3] {
		t.Errorf("satellite 3 missing from group: %v", groups[0].TabIDs)
	}
	if ids[4] {
		t.Errorf("unrelated tab 4 pulled into group: %v", groups[0].TabIDs)
	}
}
