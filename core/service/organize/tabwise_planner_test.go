package organize

import (
	"reflect"
	"testing"
	"time"

	"tabwise_server/core/domain"
	"tabwise_server/core/service/detect"
)

func classified(category string, ids ...int) map[int]*domain.ClassificationResult {
	out := make(map[int]*domain.ClassificationResult)
	for _, id := range ids {
		out[id] = &domain.ClassificationResult{Category: category, Confidence: 0.9}
	}
	return out
}

func TestPlanCategoryGroups(t *testing.T) {
	p := NewPlanner()

	in := PlanInput{
		Tabs: []domain.TabSnapshot{
			{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4},
		},
		Classifications: map[int]*domain.ClassificationResult{
			1: {Category: "work"},
			2: {Category: "work"},
			3: {Category: "reading"},
			4: {Category: "reading"},
		},
		Categories: []domain.Category{
			{ID: "reading", Name: "Reading", Color: "purple", Position: 1},
			{ID: "work", Name: "Work", Color: "blue", Position: 0},
		},
		Config: domain.DefaultOrganizeConfig(),
	}

	plan := p.Plan(in)
	if len(plan.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(plan.Groups))
	}
	// Persisted position order, not input order.
	if plan.Groups[0].Label != "Work" || plan.Groups[1].Label != "Reading" {
		t.Errorf("order = [%q, %q], want [Work, Reading]",
			plan.Groups[0].Label, plan.Groups[1].Label)
	}
	if plan.Groups[0].Color != domain.ColorBlue {
		t.Errorf("work color = %q, want blue", plan.Groups[0].Color)
	}
	if !reflect.DeepEqual(plan.Groups[0].TabIDs, []int{1, 2}) {
		t.Errorf("work members = %v, want [1 2]", plan.Groups[0].TabIDs)
	}
}

func TestPlanStrictPartition(t *testing.T) {
	p := NewPlanner()

	// Tab 2 is both classified "work" and a member of a project cluster;
	// the category (run first) must win and the cluster shrinks below the
	// minimum and is dropped.
	in := PlanInput{
		Tabs:            []domain.TabSnapshot{{ID: 1}, {ID: 2}, {ID: 3}},
		Classifications: classified("work", 1, 2),
		Categories:      []domain.Category{{ID: "work", Name: "Work"}},
		Clusters: []detect.CandidateGroup{
			{Detector: detect.DetectorProject, Label: "GH o/r", TabIDs: []int{2, 3}},
		},
		Config: domain.DefaultOrganizeConfig(),
	}

	plan := p.Plan(in)
	seen := make(map[int]bool)
	for _, g := range plan.Groups {
		for _, id := range g.TabIDs {
			if seen[id] {
				t.Errorf("tab %d appears in more than one group", id)
			}
			seen[id] = true
		}
	}
	if len(plan.Groups) != 1 {
		t.Fatalf("got %d groups, want 1 (cluster dropped below minimum)", len(plan.Groups))
	}
	if plan.Groups[0].Source != domain.GroupSourceCategory {
		t.Errorf("source = %q, want category", plan.Groups[0].Source)
	}
}

func TestPlanPinnedTabsSkipped(t *testing.T) {
	p := NewPlanner()

	in := PlanInput{
		Tabs: []domain.TabSnapshot{
			{ID: 1, Pinned: true}, {ID: 2}, {ID: 3},
		},
		Classifications: classified("work", 1, 2, 3),
		Categories:      []domain.Category{{ID: "work", Name: "Work"}},
		Config:          domain.DefaultOrganizeConfig(),
	}

	plan := p.Plan(in)
	if len(plan.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(plan.Groups))
	}
	for _, id := range plan.Groups[0].TabIDs {
		if id == 1 {
			t.Error("pinned tab must not be planned")
		}
	}
}

func TestPlanClusterSkipsPinned(t *testing.T) {
	p := NewPlanner()

	in := PlanInput{
		Tabs: []domain.TabSnapshot{
			{ID: 1, Pinned: true}, {ID: 2}, {ID: 3},
		},
		Clusters: []detect.CandidateGroup{
			{Detector: detect.DetectorProject, Label: "GH golang/go", TabIDs: []int{1, 2, 3}},
			{Detector: detect.DetectorMedia, Label: "🎬 Media", TabIDs: []int{1, 2}},
		},
		Config: domain.SmartOrganizeConfig{MinGroupSize: 2, EnableSmartGroups: true},
	}

	plan := p.Plan(in)
	if len(plan.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(plan.Groups))
	}
	// Pinned tab is excluded from the project group; the media cluster drops
	// below the minimum once it is excluded there too.
	if !reflect.DeepEqual(plan.Groups[0].TabIDs, []int{2, 3}) {
		t.Errorf("members = %v, want [2 3]", plan.Groups[0].TabIDs)
	}
}

func TestPlanMinGroupSize(t *testing.T) {
	p := NewPlanner()

	base := PlanInput{
		Tabs:            []domain.TabSnapshot{{ID: 1}},
		Classifications: classified("work", 1),
		Categories:      []domain.Category{{ID: "work", Name: "Work"}},
	}

	base.Config = domain.DefaultOrganizeConfig()
	if plan := p.Plan(base); len(plan.Groups) != 0 {
		t.Errorf("default min size: got %d groups, want 0", len(plan.Groups))
	}

	base.Config.GroupSingleTabs = true
	if plan := p.Plan(base); len(plan.Groups) != 1 {
		t.Errorf("group_single_tabs: got %d groups, want 1", len(plan.Groups))
	}
}

func TestPlanSystemAndUncategorizedLast(t *testing.T) {
	p := NewPlanner()

	in := PlanInput{
		Tabs: []domain.TabSnapshot{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}, {ID: 6}},
		Classifications: map[int]*domain.ClassificationResult{
			1: {Category: "uncategorized"},
			2: {Category: "uncategorized"},
			3: {Category: "system"},
			4: {Category: "system"},
			5: {Category: "work"},
			6: {Category: "work"},
		},
		Categories: []domain.Category{
			{ID: "uncategorized", Name: "Uncategorized", Position: 0},
			{ID: "system", Name: "System", IsSystem: true, Position: 1},
			{ID: "work", Name: "Work", Position: 2},
		},
		Config: domain.DefaultOrganizeConfig(),
	}

	plan := p.Plan(in)
	if len(plan.Groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(plan.Groups))
	}
	if plan.Groups[0].Label != "Work" {
		t.Errorf("first group = %q, want Work", plan.Groups[0].Label)
	}
	if plan.Groups[2].Label != "Uncategorized" {
		t.Errorf("last group = %q, want Uncategorized", plan.Groups[2].Label)
	}
}

func TestPlanClustersNeedSmartGroups(t *testing.T) {
	p := NewPlanner()

	in := PlanInput{
		Tabs: []domain.TabSnapshot{{ID: 1}, {ID: 2}},
		Clusters: []detect.CandidateGroup{
			{Detector: detect.DetectorMedia, Label: "🎬 Media", TabIDs: []int{1, 2}},
		},
		Config: domain.SmartOrganizeConfig{MinGroupSize: 2},
	}

	if plan := p.Plan(in); len(plan.Groups) != 0 {
		t.Errorf("smart groups disabled: got %d groups, want 0", len(plan.Groups))
	}

	in.Config.EnableSmartGroups = true
	plan := p.Plan(in)
	if len(plan.Groups) != 1 {
		t.Fatalf("smart groups enabled: got %d groups, want 1", len(plan.Groups))
	}
	if plan.Groups[0].Source != domain.GroupSourceCluster {
		t.Errorf("source = %q, want cluster", plan.Groups[0].Source)
	}
	if plan.Groups[0].SourceDetector != detect.DetectorMedia {
		t.Errorf("detector = %q, want media", plan.Groups[0].SourceDetector)
	}
}

func TestPlanPrioritizeRecent(t *testing.T) {
	p := NewPlanner()

	now := time.Now()
	in := PlanInput{
		Tabs: []domain.TabSnapshot{
			{ID: 1, LastAccessed: now.Add(-2 * time.Hour)},
			{ID: 2, LastAccessed: now},
			{ID: 3, LastAccessed: now.Add(-time.Hour)},
		},
		Classifications: classified("work", 1, 2, 3),
		Categories:      []domain.Category{{ID: "work", Name: "Work"}},
		Config:          domain.SmartOrganizeConfig{MinGroupSize: 2, PrioritizeRecent: true},
	}

	plan := p.Plan(in)
	if len(plan.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(plan.Groups))
	}
	if !reflect.DeepEqual(plan.Groups[0].TabIDs, []int{2, 3, 1}) {
		t.Errorf("order = %v, want [2 3 1]", plan.Groups[0].TabIDs)
	}
}

func TestPlanCompactLabels(t *testing.T) {
	p := NewPlanner()

	in := PlanInput{
		Tabs:            []domain.TabSnapshot{{ID: 1}, {ID: 2}},
		Classifications: classified("deep work", 1, 2),
		Categories:      []domain.Category{{ID: "dw", Name: "Deep Work"}},
		Config:          domain.DefaultOrganizeConfig(),
		CompactLabels:   true,
	}

	plan := p.Plan(in)
	if len(plan.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(plan.Groups))
	}
	if plan.Groups[0].Label != "DW" {
		t.Errorf("label = %q, want %q", plan.Groups[0].Label, "DW")
	}
}

func TestPlanIdempotent(t *testing.T) {
	p := NewPlanner()

	in := PlanInput{
		Tabs: []domain.TabSnapshot{{ID: 3}, {ID: 1}, {ID: 2}, {ID: 4}},
		Classifications: map[int]*domain.ClassificationResult{
			1: {Category: "work"},
			2: {Category: "work"},
			3: {Category: "reading"},
			4: {Category: "reading"},
		},
		Categories: []domain.Category{
			{ID: "work", Name: "Work", Position: 0},
			{ID: "reading", Name: "Reading", Position: 1},
		},
		Config: domain.DefaultOrganizeConfig(),
	}

	first := p.Plan(in)
	for i := 0; i < 5; i++ {
		if again := p.Plan(in); !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d: plan differs from first run", i)
		}
	}
}
