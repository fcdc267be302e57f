package domain

import (
	"time"
)

// =============================================================================
// Duplicate Detection
// =============================================================================

// DuplicateKind distinguishes byte-equal canonical URLs from fuzzy title
// matches on the same host.
type DuplicateKind string

const (
	DuplicateExact   DuplicateKind = "exact"
	DuplicateSimilar DuplicateKind = "similar"
)

// DuplicateGroup is one cluster of tabs considered duplicates of each other.
// Keep is the tab that survives; the rest are recommended for closure.
type DuplicateGroup struct {
	CanonicalURL string        `json:"canonical_url"`
	Kind         DuplicateKind `json:"kind"`
	Keep         TabSnapshot   `json:"keep"`
	Close        []TabSnapshot `json:"close"`
}

// Members returns all tabs in the group, kept tab first.
func (g *DuplicateGroup) Members() []TabSnapshot {
	out := make([]TabSnapshot, 0, len(g.Close)+1)
	out = append(out, g.Keep)
	return append(out, g.Close...)
}

// =============================================================================
// Grouping Plan
// =============================================================================

// GroupSource identifies which stage of the planner emitted a group.
type GroupSource string

const (
	GroupSourceCategory GroupSource = "category"
	GroupSourceProject  GroupSource = "project"
	GroupSourceCluster  GroupSource = "cluster" // secondary detectors
)

// PlannedGroup is one entry of a GroupingPlan awaiting execution.
type PlannedGroup struct {
	Label          string      `json:"label"`
	Color          GroupColor  `json:"color"`
	TabIDs         []int       `json:"tab_ids"`
	Source         GroupSource `json:"source"`
	SourceDetector string      `json:"source_detector,omitempty"` // detector name for cluster groups
}

// GroupingPlan is the final, conflict-free partition of tabs into labeled
// groups. Every tab id appears in at most one entry.
type GroupingPlan struct {
	Groups []PlannedGroup `json:"groups"`
}

// TabCount returns the number of tabs covered by the plan.
func (p *GroupingPlan) TabCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.TabIDs)
	}
	return n
}

// =============================================================================
// Execution
// =============================================================================

// SmartOrganizeConfig are the user-facing knobs for one organize run.
type SmartOrganizeConfig struct {
	CloseDuplicates       bool `json:"close_duplicates"`
	MinGroupSize          int  `json:"min_group_size"`
	RespectUserCategories bool `json:"respect_user_categories"`
	EnableSmartGroups     bool `json:"enable_smart_groups"`
	PrioritizeRecent      bool `json:"prioritize_recent"`
	GroupSingleTabs       bool `json:"group_single_tabs"`
}

// DefaultOrganizeConfig returns the defaults applied when the host sends an
// empty config.
func DefaultOrganizeConfig() SmartOrganizeConfig {
	return SmartOrganizeConfig{
		CloseDuplicates:   true,
		MinGroupSize:      2,
		EnableSmartGroups: true,
	}
}

// ClosedTabRef is the minimal descriptor needed to recreate a closed tab.
type ClosedTabRef struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// UndoState records everything needed to reverse the most recent organize
// run. A single instance exists at a time; it is overwritten by each run and
// cleared by a successful undo.
type UndoState struct {
	ID              string         `json:"id"`
	Timestamp       time.Time      `json:"timestamp"`
	CreatedGroupIDs []int          `json:"created_group_ids"`
	UngroupedTabIDs []int          `json:"ungrouped_tab_ids"` // tabs that were grouped before the run
	ClosedTabs      []ClosedTabRef `json:"closed_tabs"`
}

// ExecutionResult is the aggregated outcome of an organize or undo run.
// Partial failures accumulate in Errors without flipping Success.
type ExecutionResult struct {
	Success          bool     `json:"success"`
	GroupsCreated    int      `json:"groups_created"`
	ClosedDuplicates int      `json:"closed_duplicates"`
	Errors           []string `json:"errors,omitempty"`
	Message          string   `json:"message"`
	CanUndo          bool     `json:"can_undo"`
}
