// Package detect implements the secondary cluster detectors: claim-based
// scans that pull related tabs into thematic groups before category
// grouping falls through.
//
// Detectors run in a fixed specificity order; each marks the tabs it takes
// in a shared ClaimSet so later detectors and the planner skip them. A
// detector that would take a single tab releases it instead, keeping the
// tab eligible downstream.
package detect

import (
	"tabwise_server/core/domain"
)

// MinClusterSize is the smallest group a detector may emit.
const MinClusterSize = 2

// ClaimSet tracks which tab ids have been taken by a detector.
type ClaimSet map[int]bool

// Claimed reports whether a tab has been taken.
func (s ClaimSet) Claimed(id int) bool { return s[id] }

// Claim marks tabs as taken.
func (s ClaimSet) Claim(ids ...int) {
	for _, id := range ids {
		s[id] = true
	}
}

// CandidateGroup is one cluster proposed by a detector.
type CandidateGroup struct {
	Detector string            `json:"detector"`
	Label    string            `json:"label"`
	Color    domain.GroupColor `json:"color"`
	TabIDs   []int             `json:"tab_ids"`
}

// Detector is one secondary cluster scan. Implementations must only claim
// tabs they actually emit in a group.
type Detector interface {
	// Name returns the detector name used in plan provenance.
	Name() string

	// Detect scans unclaimed tabs and returns zero or more groups,
	// claiming every tab it emits.
	Detect(tabs []domain.TabSnapshot, claimed ClaimSet) []CandidateGroup
}

// Detector names, in execution order.
const (
	DetectorProject       = "project"
	DetectorCommunication = "communication"
	DetectorMedia         = "media"
	DetectorTask          = "task"
	DetectorShopping      = "shopping"
	DetectorResearch      = "research"
	DetectorDocumentation = "documentation"
	DetectorSearch        = "search"
)

// =============================================================================
// Registry
// =============================================================================

// Registry holds the ordered detector chain.
type Registry struct {
	detectors []Detector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a detector to the chain.
func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// NewDefaultRegistry builds the standard chain: project detection first
// (highest specificity), the generic search context last.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewProjectDetector())
	r.Register(NewCommunicationDetector())
	r.Register(NewMediaDetector())
	r.Register(NewTaskDetector())
	r.Register(NewShoppingDetector())
	r.Register(NewResearchDetector())
	r.Register(NewDocumentationDetector())
	r.Register(NewSearchDetector())
	return r
}

// DetectAll runs the chain over the tabs, sharing one claim set.
func (r *Registry) DetectAll(tabs []domain.TabSnapshot, claimed ClaimSet) []CandidateGroup {
	if claimed == nil {
		claimed = make(ClaimSet)
	}
	var groups []CandidateGroup
	for _, d := range r.detectors {
		groups = append(groups, d.Detect(tabs, claimed)...)
	}
	return groups
}
