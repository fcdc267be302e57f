// Package dedup detects duplicate and near-duplicate tabs and recommends
// which of each cluster to keep.
package dedup

import (
	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// TitleSimilarityThreshold is the minimum title-token Jaccard for two tabs
// on the same host to count as similar duplicates.
const TitleSimilarityThreshold = 0.8

// Detector groups duplicate tabs. Detection is a pure batch operation over
// an input snapshot; the scan is greedy left-to-right, so each tab joins at
// most one group and the first match wins.
type Detector struct{}

// NewDetector creates a duplicate detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect scans the tabs in input order and returns duplicate groups of two
// or more members.
func (d *Detector) Detect(tabs []domain.TabSnapshot) []domain.DuplicateGroup {
	canonical := make([]string, len(tabs))
	hosts := make([]string, len(tabs))
	for i, tab := range tabs {
		canonical[i] = urlnorm.Canonical(tab.URL)
		hosts[i] = urlnorm.Domain(tab.URL)
	}

	var groups []domain.DuplicateGroup
	claimed := make([]bool, len(tabs))

	for i := range tabs {
		if claimed[i] {
			continue
		}

		members := []int{i}
		kind := domain.DuplicateExact
		for j := i + 1; j < len(tabs); j++ {
			if claimed[j] {
				continue
			}
			match, matchKind := d.match(tabs[i], tabs[j], canonical[i], canonical[j], hosts[i], hosts[j])
			if !match {
				continue
			}
			members = append(members, j)
			claimed[j] = true
			if matchKind == domain.DuplicateSimilar {
				kind = domain.DuplicateSimilar
			}
		}
		if len(members) < 2 {
			continue
		}
		claimed[i] = true

		keep := d.pickKeeper(tabs, members)
		group := domain.DuplicateGroup{
			CanonicalURL: canonical[i],
			Kind:         kind,
			Keep:         tabs[keep],
		}
		for _, m := range members {
			if m != keep {
				group.Close = append(group.Close, tabs[m])
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// match decides whether two tabs are duplicates and of which kind.
func (d *Detector) match(a, b domain.TabSnapshot, canonA, canonB, hostA, hostB string) (bool, domain.DuplicateKind) {
	if canonA != "" && canonA == canonB {
		return true, domain.DuplicateExact
	}
	if hostA == "" || hostA != hostB {
		return false, ""
	}
	if a.Title != "" && a.Title == b.Title {
		return true, domain.DuplicateSimilar
	}
	if urlnorm.TitleSimilarity(a.Title, b.Title) > TitleSimilarityThreshold {
		return true, domain.DuplicateSimilar
	}
	return false, ""
}

// pickKeeper returns the index of the surviving tab: the active tab when
// present, otherwise the most recently accessed (input-order ties).
func (d *Detector) pickKeeper(tabs []domain.TabSnapshot, members []int) int {
	for _, m := range members {
		if tabs[m].Active {
			return m
		}
	}
	keep := members[0]
	for _, m := range members[1:] {
		if tabs[m].LastAccessed.After(tabs[keep].LastAccessed) {
			keep = m
		}
	}
	return keep
}

// CloseTabIDs flattens the closure recommendations of all groups.
func CloseTabIDs(groups []domain.DuplicateGroup) []int {
	var ids []int
	for _, g := range groups {
		for _, t := range g.Close {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
