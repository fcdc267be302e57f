package detect

import (
	"sort"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// SatelliteOverlapThreshold is the minimum title-token Jaccard similarity
// required to associate a satellite tab with an anchor tab.
const SatelliteOverlapThreshold = 0.3

// docDomains anchor the documentation detector.
var docDomains = map[string]bool{
	"developer.mozilla.org": true,
	"stackoverflow.com":     true,
	"docs.python.org":       true,
	"pkg.go.dev":            true,
	"go.dev":                true,
	"docs.rs":               true,
	"devdocs.io":            true,
	"readthedocs.io":        true,
	"docs.github.com":       true,
	"docs.aws.amazon.com":   true,
	"learn.microsoft.com":   true,
	"developer.apple.com":   true,
	"developer.android.com": true,
	"kubernetes.io":         true,
	"docs.docker.com":       true,
	"developer.chrome.com":  true,
	"web.dev":               true,
	"css-tricks.com":        true,
}

// searchDomains anchor the generic search-context detector.
var searchDomains = map[string]bool{
	"google.com":       true,
	"bing.com":         true,
	"duckduckgo.com":   true,
	"search.brave.com": true,
	"startpage.com":    true,
	"ecosia.org":       true,
	"kagi.com":         true,
	"yandex.com":       true,
}

// anchorSatelliteDetector claims tabs on anchor domains, then pulls in
// satellite tabs whose titles overlap an anchor title by Jaccard similarity.
// Documentation sessions and search sessions both follow this shape: a few
// reference pages plus the pages opened from them.
type anchorSatelliteDetector struct {
	name    string
	label   string
	color   domain.GroupColor
	anchors map[string]bool
}

// Name returns the detector name.
func (d *anchorSatelliteDetector) Name() string {
	return d.name
}

// Detect claims anchors first, then associates unclaimed satellites whose
// title tokens overlap any anchor's by at least SatelliteOverlapThreshold.
func (d *anchorSatelliteDetector) Detect(tabs []domain.TabSnapshot, claimed ClaimSet) []CandidateGroup {
	var anchors []domain.TabSnapshot
	for _, tab := range tabs {
		if claimed.Claimed(tab.ID) {
			continue
		}
		if d.anchors[urlnorm.Domain(tab.URL)] {
			anchors = append(anchors, tab)
		}
	}
	if len(anchors) == 0 {
		return nil
	}

	ids := make([]int, 0, len(anchors))
	member := make(map[int]bool, len(anchors))
	for _, a := range anchors {
		ids = append(ids, a.ID)
		member[a.ID] = true
	}

	anchorTokens := make([]map[string]bool, len(anchors))
	for i, a := range anchors {
		anchorTokens[i] = urlnorm.Tokenize(a.Title)
	}
	for _, tab := range tabs {
		if claimed.Claimed(tab.ID) || member[tab.ID] {
			continue
		}
		tokens := urlnorm.Tokenize(tab.Title)
		for _, at := range anchorTokens {
			if urlnorm.Jaccard(tokens, at) >= SatelliteOverlapThreshold {
				ids = append(ids, tab.ID)
				member[tab.ID] = true
				break
			}
		}
	}

	if len(ids) < MinClusterSize {
		return nil
	}
	sort.Ints(ids)
	claimed.Claim(ids...)
	return []CandidateGroup{{
		Detector: d.name,
		Label:    d.label,
		Color:    d.color,
		TabIDs:   ids,
	}}
}

// NewDocumentationDetector groups reference-documentation sessions.
func NewDocumentationDetector() Detector {
	return &anchorSatelliteDetector{
		name:    DetectorDocumentation,
		label:   "📚 Docs",
		color:   domain.ColorGreen,
		anchors: docDomains,
	}
}

// NewSearchDetector groups search-engine sessions. It runs last so every
// more specific detector gets first claim.
func NewSearchDetector() Detector {
	return &anchorSatelliteDetector{
		name:    DetectorSearch,
		label:   "🔍 Search",
		color:   domain.ColorGrey,
		anchors: searchDomains,
	}
}
