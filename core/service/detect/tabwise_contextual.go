package detect

import (
	"sort"
	"strings"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// ContextualDetector claims every unclaimed tab whose domain appears in a
// fixed allowlist. Communication, media, task, shopping and research are
// all instances of this one scan with different tables.
type ContextualDetector struct {
	name    string
	label   string
	color   domain.GroupColor
	domains map[string]bool
}

// Name returns the detector name.
func (d *ContextualDetector) Name() string {
	return d.name
}

// Detect claims all unclaimed tabs on an allowlisted domain. Parent domains
// match subdomains, so "mail.google.com" hits an allowlist entry for
// "mail.google.com" but "chat.example.slack.com" also hits "slack.com".
func (d *ContextualDetector) Detect(tabs []domain.TabSnapshot, claimed ClaimSet) []CandidateGroup {
	var ids []int
	for _, tab := range tabs {
		if claimed.Claimed(tab.ID) {
			continue
		}
		if d.matches(urlnorm.Domain(tab.URL)) {
			ids = append(ids, tab.ID)
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

func (d *ContextualDetector) matches(host string) bool {
	for host != "" {
		if d.domains[host] {
			return true
		}
		i := strings.Index(host, ".")
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}

// NewCommunicationDetector groups chat, mail and meeting tabs.
func NewCommunicationDetector() *ContextualDetector {
	return &ContextualDetector{
		name:  DetectorCommunication,
		label: "💬 Chat",
		color: domain.ColorCyan,
		domains: map[string]bool{
			"slack.com":           true,
			"discord.com":         true,
			"teams.microsoft.com": true,
			"mail.google.com":     true,
			"outlook.com":         true,
			"outlook.live.com":    true,
			"zoom.us":             true,
			"meet.google.com":     true,
			"web.whatsapp.com":    true,
			"web.telegram.org":    true,
			"messenger.com":       true,
			"chat.google.com":     true,
		},
	}
}

// NewMediaDetector groups streaming and audio tabs.
func NewMediaDetector() *ContextualDetector {
	return &ContextualDetector{
		name:  DetectorMedia,
		label: "🎬 Media",
		color: domain.ColorPink,
		domains: map[string]bool{
			"youtube.com":        true,
			"netflix.com":        true,
			"twitch.tv":          true,
			"spotify.com":        true,
			"open.spotify.com":   true,
			"soundcloud.com":     true,
			"vimeo.com":          true,
			"hulu.com":           true,
			"disneyplus.com":     true,
			"primevideo.com":     true,
			"music.youtube.com":  true,
			"podcasts.apple.com": true,
		},
	}
}

// NewTaskDetector groups project and task management tabs.
func NewTaskDetector() *ContextualDetector {
	return &ContextualDetector{
		name:  DetectorTask,
		label: "✅ Tasks",
		color: domain.ColorYellow,
		domains: map[string]bool{
			"trello.com":    true,
			"asana.com":     true,
			"notion.so":     true,
			"linear.app":    true,
			"monday.com":    true,
			"clickup.com":   true,
			"todoist.com":   true,
			"airtable.com":  true,
			"basecamp.com":  true,
			"atlassian.net": true,
			"jira.com":      true,
		},
	}
}

// NewShoppingDetector groups storefront and marketplace tabs.
func NewShoppingDetector() *ContextualDetector {
	return &ContextualDetector{
		name:  DetectorShopping,
		label: "🛒 Shopping",
		color: domain.ColorOrange,
		domains: map[string]bool{
			"amazon.com":     true,
			"amazon.co.uk":   true,
			"amazon.de":      true,
			"ebay.com":       true,
			"etsy.com":       true,
			"aliexpress.com": true,
			"walmart.com":    true,
			"target.com":     true,
			"bestbuy.com":    true,
			"shopify.com":    true,
			"wish.com":       true,
			"temu.com":       true,
		},
	}
}

// NewResearchDetector groups paper, reference and scholarly tabs.
func NewResearchDetector() *ContextualDetector {
	return &ContextualDetector{
		name:  DetectorResearch,
		label: "🔬 Research",
		color: domain.ColorPurple,
		domains: map[string]bool{
			"scholar.google.com":      true,
			"arxiv.org":               true,
			"pubmed.ncbi.nlm.nih.gov": true,
			"jstor.org":               true,
			"researchgate.net":        true,
			"semanticscholar.org":     true,
			"sciencedirect.com":       true,
			"springer.com":            true,
			"nature.com":              true,
			"ieee.org":                true,
			"acm.org":                 true,
			"wikipedia.org":           true,
		},
	}
}
