package detect

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// codeHosts maps known code-hosting domains to the short code used in group
// labels.
var codeHosts = map[string]string{
	"github.com":    "GH",
	"gitlab.com":    "GL",
	"bitbucket.org": "BB",
	"codeberg.org":  "CB",
	"sr.ht":         "SH",
}

// repoPathPattern extracts owner/repo from a code-host path. Non-repository
// pages (settings, marketplace, ...) are filtered separately.
var repoPathPattern = regexp.MustCompile(`^/([A-Za-z0-9][A-Za-z0-9_.-]*)/([A-Za-z0-9][A-Za-z0-9_.-]*)`)

// nonRepoOwners are first path segments on code hosts that never identify a
// repository owner.
var nonRepoOwners = map[string]bool{
	"settings":      true,
	"marketplace":   true,
	"explore":       true,
	"notifications": true,
	"topics":        true,
	"search":        true,
	"orgs":          true,
	"login":         true,
	"pulls":         true,
	"issues":        true,
	"dashboard":     true,
	"groups":        true,
	"-":             true,
}

// ProjectDetector clusters tabs that belong to the same repository on a
// known code host. It runs first because a repository match is more
// specific than any contextual allowlist.
type ProjectDetector struct{}

// NewProjectDetector creates the project/repository detector.
func NewProjectDetector() *ProjectDetector {
	return &ProjectDetector{}
}

// Name returns the detector name.
func (d *ProjectDetector) Name() string {
	return DetectorProject
}

// Detect groups unclaimed tabs per host+repository, in order of first
// appearance.
func (d *ProjectDetector) Detect(tabs []domain.TabSnapshot, claimed ClaimSet) []CandidateGroup {
	type repoKey struct {
		host string
		repo string
	}
	members := make(map[repoKey][]int)
	var discovery []repoKey

	for _, tab := range tabs {
		if claimed.Claimed(tab.ID) {
			continue
		}
		host := urlnorm.Domain(tab.URL)
		code, ok := codeHosts[host]
		if !ok {
			continue
		}
		repo := repoIdentifier(tab.URL)
		if repo == "" {
			continue
		}
		key := repoKey{host: code, repo: repo}
		if _, seen := members[key]; !seen {
			discovery = append(discovery, key)
		}
		members[key] = append(members[key], tab.ID)
	}

	var groups []CandidateGroup
	for _, key := range discovery {
		ids := members[key]
		if len(ids) < MinClusterSize {
			continue // released, next detector may still take the tab
		}
		sort.Ints(ids)
		claimed.Claim(ids...)
		groups = append(groups, CandidateGroup{
			Detector: DetectorProject,
			Label:    key.host + " " + key.repo,
			Color:    domain.ColorBlue,
			TabIDs:   ids,
		})
	}
	return groups
}

// repoIdentifier extracts "owner/repo" from a code-host URL, or "".
func repoIdentifier(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	m := repoPathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return ""
	}
	owner := strings.ToLower(m[1])
	if nonRepoOwners[owner] {
		return ""
	}
	return owner + "/" + strings.TrimSuffix(strings.ToLower(m[2]), ".git")
}
