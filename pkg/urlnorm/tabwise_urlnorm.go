// Package urlnorm provides URL canonicalization and title-token similarity
// used by classification, duplicate detection and the cluster detectors.
package urlnorm

import (
	"net/url"
	"strings"
)

// =============================================================================
// Domain Normalization
// =============================================================================

// Domain canonicalizes a URL to a comparable hostname key: lowercased, with
// a leading "www." stripped. Returns "" when the URL has no usable host.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// =============================================================================
// Canonical URLs (duplicate detection)
// =============================================================================

// trackingParams are query parameters that never change page identity and
// are stripped before comparing URLs.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"utm_id":       true,
	"fbclid":       true,
	"gclid":        true,
	"dclid":        true,
	"msclkid":      true,
	"mc_cid":       true,
	"mc_eid":       true,
	"igshid":       true,
	"ref":          true,
	"ref_src":      true,
	"source":       true,
	"spm":          true,
}

// Canonical reduces a URL to its comparable form: tracking parameters and
// the fragment removed, trailing slash dropped, scheme and "www." collapsed,
// everything lowercased except the query values. Unparseable input falls
// back to the lowercased raw string so callers still get a stable key.
func Canonical(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSuffix(rawURL, "/"))
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	path := strings.TrimSuffix(u.EscapedPath(), "/")

	q := u.Query()
	for param := range q {
		if trackingParams[strings.ToLower(param)] {
			q.Del(param)
		}
	}
	query := q.Encode()

	canonical := host + strings.ToLower(path)
	if query != "" {
		canonical += "?" + query
	}
	return canonical
}

// =============================================================================
// Token Similarity
// =============================================================================

// Tokenize splits a title into a lowercase token set, dropping punctuation
// and single-character fragments.
func Tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(f) > 1 {
			tokens[f] = true
		}
	}
	return tokens
}

// Jaccard returns intersection-over-union of two token sets. Two empty sets
// have similarity 0, not 1; an empty title should never match anything.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// TitleSimilarity is Jaccard over tokenized titles.
func TitleSimilarity(a, b string) float64 {
	return Jaccard(Tokenize(a), Tokenize(b))
}
