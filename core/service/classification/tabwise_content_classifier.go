package classification

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// =============================================================================
// Content Heuristic Classifier
// =============================================================================

// taxonomyEntry is one category of the built-in content taxonomy with its
// pattern set. Entries are matched in slice order; score ties go to the
// earlier entry.
type taxonomyEntry struct {
	category string
	patterns []*regexp.Regexp
}

// ContentClassifier scores title+URL against the fixed content taxonomy,
// optionally preceded by the user's own category domain/keyword lists.
//
// The taxonomy is a second vocabulary alongside the persisted categories;
// the planner resolves overlaps by case-insensitive name match.
type ContentClassifier struct {
	categories []domain.Category
	taxonomy   []taxonomyEntry
}

// NewContentClassifier creates a content classifier. Passing user categories
// enables matching their domain and keyword lists ahead of the taxonomy.
func NewContentClassifier(categories []domain.Category) *ContentClassifier {
	return &ContentClassifier{
		categories: categories,
		taxonomy:   builtinTaxonomy(),
	}
}

// Name returns the classifier name.
func (c *ContentClassifier) Name() string {
	return "content"
}

// Stage returns the cascade stage number.
func (c *ContentClassifier) Stage() int {
	return 3
}

// Classify matches the tab's title and URL against category lists and the
// built-in taxonomy.
func (c *ContentClassifier) Classify(ctx context.Context, tctx *domain.TabContext) (*domain.ClassificationResult, error) {
	haystack := strings.ToLower(tctx.Tab.Title + " " + tctx.Tab.URL)
	tabDomain := urlnorm.Domain(tctx.Tab.URL)

	// User categories first: a domain-list hit is a strong signal, keyword
	// hits are weaker.
	for _, cat := range c.categories {
		for _, d := range cat.Domains {
			if tabDomain != "" && matchesDomain(tabDomain, strings.ToLower(d)) {
				return &domain.ClassificationResult{
					Category:   cat.ID,
					Confidence: 0.75,
					Source:     domain.SourceContent,
					Reasoning:  fmt.Sprintf("category %q lists domain %s", cat.Name, d),
				}, nil
			}
		}
	}
	// Keyword scan picks the category with the most hits; ties go to the
	// earlier category in list order.
	bestHits := 0
	var bestCat *domain.Category
	for i := range c.categories {
		cat := &c.categories[i]
		hits := 0
		for _, kw := range cat.Keywords {
			if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestCat = cat
		}
	}
	if bestHits > 0 {
		confidence := 0.45 + 0.15*float64(bestHits)
		if confidence > ConfidenceContentCap {
			confidence = ConfidenceContentCap
		}
		return &domain.ClassificationResult{
			Category:   bestCat.ID,
			Confidence: confidence,
			Source:     domain.SourceContent,
			Reasoning:  fmt.Sprintf("%d keyword match(es) for category %q", bestHits, bestCat.Name),
		}, nil
	}

	// Built-in taxonomy: count matching patterns, first entry wins ties.
	bestScore := 0
	bestCategory := ""
	for _, entry := range c.taxonomy {
		score := 0
		for _, p := range entry.patterns {
			if p.MatchString(haystack) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestCategory = entry.category
		}
	}
	if bestScore == 0 {
		return nil, nil
	}

	confidence := float64(bestScore) / 3
	if confidence > ConfidenceContentCap {
		confidence = ConfidenceContentCap
	}

	return &domain.ClassificationResult{
		Category:   bestCategory,
		Confidence: confidence,
		Source:     domain.SourceContent,
		Reasoning:  fmt.Sprintf("%d content pattern(s) for %s", bestScore, bestCategory),
	}, nil
}

// matchesDomain reports whether tabDomain equals or is a subdomain of want.
func matchesDomain(tabDomain, want string) bool {
	return tabDomain == want || strings.HasSuffix(tabDomain, "."+want)
}

// builtinTaxonomy compiles the fixed content taxonomy. Order matters: ties
// resolve to the earlier category.
func builtinTaxonomy() []taxonomyEntry {
	mk := func(category string, patterns ...string) taxonomyEntry {
		entry := taxonomyEntry{category: category}
		for _, p := range patterns {
			entry.patterns = append(entry.patterns, regexp.MustCompile(p))
		}
		return entry
	}

	return []taxonomyEntry{
		mk("work",
			`\b(meeting|standup|agenda|quarterly|okr)\b`,
			`\b(dashboard|admin|console)\b`,
			`\b(jira|confluence|asana|trello|notion|linear)\b`,
			`\b(slides?|sheets?|docs?)\b`,
			`(calendar|schedule)`,
		),
		mk("development",
			`\b(github|gitlab|bitbucket)\b`,
			`\b(stack\s?overflow|stackexchange)\b`,
			`\b(pull request|merge request|commit|branch|repository)\b`,
			`\b(api|sdk|cli|npm|pypi|crate)\b`,
			`\b(documentation|docs)\b.*\b(api|reference)\b`,
			`\blocalhost\b|127\.0\.0\.1`,
		),
		mk("social",
			`\b(facebook|instagram|twitter|threads|mastodon|bluesky)\b`,
			`\b(reddit|linkedin|tiktok)\b`,
			`\b(followers?|timeline|feed)\b`,
			`/status/|/post/`,
		),
		mk("entertainment",
			`\b(youtube|netflix|twitch|spotify|hulu|disney)\b`,
			`\b(watch|episode|season|trailer)\b`,
			`\b(music|playlist|album)\b`,
			`\b(game|gaming|steam)\b`,
		),
		mk("shopping",
			`\b(amazon|ebay|etsy|aliexpress)\b`,
			`\b(cart|checkout|order|wishlist)\b`,
			`\b(price|deal|discount|coupon|sale)\b`,
			`\b(shop|store|buy)\b`,
		),
		mk("news",
			`\b(news|breaking|headline)\b`,
			`\b(bbc|cnn|reuters|nytimes|guardian|bloomberg)\b`,
			`\b(article|opinion|editorial)\b`,
			`/20\d{2}/\d{2}/`,
		),
		mk("learning",
			`\b(course|tutorial|lecture|lesson)\b`,
			`\b(coursera|udemy|khan\s?academy|edx|duolingo)\b`,
			`\b(learn|study|exam|quiz)\b`,
			`\b(wikipedia|wiki)\b`,
		),
	}
}
