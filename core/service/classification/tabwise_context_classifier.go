package classification

import (
	"context"
	"fmt"
	"sort"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// ContextClassifier infers a category from the other tabs open in the same
// session: each session tab votes with its domain's most-frequent learned
// category, and the winning category's share of the session becomes the
// confidence (scaled by 0.8, capped at 0.8).
type ContextClassifier struct {
	store *domain.PatternStore
}

// NewContextClassifier creates a classifier over a pattern-store snapshot.
func NewContextClassifier(store *domain.PatternStore) *ContextClassifier {
	return &ContextClassifier{store: store}
}

// Name returns the classifier name.
func (c *ContextClassifier) Name() string {
	return "context"
}

// Stage returns the cascade stage number.
func (c *ContextClassifier) Stage() int {
	return 2
}

// Classify tallies session votes for the tab.
func (c *ContextClassifier) Classify(ctx context.Context, tctx *domain.TabContext) (*domain.ClassificationResult, error) {
	if len(tctx.SessionTabs) == 0 {
		return nil, nil
	}

	votes := make(map[string]int)
	for _, tab := range tctx.SessionTabs {
		key := urlnorm.Domain(tab.URL)
		if key == "" {
			continue
		}
		pattern, ok := c.store.Patterns[key]
		if !ok {
			continue
		}
		if category := dominantCategory(pattern); category != "" {
			votes[category]++
		}
	}
	if len(votes) == 0 {
		return nil, nil
	}

	categories := make([]string, 0, len(votes))
	for category := range votes {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	best := categories[0]
	for _, category := range categories[1:] {
		if votes[category] > votes[best] {
			best = category
		}
	}

	confidence := float64(votes[best]) / float64(len(tctx.SessionTabs)) * 0.8
	if confidence > ConfidenceContextCap {
		confidence = ConfidenceContextCap
	}

	return &domain.ClassificationResult{
		Category:   best,
		Confidence: confidence,
		Source:     domain.SourceContext,
		Reasoning:  fmt.Sprintf("%d of %d session tabs lean %s", votes[best], len(tctx.SessionTabs), best),
	}, nil
}

// dominantCategory returns the single most-frequent learned category of a
// domain, breaking count ties by the lexicographically smallest category.
func dominantCategory(pattern *domain.UserPattern) string {
	if len(pattern.CategoryCounts) == 0 {
		return ""
	}
	categories := make([]string, 0, len(pattern.CategoryCounts))
	for category := range pattern.CategoryCounts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	best := categories[0]
	for _, category := range categories[1:] {
		if pattern.CategoryCounts[category] > pattern.CategoryCounts[best] {
			best = category
		}
	}
	return best
}
