package classification

import (
	"context"
	"fmt"
	"sort"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// PatternClassifier scores a tab against the learned per-domain statistics.
//
// Per category: score = count * (1 + timeBoost*0.5) * (1 + coBoost*0.3)
// where timeBoost is the share of learning events at the current time of day
// and coBoost is the overlap between the session's domains and the learned
// co-occurrence list. Confidence is min(bestScore/totalCount, 0.95).
type PatternClassifier struct {
	store *domain.PatternStore
}

// NewPatternClassifier creates a classifier over a pattern-store snapshot.
func NewPatternClassifier(store *domain.PatternStore) *PatternClassifier {
	return &PatternClassifier{store: store}
}

// Name returns the classifier name.
func (c *PatternClassifier) Name() string {
	return "pattern"
}

// Stage returns the cascade stage number.
func (c *PatternClassifier) Stage() int {
	return 1
}

type scoredCategory struct {
	category string
	score    float64
}

// Classify scores the tab's domain against the learned patterns.
func (c *PatternClassifier) Classify(ctx context.Context, tctx *domain.TabContext) (*domain.ClassificationResult, error) {
	key := urlnorm.Domain(tctx.Tab.URL)
	if key == "" {
		return nil, nil
	}

	pattern, ok := c.store.Patterns[key]
	if !ok || pattern.TotalCount() == 0 {
		return nil, nil
	}

	total := float64(pattern.TotalCount())
	timeCount := float64(pattern.TimePatterns[tctx.TimeOfDay])
	timeBoost := timeCount / total

	sessionDomains := sessionDomainSet(tctx.SessionTabs)

	scored := make([]scoredCategory, 0, len(pattern.CategoryCounts))
	for category, count := range pattern.CategoryCounts {
		coBoost := coOccurrenceBoost(sessionDomains, pattern.ContextDomains[category])
		score := float64(count) * (1 + timeBoost*0.5) * (1 + coBoost*0.3)
		scored = append(scored, scoredCategory{category: category, score: score})
	}

	// Stable ordering: descending score, lexicographic category on ties.
	// Map iteration order is random in Go, and re-running an unchanged tab
	// set must yield an identical plan.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].category < scored[j].category
	})

	best := scored[0]
	confidence := best.score / total
	if confidence > ConfidencePatternCap {
		confidence = ConfidencePatternCap
	}

	var alternatives []domain.Alternative
	for _, s := range scored[1:] {
		if len(alternatives) == 3 {
			break
		}
		alternatives = append(alternatives, domain.Alternative{Category: s.category, Score: s.score})
	}

	return &domain.ClassificationResult{
		Category:     best.category,
		Confidence:   confidence,
		Source:       domain.SourcePattern,
		Reasoning:    fmt.Sprintf("learned pattern for %s (%d observations)", key, pattern.TotalCount()),
		Alternatives: alternatives,
	}, nil
}

// sessionDomainSet collects the distinct normalized domains of the session.
func sessionDomainSet(tabs []domain.TabSnapshot) map[string]bool {
	set := make(map[string]bool, len(tabs))
	for _, tab := range tabs {
		if d := urlnorm.Domain(tab.URL); d != "" {
			set[d] = true
		}
	}
	return set
}

// coOccurrenceBoost is |session ∩ learned| / |session|.
func coOccurrenceBoost(session map[string]bool, learned []string) float64 {
	if len(session) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(learned))
	matches := 0
	for _, d := range learned {
		if seen[d] {
			continue
		}
		seen[d] = true
		if session[d] {
			matches++
		}
	}
	return float64(matches) / float64(len(session))
}
