package classification

import (
	"context"
	"strings"
	"time"

	"tabwise_server/core/domain"
	"tabwise_server/core/port/out"
	"tabwise_server/pkg/apperr"
	"tabwise_server/pkg/logger"
	"tabwise_server/pkg/urlnorm"
)

// Learner is the single write path into the pattern store. It records an
// explicit user reassignment and persists the full store afterwards.
type Learner struct {
	patternRepo  out.PatternRepository
	categoryRepo out.CategoryRepository
}

// NewLearner creates the learning entry point. categoryRepo may be nil, in
// which case category ids are accepted without validation.
func NewLearner(patternRepo out.PatternRepository, categoryRepo out.CategoryRepository) *Learner {
	return &Learner{patternRepo: patternRepo, categoryRepo: categoryRepo}
}

// LearnInput describes one explicit reassignment event.
type LearnInput struct {
	TabURL         string    `json:"tab_url"`
	CategoryID     string    `json:"category_id"`
	SessionDomains []string  `json:"session_domains,omitempty"`
	When           time.Time `json:"when,omitempty"` // zero value means now
}

// RecordCorrection applies one learning event: category and time counts are
// incremented, session co-occurrence is appended, and the domain is recorded
// in the category's membership history. Counts never decrease.
func (l *Learner) RecordCorrection(ctx context.Context, input *LearnInput) error {
	key := urlnorm.Domain(input.TabURL)
	if key == "" {
		return apperr.InvalidInput("tab_url", "no usable hostname")
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		return apperr.MissingField("category_id")
	}
	if l.categoryRepo != nil {
		if _, err := l.categoryRepo.GetCategory(ctx, input.CategoryID); err != nil {
			return apperr.InvalidInput("category_id", "unknown category")
		}
	}

	when := input.When
	if when.IsZero() {
		when = time.Now()
	}

	store, err := l.patternRepo.Load(ctx)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "load pattern store", 500)
	}

	sessionDomains := make([]string, 0, len(input.SessionDomains))
	for _, d := range input.SessionDomains {
		if nd := strings.ToLower(strings.TrimPrefix(d, "www.")); nd != "" {
			sessionDomains = append(sessionDomains, nd)
		}
	}

	pattern := store.Pattern(key)
	pattern.CategoryCounts[input.CategoryID]++
	pattern.TimePatterns[domain.TimeOfDayFor(when)]++
	pattern.RecordContext(input.CategoryID, sessionDomains)
	store.RecordMembership(input.CategoryID, key)

	if err := l.patternRepo.Save(ctx, store); err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "save pattern store", 500)
	}

	logger.WithField("domain", key).
		WithField("category", input.CategoryID).
		Info("Recorded classification correction")
	return nil
}
