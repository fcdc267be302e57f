package classification

import (
	"context"
	"testing"
	"time"

	"tabwise_server/core/domain"
)

type memoryPatternRepo struct {
	store *domain.PatternStore
	saves int
}

func (r *memoryPatternRepo) Load(ctx context.Context) (*domain.PatternStore, error) {
	if r.store == nil {
		return domain.NewPatternStore(), nil
	}
	return r.store, nil
}

func (r *memoryPatternRepo) Save(ctx context.Context, store *domain.PatternStore) error {
	r.store = store
	r.saves++
	return nil
}

func TestRecordCorrection(t *testing.T) {
	repo := &memoryPatternRepo{}
	learner := NewLearner(repo, nil)

	when := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC) // morning
	err := learner.RecordCorrection(context.Background(), &LearnInput{
		TabURL:         "https://www.figma.com/file/abc",
		CategoryID:     "design",
		SessionDomains: []string{"www.dribbble.com", "github.com"},
		When:           when,
	})
	if err != nil {
		t.Fatal(err)
	}
	if repo.saves != 1 {
		t.Fatalf("saves = %d, want 1", repo.saves)
	}

	pattern := repo.store.Patterns["figma.com"]
	if pattern == nil {
		t.Fatal("no pattern recorded for figma.com")
	}
	if pattern.CategoryCounts["design"] != 1 {
		t.Errorf("category count = %d, want 1", pattern.CategoryCounts["design"])
	}
	if pattern.TimePatterns[domain.TimeMorning] != 1 {
		t.Errorf("time count = %d, want 1", pattern.TimePatterns[domain.TimeMorning])
	}
	ctxDomains := pattern.ContextDomains["design"]
	if len(ctxDomains) != 2 || ctxDomains[0] != "dribbble.com" {
		t.Errorf("context domains = %v, want normalized session domains", ctxDomains)
	}
	if got := repo.store.CategoryDomains["design"]; len(got) != 1 || got[0] != "figma.com" {
		t.Errorf("membership = %v, want [figma.com]", got)
	}
}

func TestRecordCorrectionCountsOnlyGrow(t *testing.T) {
	repo := &memoryPatternRepo{}
	learner := NewLearner(repo, nil)

	for i := 0; i < 3; i++ {
		err := learner.RecordCorrection(context.Background(), &LearnInput{
			TabURL:     "https://example.com/page",
			CategoryID: "work",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	pattern := repo.store.Patterns["example.com"]
	if pattern.CategoryCounts["work"] != 3 {
		t.Errorf("count = %d, want 3", pattern.CategoryCounts["work"])
	}
	// Membership history stays deduplicated.
	if got := repo.store.CategoryDomains["work"]; len(got) != 1 {
		t.Errorf("membership = %v, want single entry", got)
	}
}

func TestRecordCorrectionValidation(t *testing.T) {
	repo := &memoryPatternRepo{}
	learner := NewLearner(repo, nil)

	tests := []struct {
		name  string
		input *LearnInput
	}{
		{name: "no usable host", input: &LearnInput{TabURL: "not a url", CategoryID: "work"}},
		{name: "empty category", input: &LearnInput{TabURL: "https://example.com", CategoryID: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := learner.RecordCorrection(context.Background(), tt.input); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if repo.saves != 0 {
		t.Errorf("saves = %d, rejected input must not persist", repo.saves)
	}
}
