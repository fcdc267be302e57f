package classification

import (
	"context"
	"testing"

	"tabwise_server/core/domain"
)

// TestContentKeywordBestHitWins verifies the keyword scan scores every user
// category and picks the one with the most hits, not the first with any hit.
func TestContentKeywordBestHitWins(t *testing.T) {
	c := NewContentClassifier([]domain.Category{
		{ID: "ops", Name: "Ops", Keywords: []string{"budget"}},
		{ID: "finance", Name: "Finance", Keywords: []string{"budget", "forecast", "quarterly"}},
	})

	result, err := c.Classify(context.Background(), tabCtx(
		"https://example.com/report",
		"Quarterly budget forecast review"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("got nil result, want a keyword match")
	}
	if result.Category != "finance" {
		t.Errorf("category = %q, want %q", result.Category, "finance")
	}
	if result.Confidence != ConfidenceContentCap {
		t.Errorf("confidence = %v, want cap %v", result.Confidence, ConfidenceContentCap)
	}
}

// TestContentKeywordTieGoesToFirst keeps list order as the tie-break when two
// categories score the same hit count.
func TestContentKeywordTieGoesToFirst(t *testing.T) {
	c := NewContentClassifier([]domain.Category{
		{ID: "ops", Name: "Ops", Keywords: []string{"budget"}},
		{ID: "finance", Name: "Finance", Keywords: []string{"budget"}},
	})

	result, err := c.Classify(context.Background(), tabCtx(
		"https://example.com/", "Budget meeting notes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Category != "ops" {
		t.Fatalf("result = %+v, want category ops", result)
	}
}
