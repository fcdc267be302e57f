package classification

import (
	"context"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// MappingClassifier resolves explicit user domain -> category overrides.
// A hit is always confidence 1.0 and ends the cascade.
type MappingClassifier struct {
	mappings map[string]string
}

// NewMappingClassifier creates a classifier over a mapping snapshot.
func NewMappingClassifier(mappings map[string]string) *MappingClassifier {
	if mappings == nil {
		mappings = make(map[string]string)
	}
	return &MappingClassifier{mappings: mappings}
}

// Name returns the classifier name.
func (c *MappingClassifier) Name() string {
	return "mapping"
}

// Stage returns the cascade stage number.
func (c *MappingClassifier) Stage() int {
	return 0
}

// Classify checks the tab's domain against the override table.
func (c *MappingClassifier) Classify(ctx context.Context, tctx *domain.TabContext) (*domain.ClassificationResult, error) {
	key := urlnorm.Domain(tctx.Tab.URL)
	if key == "" {
		return nil, nil
	}

	categoryID, ok := c.mappings[key]
	if !ok {
		return nil, nil
	}

	return &domain.ClassificationResult{
		Category:   categoryID,
		Confidence: ConfidenceMapping,
		Source:     domain.SourceMapping,
		Reasoning:  "explicit mapping for " + key,
	}, nil
}
