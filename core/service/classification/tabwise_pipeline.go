package classification

import (
	"context"

	"tabwise_server/core/domain"
)

// =============================================================================
// Classification Pipeline (5-Stage Cascade)
// =============================================================================

// Pipeline runs the classification cascade for one organize run. It is built
// from immutable snapshots (mappings, pattern store, categories) loaded once
// at run start, so classifying N tabs never touches storage.
type Pipeline struct {
	config *PipelineConfig

	mapping  *MappingClassifier
	pattern  *PatternClassifier
	context  *ContextClassifier
	content  *ContentClassifier
	fallback *FallbackClassifier
}

// PipelineDeps holds the per-run snapshots the cascade classifies against.
type PipelineDeps struct {
	// Mappings are the explicit domain -> category overrides.
	Mappings map[string]string

	// Patterns is the learned-pattern store loaded at run start.
	Patterns *domain.PatternStore

	// Categories are the persisted user categories (for keyword matching).
	Categories []domain.Category
}

// NewPipeline creates a cascade over the given snapshots.
func NewPipeline(deps *PipelineDeps, config *PipelineConfig) *Pipeline {
	if config == nil {
		config = DefaultPipelineConfig()
	}
	if deps == nil {
		deps = &PipelineDeps{}
	}
	if deps.Patterns == nil {
		deps.Patterns = domain.NewPatternStore()
	}

	var cats []domain.Category
	if config.RespectUserCategories {
		cats = deps.Categories
	}

	return &Pipeline{
		config:   config,
		mapping:  NewMappingClassifier(deps.Mappings),
		pattern:  NewPatternClassifier(deps.Patterns),
		context:  NewContextClassifier(deps.Patterns),
		content:  NewContentClassifier(cats),
		fallback: NewFallbackClassifier(),
	}
}

// Classify runs the tab through the cascade. It never fails: URL-parse and
// stage errors degrade to the static fallback instead of propagating.
func (p *Pipeline) Classify(ctx context.Context, tctx *domain.TabContext) *domain.ClassificationResult {
	stages := []struct {
		classifier Classifier
		threshold  float64
	}{
		{p.mapping, 0},                         // any hit is confidence 1.0
		{p.pattern, p.config.PatternThreshold}, // > 0.70
		{p.context, p.config.ContextThreshold}, // > 0.60
		{p.content, p.config.ContentThreshold}, // > 0.50
	}

	for _, stage := range stages {
		result, err := stage.classifier.Classify(ctx, tctx)
		if err != nil || result == nil {
			continue
		}
		if result.Confidence > stage.threshold {
			result.Clamp()
			return result
		}
	}

	// Stage 4: static fallback always produces a result.
	result, err := p.fallback.Classify(ctx, tctx)
	if err != nil || result == nil {
		result = &domain.ClassificationResult{
			Category:   domain.CategoryUncategorized,
			Confidence: ConfidenceUncategorized,
			Source:     domain.SourceFallback,
			Reasoning:  "no classifier matched",
		}
	}
	result.Clamp()
	return result
}

// ClassifyAll classifies every tab of a snapshot, filling each TabContext
// with the remaining tabs as its session.
func (p *Pipeline) ClassifyAll(ctx context.Context, tabs []domain.TabSnapshot, tod domain.TimeOfDay) map[int]*domain.ClassificationResult {
	results := make(map[int]*domain.ClassificationResult, len(tabs))
	for i, tab := range tabs {
		session := make([]domain.TabSnapshot, 0, len(tabs)-1)
		session = append(session, tabs[:i]...)
		session = append(session, tabs[i+1:]...)

		results[tab.ID] = p.Classify(ctx, &domain.TabContext{
			Tab:         tab,
			TimeOfDay:   tod,
			SessionTabs: session,
		})
	}
	return results
}
