// Package classification implements the layered tab classification cascade.
//
// 5-Stage Cascade (strict priority order, first stage above its threshold wins):
//
//	Stage 0: Explicit Mapping   → user domain overrides, confidence 1.0
//	Stage 1: Learned Patterns   → per-domain statistics, threshold 0.70
//	Stage 2: Session Context    → vote among co-open tabs, threshold 0.60
//	Stage 3: Content Heuristics → title/URL patterns, threshold 0.50
//	Stage 4: Static Fallback    → built-in domain table, 0.30-0.40
package classification

import (
	"context"

	"tabwise_server/core/domain"
)

// =============================================================================
// Classifier Interface
// =============================================================================

// Classifier is one stage of the cascade. A nil result means the stage has
// no opinion and the pipeline moves on.
type Classifier interface {
	// Name returns the classifier name (for logging and reasoning strings).
	Name() string

	// Stage returns the cascade stage number (0-4).
	Stage() int

	// Classify scores the tab, or returns nil to pass to the next stage.
	Classify(ctx context.Context, tctx *domain.TabContext) (*domain.ClassificationResult, error)
}

// =============================================================================
// Pipeline Configuration
// =============================================================================

// PipelineConfig holds the per-stage acceptance thresholds. A stage result
// is only accepted when its confidence is strictly above the threshold.
type PipelineConfig struct {
	PatternThreshold float64 // Default: 0.70
	ContextThreshold float64 // Default: 0.60
	ContentThreshold float64 // Default: 0.50

	// RespectUserCategories lets the content stage match against the
	// user's category domain/keyword lists before the built-in taxonomy.
	RespectUserCategories bool
}

// DefaultPipelineConfig returns the default thresholds.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		PatternThreshold:      0.70,
		ContextThreshold:      0.60,
		ContentThreshold:      0.50,
		RespectUserCategories: true,
	}
}

// =============================================================================
// Confidence Constants
// =============================================================================

const (
	// ConfidenceMapping is the fixed confidence of an explicit mapping hit.
	ConfidenceMapping = 1.0

	// ConfidencePatternCap bounds the learned-pattern stage.
	ConfidencePatternCap = 0.95

	// ConfidenceContextCap bounds the session-vote stage.
	ConfidenceContextCap = 0.8

	// ConfidenceContentCap bounds the content-heuristic stage.
	ConfidenceContentCap = 0.7

	// ConfidenceUncategorized is returned when every stage passes.
	ConfidenceUncategorized = 0.3
)
