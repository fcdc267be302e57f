package domain

// ClassificationSource indicates which cascade stage produced a result.
type ClassificationSource string

const (
	SourceMapping  ClassificationSource = "mapping"  // explicit user mapping
	SourcePattern  ClassificationSource = "pattern"  // learned per-domain statistics
	SourceContext  ClassificationSource = "context"  // session co-occurrence vote
	SourceContent  ClassificationSource = "content"  // title/URL heuristics
	SourceFallback ClassificationSource = "fallback" // static domain table
)

// Alternative is a ranked runner-up category from the learned-pattern stage.
type Alternative struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// ClassificationResult is the outcome of classifying one tab. Confidence is
// always within [0,1]; explicit mappings are exactly 1.0.
type ClassificationResult struct {
	Category     string               `json:"category"`
	Confidence   float64              `json:"confidence"`
	Source       ClassificationSource `json:"source"`
	Reasoning    string               `json:"reasoning"`
	Alternatives []Alternative        `json:"alternatives,omitempty"` // at most 3
}

// Clamp forces confidence into [0,1]. Classifiers compute bounded scores
// already; this is the final guard before results leave the pipeline.
func (r *ClassificationResult) Clamp() {
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
}
