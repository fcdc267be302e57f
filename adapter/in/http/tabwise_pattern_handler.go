package http

import (
	"sort"

	"tabwise_server/core/domain"
	"tabwise_server/core/port/out"
	"tabwise_server/core/service/classification"
	"tabwise_server/pkg/apperr"
	"tabwise_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PatternHandler exposes the learned-pattern store: one write path for
// explicit corrections, one read path for inspection.
type PatternHandler struct {
	learner     *classification.Learner
	patternRepo out.PatternRepository
}

// NewPatternHandler creates a new PatternHandler.
func NewPatternHandler(learner *classification.Learner, patternRepo out.PatternRepository) *PatternHandler {
	return &PatternHandler{learner: learner, patternRepo: patternRepo}
}

// Register registers pattern routes.
func (h *PatternHandler) Register(router fiber.Router) {
	patterns := router.Group("/patterns")
	patterns.Get("/", h.Get)
	patterns.Get("/stats", h.Stats)
	patterns.Post("/learn", h.Learn)
	patterns.Delete("/", h.Reset)
	patterns.Get("/:domain", h.GetDomain)
}

// PatternStats summarizes the learning state for dashboards.
type PatternStats struct {
	DomainCount    int             `json:"domain_count"`
	TotalLearned   int             `json:"total_learned"`
	CategoryCounts map[string]int  `json:"category_counts"`
	TopDomains     []DomainSummary `json:"top_domains"`
}

// DomainSummary is one row of the top-domains list.
type DomainSummary struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Get returns the full pattern store.
// @Summary Get learned patterns
// @Tags Patterns
// @Produce json
// @Success 200 {object} domain.PatternStore
// @Router /api/v1/patterns [get]
func (h *PatternHandler) Get(c *fiber.Ctx) error {
	store, err := h.patternRepo.Load(c.Context())
	if err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "load pattern store", 500)
	}
	return response.OK(c, store)
}

// GetDomain returns the learned pattern for a single domain.
// @Summary Get learned pattern for a domain
// @Tags Patterns
// @Produce json
// @Param domain path string true "Registrable domain"
// @Success 200 {object} domain.UserPattern
// @Router /api/v1/patterns/{domain} [get]
func (h *PatternHandler) GetDomain(c *fiber.Ctx) error {
	store, err := h.patternRepo.Load(c.Context())
	if err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "load pattern store", 500)
	}
	p, ok := store.Patterns[normalizeDomain(c.Params("domain"))]
	if !ok {
		return apperr.NotFound("pattern")
	}
	return response.OK(c, p)
}

// Stats aggregates the store into dashboard-shaped numbers: per-category
// correction totals and the ten most-corrected domains.
// @Summary Get pattern statistics
// @Tags Patterns
// @Produce json
// @Success 200 {object} PatternStats
// @Router /api/v1/patterns/stats [get]
func (h *PatternHandler) Stats(c *fiber.Ctx) error {
	store, err := h.patternRepo.Load(c.Context())
	if err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "load pattern store", 500)
	}

	stats := PatternStats{
		DomainCount:    len(store.Patterns),
		CategoryCounts: make(map[string]int),
	}
	for name, p := range store.Patterns {
		total := p.TotalCount()
		stats.TotalLearned += total
		for category, n := range p.CategoryCounts {
			stats.CategoryCounts[category] += n
		}
		stats.TopDomains = append(stats.TopDomains, DomainSummary{Domain: name, Count: total})
	}
	sort.Slice(stats.TopDomains, func(i, j int) bool {
		if stats.TopDomains[i].Count != stats.TopDomains[j].Count {
			return stats.TopDomains[i].Count > stats.TopDomains[j].Count
		}
		return stats.TopDomains[i].Domain < stats.TopDomains[j].Domain
	})
	if len(stats.TopDomains) > 10 {
		stats.TopDomains = stats.TopDomains[:10]
	}
	return response.OK(c, stats)
}

// Learn records one explicit user reassignment.
// @Summary Record classification correction
// @Tags Patterns
// @Accept json
// @Param request body classification.LearnInput true "Correction event"
// @Success 204
// @Router /api/v1/patterns/learn [post]
func (h *PatternHandler) Learn(c *fiber.Ctx) error {
	var input classification.LearnInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if err := h.learner.RecordCorrection(c.Context(), &input); err != nil {
		return err
	}
	return response.NoContent(c)
}

// Reset drops everything the engine has learned.
// @Summary Reset learned patterns
// @Tags Patterns
// @Success 204
// @Router /api/v1/patterns [delete]
func (h *PatternHandler) Reset(c *fiber.Ctx) error {
	if err := h.patternRepo.Save(c.Context(), domain.NewPatternStore()); err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "reset pattern store", 500)
	}
	return response.NoContent(c)
}
