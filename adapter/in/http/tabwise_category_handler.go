package http

import (
	"errors"
	"strings"

	"tabwise_server/adapter/out/persistence"
	"tabwise_server/core/domain"
	"tabwise_server/core/port/out"
	"tabwise_server/pkg/apperr"
	"tabwise_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles category configuration endpoints.
type CategoryHandler struct {
	repo out.CategoryRepository
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(repo out.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{repo: repo}
}

// Register registers category and mapping routes.
func (h *CategoryHandler) Register(router fiber.Router) {
	cat := router.Group("/categories")
	cat.Get("/", h.List)
	cat.Post("/", h.Create)
	cat.Get("/:id", h.Get)
	cat.Put("/:id", h.Update)
	cat.Delete("/:id", h.Delete)

	mappings := router.Group("/mappings")
	mappings.Get("/", h.ListMappings)
	mappings.Put("/:domain", h.PutMapping)
	mappings.Delete("/:domain", h.DeleteMapping)
}

// =============================================================================
// Categories
// =============================================================================

// CategoryRequest is the create/update payload.
type CategoryRequest struct {
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Domains  []string `json:"domains"`
	Keywords []string `json:"keywords"`
	Position int      `json:"position"`
}

// List returns all categories in persisted order.
// @Summary List categories
// @Tags Categories
// @Produce json
// @Success 200 {array} domain.Category
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.repo.ListCategories(c.Context())
	if err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "list categories", 500)
	}
	return response.OK(c, categories)
}

// Get returns one category.
// @Summary Get category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} domain.Category
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	cat, err := h.repo.GetCategory(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return apperr.NotFound("category")
		}
		return apperr.Wrap(err, apperr.CodeDatabaseError, "get category", 500)
	}
	return response.OK(c, cat)
}

// Create creates a new user category.
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param request body CategoryRequest true "Category data"
// @Success 201 {object} domain.Category
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperr.MissingField("name")
	}
	cat := &domain.Category{
		Name:     strings.TrimSpace(req.Name),
		Color:    normalizeColor(req.Color),
		Domains:  normalizeDomains(req.Domains),
		Keywords: lowerAll(req.Keywords),
		Position: req.Position,
	}
	if err := h.repo.CreateCategory(c.Context(), cat); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return apperr.AlreadyExists("category")
		}
		return apperr.Wrap(err, apperr.CodeDatabaseError, "create category", 500)
	}
	return response.Created(c, cat)
}

// Update updates a category's name, color, match lists and position.
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body CategoryRequest true "Category data"
// @Success 200 {object} domain.Category
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperr.MissingField("name")
	}
	cat := &domain.Category{
		ID:       c.Params("id"),
		Name:     strings.TrimSpace(req.Name),
		Color:    normalizeColor(req.Color),
		Domains:  normalizeDomains(req.Domains),
		Keywords: lowerAll(req.Keywords),
		Position: req.Position,
	}
	if err := h.repo.UpdateCategory(c.Context(), cat); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return apperr.NotFound("category")
		}
		return apperr.Wrap(err, apperr.CodeDatabaseError, "update category", 500)
	}
	return response.OK(c, cat)
}

// Delete removes a non-system category and its mappings.
// @Summary Delete category
// @Tags Categories
// @Param id path string true "Category ID"
// @Success 204
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.repo.DeleteCategory(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return apperr.NotFound("category")
		}
		return apperr.Wrap(err, apperr.CodeDatabaseError, "delete category", 500)
	}
	return response.NoContent(c)
}

// =============================================================================
// Domain Mappings
// =============================================================================

// MappingRequest binds one domain to a category.
type MappingRequest struct {
	CategoryID string `json:"category_id"`
}

// ListMappings returns all explicit domain -> category overrides.
// @Summary List domain mappings
// @Tags Categories
// @Produce json
// @Success 200 {array} domain.CategoryMapping
// @Router /api/v1/mappings [get]
func (h *CategoryHandler) ListMappings(c *fiber.Ctx) error {
	mappings, err := h.repo.ListMappings(c.Context())
	if err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "list mappings", 500)
	}
	return response.OK(c, mappings)
}

// PutMapping creates or replaces the override for a domain.
// @Summary Put domain mapping
// @Tags Categories
// @Accept json
// @Param domain path string true "Domain"
// @Param request body MappingRequest true "Mapping data"
// @Success 200 {object} domain.CategoryMapping
// @Router /api/v1/mappings/{domain} [put]
func (h *CategoryHandler) PutMapping(c *fiber.Ctx) error {
	var req MappingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		return apperr.MissingField("category_id")
	}
	if _, err := h.repo.GetCategory(c.Context(), req.CategoryID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return apperr.InvalidInput("category_id", "unknown category")
		}
		return apperr.Wrap(err, apperr.CodeDatabaseError, "get category", 500)
	}

	m := &domain.CategoryMapping{
		Domain:     normalizeDomain(c.Params("domain")),
		CategoryID: req.CategoryID,
	}
	if m.Domain == "" {
		return apperr.InvalidInput("domain", "empty domain")
	}
	if err := h.repo.PutMapping(c.Context(), m); err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "put mapping", 500)
	}
	return response.OK(c, m)
}

// DeleteMapping removes the override for a domain.
// @Summary Delete domain mapping
// @Tags Categories
// @Param domain path string true "Domain"
// @Success 204
// @Router /api/v1/mappings/{domain} [delete]
func (h *CategoryHandler) DeleteMapping(c *fiber.Ctx) error {
	key := normalizeDomain(c.Params("domain"))
	if err := h.repo.DeleteMapping(c.Context(), key); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return apperr.NotFound("mapping")
		}
		return apperr.Wrap(err, apperr.CodeDatabaseError, "delete mapping", 500)
	}
	return response.NoContent(c)
}

// =============================================================================
// Helpers
// =============================================================================

// normalizeColor snaps a loose color string onto the closed group-color set.
// Empty is kept as-is; the planner greys unset colors at plan time.
func normalizeColor(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return string(domain.ParseGroupColor(s))
}

func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "www."))
}

func normalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		if nd := normalizeDomain(d); nd != "" {
			out = append(out, nd)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.ToLower(strings.TrimSpace(s)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
