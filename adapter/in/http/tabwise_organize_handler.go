package http

import (
	"tabwise_server/core/domain"
	"tabwise_server/core/service/organize"
	"tabwise_server/pkg/apperr"
	"tabwise_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OrganizeHandler handles organize / preview / undo API endpoints.
type OrganizeHandler struct {
	coordinator *organize.Coordinator
}

// NewOrganizeHandler creates a new OrganizeHandler.
func NewOrganizeHandler(coordinator *organize.Coordinator) *OrganizeHandler {
	return &OrganizeHandler{coordinator: coordinator}
}

// Register registers organize routes.
func (h *OrganizeHandler) Register(router fiber.Router) {
	org := router.Group("/organize")
	org.Post("/", h.Organize)
	org.Post("/preview", h.Preview)
	org.Post("/undo", h.Undo)
}

// parseConfig decodes the request body over the defaults, so an empty or
// partial body still yields a usable config.
func parseConfig(c *fiber.Ctx) (domain.SmartOrganizeConfig, error) {
	cfg := domain.DefaultOrganizeConfig()
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&cfg); err != nil {
			return cfg, apperr.BadRequest("invalid organize config: " + err.Error())
		}
	}
	if cfg.MinGroupSize < 1 {
		cfg.MinGroupSize = domain.DefaultOrganizeConfig().MinGroupSize
	}
	return cfg, nil
}

// Organize runs one full organize pass against the current window.
// @Summary Organize tabs
// @Tags Organize
// @Accept json
// @Produce json
// @Param request body domain.SmartOrganizeConfig false "Run config"
// @Success 200 {object} domain.ExecutionResult
// @Router /api/v1/organize [post]
func (h *OrganizeHandler) Organize(c *fiber.Ctx) error {
	cfg, err := parseConfig(c)
	if err != nil {
		return err
	}

	result := h.coordinator.Organize(c.Context(), cfg)
	if !result.Success && result.Message == organize.BusyMessage {
		return c.Status(fiber.StatusConflict).JSON(response.Response{
			Success: false,
			Error:   &response.ErrorInfo{Code: apperr.CodeOrganizeBusy, Message: result.Message},
			Data:    result,
		})
	}
	return response.OK(c, result)
}

// Preview computes the plan and duplicate set without touching any tab.
// @Summary Preview organize plan
// @Tags Organize
// @Accept json
// @Produce json
// @Param request body domain.SmartOrganizeConfig false "Run config"
// @Success 200 {object} PreviewResponse
// @Router /api/v1/organize/preview [post]
func (h *OrganizeHandler) Preview(c *fiber.Ctx) error {
	cfg, err := parseConfig(c)
	if err != nil {
		return err
	}

	plan, duplicates, err := h.coordinator.Preview(c.Context(), cfg)
	if err != nil {
		return err
	}
	return response.OK(c, PreviewResponse{
		Groups:     plan.Groups,
		Duplicates: duplicates,
		TabCount:   plan.TabCount(),
	})
}

// Undo reverses the most recent organize run.
// @Summary Undo last organize
// @Tags Organize
// @Produce json
// @Success 200 {object} domain.ExecutionResult
// @Router /api/v1/organize/undo [post]
func (h *OrganizeHandler) Undo(c *fiber.Ctx) error {
	result := h.coordinator.Undo(c.Context())
	if !result.Success && result.Message == organize.BusyMessage {
		return c.Status(fiber.StatusConflict).JSON(response.Response{
			Success: false,
			Error:   &response.ErrorInfo{Code: apperr.CodeOrganizeBusy, Message: result.Message},
			Data:    result,
		})
	}
	return response.OK(c, result)
}

// PreviewResponse is the dry-run payload: the plan plus the duplicates that
// an actual run would close.
type PreviewResponse struct {
	Groups     []domain.PlannedGroup   `json:"groups"`
	Duplicates []domain.DuplicateGroup `json:"duplicates"`
	TabCount   int                     `json:"tab_count"`
}
