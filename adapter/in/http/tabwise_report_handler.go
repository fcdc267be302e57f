package http

import (
	"tabwise_server/core/port/out"
	"tabwise_server/pkg/apperr"
	"tabwise_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves archived organize-run reports.
type ReportHandler struct {
	repo out.ReportRepository
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(repo out.ReportRepository) *ReportHandler {
	return &ReportHandler{repo: repo}
}

// Register registers report routes.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/reports", h.List)
}

// List returns the most recent organize reports, newest first.
// @Summary List organize reports
// @Tags Reports
// @Produce json
// @Param limit query int false "Limit (default 20, max 100)"
// @Success 200 {array} out.OrganizeReport
// @Router /api/v1/reports [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	limit := response.GetLimit(c, 20, 100)
	reports, err := h.repo.ListReports(c.Context(), limit)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeDatabaseError, "list reports", 500)
	}
	return response.OKWithMeta(c, reports, &response.Meta{
		Total:   len(reports),
		Limit:   limit,
		HasMore: len(reports) == limit,
	})
}
