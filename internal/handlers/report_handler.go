package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-master-ats/internal/models"
	"alfredoptarigan/cv-master-ats/internal/repositories"
)

const (
	defaultReportListLimit = 20
	maxReportListLimit     = 100
)

// ReportHandler serves archived reports. A nil repository means the
// archive is disabled and every lookup answers 404.
type ReportHandler struct {
	reportRepo repositories.ReportRepository
}

func NewReportHandler(reportRepo repositories.ReportRepository) *ReportHandler {
	return &ReportHandler{reportRepo: reportRepo}
}

// HandleList handles GET /reports
func (h *ReportHandler) HandleList(c *fiber.Ctx) error {
	if h.reportRepo == nil {
		return c.JSON([]models.ReportSummary{})
	}

	limit := c.QueryInt("limit", defaultReportListLimit)
	if limit <= 0 {
		limit = defaultReportListLimit
	}
	if limit > maxReportListLimit {
		limit = maxReportListLimit
	}

	reports, err := h.reportRepo.FindRecent(limit)
	if err != nil {
		return respondError(c, err, "")
	}

	summaries := make([]models.ReportSummary, 0, len(reports))
	for _, report := range reports {
		summaries = append(summaries, models.ReportSummary{
			ID:           report.ID.String(),
			Filename:     report.Filename,
			JobTitle:     report.JobTitle,
			OverallScore: report.OverallScore,
			ScoreBand:    models.BandFor(report.OverallScore),
		})
	}
	return c.JSON(summaries)
}

// HandleGet handles GET /reports/:id
func (h *ReportHandler) HandleGet(c *fiber.Ctx) error {
	report, err := h.find(c)
	if err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(report)
}

// HandleExport handles GET /reports/:id/export
func (h *ReportHandler) HandleExport(c *fiber.Ctx) error {
	report, err := h.find(c)
	if err != nil {
		return respondError(c, err, "")
	}
	if report.Optimized == nil {
		return respondError(c, repositories.ErrReportNotFound, "")
	}
	return sendPlainText(c, report.Optimized)
}

func (h *ReportHandler) find(c *fiber.Ctx) (*models.Report, error) {
	if h.reportRepo == nil {
		return nil, repositories.ErrReportNotFound
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, repositories.ErrReportNotFound
	}
	return h.reportRepo.FindByID(id)
}
