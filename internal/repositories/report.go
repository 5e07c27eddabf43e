package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-master-ats/internal/models"
)

var ErrReportNotFound = errors.New("report not found")

type ReportRepository interface {
	Create(report *models.Report) error
	FindByID(id uuid.UUID) (*models.Report, error)
	FindRecent(limit int) ([]models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// Create implements ReportRepository.
func (r *reportRepository) Create(report *models.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// FindByID implements ReportRepository.
func (r *reportRepository) FindByID(id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}

		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}

// FindRecent implements ReportRepository. Only the summary columns are
// loaded.
func (r *reportRepository) FindRecent(limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 20
	}

	var reports []models.Report
	err := r.db.
		Select("id", "session_id", "filename", "job_title", "industry", "level", "overall_score", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find recent reports: %w", err)
	}

	return reports, nil
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}
