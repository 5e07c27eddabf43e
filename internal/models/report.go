package models

import (
	"time"

	"github.com/google/uuid"
)

// Report archives the outcome of a finished session. The uploaded file
// itself is never stored.
type Report struct {
	ID           uuid.UUID          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"session_id"`
	Filename     string             `gorm:"type:text" json:"filename"`
	JobTitle     string             `gorm:"type:text" json:"job_title"`
	Industry     string             `gorm:"type:text" json:"industry"`
	Level        Seniority          `gorm:"type:text" json:"level"`
	OverallScore int                `gorm:"not null" json:"overall_score"`
	Analysis     *AnalysisResult    `gorm:"type:jsonb;serializer:json" json:"analysis"`
	Optimized    *OptimizedDocument `gorm:"type:jsonb;serializer:json" json:"optimized"`
	CreatedAt    time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}
