package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/cv-master-ats/internal/models"
)

// BuildProfile validates the submitted fields and freezes them into a
// TargetProfile. An empty keyword hint is kept as is.
func BuildProfile(req models.ProfileRequest) (*models.TargetProfile, error) {
	jobTitle := strings.TrimSpace(req.JobTitle)
	industry := strings.TrimSpace(req.Industry)
	if jobTitle == "" || industry == "" {
		return nil, ErrProfileIncomplete
	}

	level, ok := models.ParseSeniority(req.Level)
	if !ok {
		return nil, fmt.Errorf("%w: unknown level %q", ErrProfileIncomplete, req.Level)
	}

	return &models.TargetProfile{
		JobTitle: jobTitle,
		Industry: industry,
		Level:    level,
		Keywords: strings.TrimSpace(req.Keywords),
	}, nil
}
