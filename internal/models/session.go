package models

import (
	"time"

	"github.com/google/uuid"
)

type Step string

const (
	StepUpload     Step = "upload"
	StepProfile    Step = "profile"
	StepAnalyzing  Step = "analyzing"
	StepResults    Step = "results"
	StepOptimizing Step = "optimizing"
	StepDone       Step = "done"
)

// Steps lists every workflow step in order.
var Steps = []Step{StepUpload, StepProfile, StepAnalyzing, StepResults, StepOptimizing, StepDone}

func (s Step) index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageCurrent   StageStatus = "current"
	StagePending   StageStatus = "pending"
)

// Stage is one entry of the progress indicator shown to the user.
type Stage struct {
	Step   Step        `json:"step"`
	Status StageStatus `json:"status"`
}

var visibleStages = []Step{StepUpload, StepProfile, StepResults, StepDone}

// Progress reports the indicator state for the given step. The loading
// steps count as the stage they lead to.
func Progress(current Step) []Stage {
	effective := current
	switch current {
	case StepAnalyzing:
		effective = StepResults
	case StepOptimizing:
		effective = StepDone
	}

	stages := make([]Stage, 0, len(visibleStages))
	for _, step := range visibleStages {
		status := StagePending
		switch {
		case step.index() < effective.index():
			status = StageCompleted
		case step == effective:
			status = StageCurrent
		}
		stages = append(stages, Stage{Step: step, Status: status})
	}
	return stages
}

type ScoreBand string

const (
	ScoreLow    ScoreBand = "low"
	ScoreMedium ScoreBand = "medium"
	ScoreHigh   ScoreBand = "high"
)

// BandFor buckets a 0-100 score the way the results gauge colours it.
func BandFor(score int) ScoreBand {
	switch {
	case score > 75:
		return ScoreHigh
	case score > 50:
		return ScoreMedium
	default:
		return ScoreLow
	}
}

// SessionState is a read-only copy of a workflow session.
type SessionState struct {
	ID         uuid.UUID          `json:"id"`
	Step       Step               `json:"step"`
	Generation uint64             `json:"generation"`
	Document   *Document          `json:"document,omitempty"`
	Profile    *TargetProfile     `json:"profile,omitempty"`
	Analysis   *AnalysisResult    `json:"analysis,omitempty"`
	Optimized  *OptimizedDocument `json:"optimized,omitempty"`
	Error      string             `json:"error,omitempty"`
	ReportID   string             `json:"report_id,omitempty"`
	Progress   []Stage            `json:"progress"`
	ScoreBand  ScoreBand          `json:"score_band,omitempty"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
