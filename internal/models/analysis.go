package models

type SectionStatus string

const (
	SectionGood     SectionStatus = "good"
	SectionWarning  SectionStatus = "warning"
	SectionCritical SectionStatus = "critical"
)

type SectionAssessment struct {
	Status   SectionStatus `json:"status"`
	Score    int           `json:"score"`
	Feedback []string      `json:"feedback"`
}

type KeywordGap struct {
	Found        []string `json:"found"`
	Missing      []string `json:"missing"`
	DensityScore int      `json:"densityScore"`
}

type Formatting struct {
	IsClean bool     `json:"isClean"`
	Issues  []string `json:"issues"`
}

// AnalysisResult is the ATS assessment returned by the Analyze call.
type AnalysisResult struct {
	OverallScore        int               `json:"overallScore"`
	Summary             string            `json:"summary"`
	ContactInfo         SectionAssessment `json:"contactInfo"`
	ProfessionalSummary SectionAssessment `json:"professionalSummary"`
	Experience          SectionAssessment `json:"experience"`
	Education           SectionAssessment `json:"education"`
	Skills              SectionAssessment `json:"skills"`
	ATSKeywords         KeywordGap        `json:"atsKeywords"`
	Formatting          Formatting        `json:"formatting"`
	Recommendations     []string          `json:"recommendations"`
}
