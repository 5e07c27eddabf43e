package models

import "strings"

type Seniority string

const (
	SeniorityJunior    Seniority = "Junior"
	SeniorityMid       Seniority = "Mid"
	SenioritySenior    Seniority = "Senior"
	SeniorityExecutive Seniority = "Executive"
)

// Seniorities lists the accepted levels in display order.
var Seniorities = []Seniority{SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityExecutive}

var seniorityLabels = map[Seniority]string{
	SeniorityJunior:    "Junior (0-2 years)",
	SeniorityMid:       "Mid-level (3-5 years)",
	SenioritySenior:    "Senior (5-8 years)",
	SeniorityExecutive: "Executive (10+ years)",
}

// Label returns the human readable form used in prompts and forms.
func (s Seniority) Label() string {
	if label, ok := seniorityLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseSeniority accepts either the canonical name or its label, case
// insensitively. An empty value maps to SeniorityMid.
func ParseSeniority(value string) (Seniority, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return SeniorityMid, true
	}

	for _, level := range Seniorities {
		if strings.EqualFold(value, string(level)) || strings.EqualFold(value, level.Label()) {
			return level, true
		}
	}

	return "", false
}

// TargetProfile is the role a CV is reviewed against. It is frozen once
// accepted by the workflow.
type TargetProfile struct {
	JobTitle string    `json:"jobTitle"`
	Industry string    `json:"industry"`
	Level    Seniority `json:"level"`
	// Keywords may be empty, in which case the model infers them.
	Keywords string `json:"keywords"`
}

type LevelOption struct {
	Value Seniority `json:"value"`
	Label string    `json:"label"`
}

func LevelOptions() []LevelOption {
	options := make([]LevelOption, 0, len(Seniorities))
	for _, level := range Seniorities {
		options = append(options, LevelOption{Value: level, Label: level.Label()})
	}
	return options
}
