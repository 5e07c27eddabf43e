package models

type Contact struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Location  string `json:"location"`
	Portfolio string `json:"portfolio,omitempty"`
}

type SkillSet struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Tools     []string `json:"tools"`
	Languages []string `json:"languages"`
}

type ExperienceEntry struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Achievements []string `json:"achievements"`
}

type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Location    string `json:"location"`
	Year        string `json:"year"`
}

type ProjectEntry struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
}

type StructuredResume struct {
	FullName            string            `json:"fullName"`
	Title               string            `json:"title"`
	Contact             Contact           `json:"contact"`
	ProfessionalSummary string            `json:"professionalSummary"`
	Skills              SkillSet          `json:"skills"`
	Experience          []ExperienceEntry `json:"experience"`
	Education           []EducationEntry  `json:"education"`
	Projects            []ProjectEntry    `json:"projects,omitempty"`
}

// OptimizedDocument is the rewritten CV returned by the Optimize call.
type OptimizedDocument struct {
	StructuredContent StructuredResume `json:"structuredContent"`
}
