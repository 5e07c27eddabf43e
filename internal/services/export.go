package services

import (
	"strings"

	"alfredoptarigan/cv-master-ats/internal/models"
)

// ExportFilename is the attachment name offered for the plain-text CV.
const ExportFilename = "CV_Optimized.txt"

// RenderPlainText lays out an optimized CV as plain text. Empty sections
// are left out.
func RenderPlainText(doc *models.OptimizedDocument) string {
	if doc == nil {
		return ""
	}
	cv := doc.StructuredContent

	var b strings.Builder

	writeLine(&b, strings.ToUpper(strings.TrimSpace(cv.FullName)))
	writeLine(&b, cv.Title)
	writeLine(&b, joinNonEmpty(" | ",
		cv.Contact.Email,
		cv.Contact.Phone,
		cv.Contact.Location,
		cv.Contact.LinkedIn,
		cv.Contact.Portfolio,
	))

	if summary := strings.TrimSpace(cv.ProfessionalSummary); summary != "" {
		writeHeading(&b, "PROFILE")
		writeLine(&b, summary)
	}

	if len(cv.Experience) > 0 {
		writeHeading(&b, "EXPERIENCE")
		for i, exp := range cv.Experience {
			if i > 0 {
				b.WriteString("\n")
			}
			writeLine(&b, joinNonEmpty(" - ", exp.Position, exp.Company))
			writeLine(&b, joinNonEmpty(" | ", dateRange(exp.StartDate, exp.EndDate), exp.Location))
			for _, achievement := range exp.Achievements {
				if achievement = strings.TrimSpace(achievement); achievement != "" {
					writeLine(&b, "• "+achievement)
				}
			}
		}
	}

	if len(cv.Education) > 0 {
		writeHeading(&b, "EDUCATION")
		for _, edu := range cv.Education {
			writeLine(&b, joinNonEmpty(" - ", edu.Degree, edu.Institution))
			writeLine(&b, joinNonEmpty(" | ", edu.Year, edu.Location))
		}
	}

	skills := []struct {
		label  string
		values []string
	}{
		{"Technical", cv.Skills.Technical},
		{"Tools", cv.Skills.Tools},
		{"Soft skills", cv.Skills.Soft},
		{"Languages", cv.Skills.Languages},
	}
	headingWritten := false
	for _, group := range skills {
		line := joinNonEmpty(", ", group.values...)
		if line == "" {
			continue
		}
		if !headingWritten {
			writeHeading(&b, "SKILLS")
			headingWritten = true
		}
		writeLine(&b, group.label+": "+line)
	}

	if len(cv.Projects) > 0 {
		writeHeading(&b, "PROJECTS")
		for _, project := range cv.Projects {
			writeLine(&b, project.Name)
			writeLine(&b, project.Description)
			if tech := strings.TrimSpace(project.Technologies); tech != "" {
				writeLine(&b, "Technologies: "+tech)
			}
		}
	}

	return b.String()
}

func writeHeading(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(title)))
	b.WriteString("\n")
}

func writeLine(b *strings.Builder, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	b.WriteString(line)
	b.WriteString("\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start + " - Present"
	default:
		return end
	}
}
