package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/cv-master-ats/internal/models"
)

type PromptBuilder struct {
	language string
}

func NewPromptBuilder(language string) *PromptBuilder {
	language = strings.TrimSpace(language)
	if language == "" {
		language = "English"
	}
	return &PromptBuilder{language: language}
}

// BuildAnalysisPrompt creates the instruction sent next to the attached CV
// for the ATS assessment.
func (pb *PromptBuilder) BuildAnalysisPrompt(profile *models.TargetProfile) string {
	return fmt.Sprintf(`Act as an expert ATS (Applicant Tracking System) and a senior recruiter.

Analyze the attached Curriculum Vitae.

CANDIDATE CONTEXT:
- Target role: %s
- Industry: %s
- Experience level: %s
- Target keywords: %s

TASK:
Evaluate the CV rigorously against standard ATS criteria:
1. Readability and formatting (no complex tables, standard fonts).
2. Content quality (action verbs, quantifiable achievements).
3. Keyword match with the target role.
4. Structural completeness (contact, summary, reverse-chronological experience, education, skills).

Return a detailed analysis as JSON strictly following the provided schema.
All scores are integers from 0 to 100.
Write every text field in %s.`,
		profile.JobTitle, profile.Industry, profile.Level.Label(), keywordHint(profile.Keywords), pb.language)
}

// BuildOptimizationPrompt creates the rewrite instruction. The missing
// keywords from the analysis are passed through verbatim.
func (pb *PromptBuilder) BuildOptimizationPrompt(profile *models.TargetProfile, analysis *models.AnalysisResult) string {
	return fmt.Sprintf(`You are a professional CV writer specialised in ATS optimization.

Your task is to RESTRUCTURE and REWRITE the attached CV to maximise its chances of passing ATS filters for a "%s" position in %s.

REWRITE INSTRUCTIONS:
1. Extract and structure the information as strict JSON.
2. Incorporate the missing keywords that were detected: %s.
3. Rewrite the experience descriptions ("achievements") using strong action verbs (e.g. "Led", "Built", "Optimized") and focus on quantifiable outcomes (data, %% improvement) where possible.
4. Make the professional summary ("professionalSummary") concise, forceful and aligned with a %s profile.
5. Correct spelling and grammar.
6. Remove irrelevant information.
7. Write the whole result in %s.

IMPORTANT:
- Omit the projects section only if the original CV has no projects; include important projects when they exist.
- Split skills into categories (technical, soft, tools, languages).

Return ONLY the JSON object.`,
		profile.JobTitle, profile.Industry, missingKeywords(analysis), profile.Level.Label(), pb.language)
}

func keywordHint(keywords string) string {
	if strings.TrimSpace(keywords) == "" {
		return "none provided, infer them from the target role and industry"
	}
	return keywords
}

func missingKeywords(analysis *models.AnalysisResult) string {
	if analysis == nil || len(analysis.ATSKeywords.Missing) == 0 {
		return "none"
	}
	return strings.Join(analysis.ATSKeywords.Missing, ", ")
}
