package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"google.golang.org/genai"
)

var (
	scoreMin = 0.0
	scoreMax = 100.0
)

func stringSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func stringListSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: description}
}

func scoreSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeInteger, Minimum: &scoreMin, Maximum: &scoreMax, Description: description}
}

func sectionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"status":   {Type: genai.TypeString, Enum: []string{"good", "warning", "critical"}},
			"score":    scoreSchema(""),
			"feedback": stringListSchema(""),
		},
		Required: []string{"status", "score", "feedback"},
	}
}

// AnalysisSchema is the response shape declared for the Analyze call.
func AnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"overallScore":        scoreSchema("Overall ATS score from 0 to 100"),
			"summary":             stringSchema("Executive summary of the CV diagnosis"),
			"contactInfo":         sectionSchema(),
			"professionalSummary": sectionSchema(),
			"experience":          sectionSchema(),
			"education":           sectionSchema(),
			"skills":              sectionSchema(),
			"atsKeywords": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"found":        stringListSchema(""),
					"missing":      stringListSchema(""),
					"densityScore": scoreSchema(""),
				},
				Required: []string{"found", "missing", "densityScore"},
			},
			"formatting": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"isClean": {Type: genai.TypeBoolean},
					"issues":  stringListSchema(""),
				},
				Required: []string{"isClean", "issues"},
			},
			"recommendations": stringListSchema("Concrete actions to improve the CV"),
		},
		Required: []string{
			"overallScore", "summary", "contactInfo", "professionalSummary", "experience",
			"education", "skills", "atsKeywords", "formatting", "recommendations",
		},
	}
}

// OptimizedSchema is the response shape declared for the Optimize call.
func OptimizedSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"fullName": stringSchema(""),
			"title":    stringSchema("Professional title optimized for the role"),
			"contact": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"email":     stringSchema(""),
					"phone":     stringSchema(""),
					"linkedin":  stringSchema(""),
					"location":  stringSchema(""),
					"portfolio": stringSchema(""),
				},
				Required: []string{"email", "phone"},
			},
			"professionalSummary": stringSchema("Optimized professional profile, 3-4 lines"),
			"skills": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"technical": stringListSchema(""),
					"soft":      stringListSchema(""),
					"tools":     stringListSchema(""),
					"languages": stringListSchema(""),
				},
			},
			"experience": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"company":      stringSchema(""),
						"position":     stringSchema(""),
						"location":     stringSchema(""),
						"startDate":    stringSchema(""),
						"endDate":      stringSchema(""),
						"achievements": stringListSchema("Quantified achievements and key responsibilities starting with action verbs"),
					},
					Required: []string{"company", "position", "achievements"},
				},
			},
			"education": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"institution": stringSchema(""),
						"degree":      stringSchema(""),
						"location":    stringSchema(""),
						"year":        stringSchema(""),
					},
					Required: []string{"institution", "degree"},
				},
			},
			"projects": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":         stringSchema(""),
						"description":  stringSchema(""),
						"technologies": stringSchema(""),
					},
					Required: []string{"name"},
				},
			},
		},
		Required: []string{"fullName", "title", "contact", "professionalSummary", "experience", "education", "skills"},
	}
}

// decodeWithSchema parses raw model output, checks it against schema and
// only then decodes it into target.
func decodeWithSchema(raw string, schema *genai.Schema, target any) error {
	cleaned := []byte(extractJSON(raw))

	var generic any
	if err := json.Unmarshal(cleaned, &generic); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrSchemaViolation, err)
	}

	if err := validateValue(schema, generic, "$"); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	dec := json.NewDecoder(bytes.NewReader(cleaned))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	return nil
}

func validateValue(schema *genai.Schema, value any, path string) error {
	if schema == nil {
		return nil
	}

	if value == nil {
		if schema.Nullable != nil && *schema.Nullable {
			return nil
		}
		return fmt.Errorf("%s: unexpected null", path)
	}

	switch schema.Type {
	case genai.TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object", path)
		}
		for _, key := range schema.Required {
			if _, present := obj[key]; !present {
				return fmt.Errorf("%s.%s: required field missing", path, key)
			}
		}
		for key, prop := range schema.Properties {
			v, present := obj[key]
			if !present || (v == nil && !slices.Contains(schema.Required, key)) {
				continue
			}
			if err := validateValue(prop, v, path+"."+key); err != nil {
				return err
			}
		}

	case genai.TypeArray:
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array", path)
		}
		for i, item := range items {
			if err := validateValue(schema.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case genai.TypeString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected string", path)
		}
		if len(schema.Enum) > 0 && !slices.Contains(schema.Enum, s) {
			return fmt.Errorf("%s: %q is not one of %s", path, s, strings.Join(schema.Enum, ", "))
		}

	case genai.TypeInteger, genai.TypeNumber:
		n, ok := value.(float64)
		if !ok {
			return fmt.Errorf("%s: expected number", path)
		}
		if schema.Type == genai.TypeInteger && n != math.Trunc(n) {
			return fmt.Errorf("%s: expected integer, got %v", path, n)
		}
		if schema.Minimum != nil && n < *schema.Minimum {
			return fmt.Errorf("%s: %v is below %v", path, n, *schema.Minimum)
		}
		if schema.Maximum != nil && n > *schema.Maximum {
			return fmt.Errorf("%s: %v is above %v", path, n, *schema.Maximum)
		}

	case genai.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s: expected boolean", path)
		}
	}

	return nil
}

// extractJSON strips markdown fences and surrounding prose a model may add.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}
