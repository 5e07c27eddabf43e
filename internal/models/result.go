package models

type UploadRequest struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	// Data is base64 content, optionally as a data URL.
	Data string `json:"data"`
}

type ProfileRequest struct {
	JobTitle string `json:"jobTitle"`
	Industry string `json:"industry"`
	Level    string `json:"level"`
	Keywords string `json:"keywords"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Step  Step   `json:"step,omitempty"`
}

type ReportSummary struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	JobTitle     string    `json:"job_title"`
	OverallScore int       `json:"overall_score"`
	ScoreBand    ScoreBand `json:"score_band"`
}
