package services

import "errors"

// Intake errors. These are user-correctable.
var (
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrFileTooLarge    = errors.New("document exceeds the size limit")
	ErrEncoding        = errors.New("document could not be read")
)

var ErrProfileIncomplete = errors.New("job title and industry are required")

// Inference errors.
var (
	ErrMissingCredentials = errors.New("gemini api key is not configured")
	ErrTransport          = errors.New("inference service request failed")
	ErrEmptyResponse      = errors.New("inference service returned an empty response")
	ErrSchemaViolation    = errors.New("inference response does not match the declared schema")
)

// Workflow errors.
var (
	ErrInvalidStep       = errors.New("action is not available in the current step")
	ErrContractViolation = errors.New("workflow prerequisites are missing")
	ErrSessionNotFound   = errors.New("session not found")
)

const (
	msgAnalysisFailed     = "Analysis of the CV failed. Check the API key and that the file is readable, then try again."
	msgOptimizationFailed = "Generating the optimized CV failed. Please try again."
)

// UserMessage turns an intake error into text that can be shown as is.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedType):
		return "Please upload a PDF file so the CV can be read reliably."
	case errors.Is(err, ErrFileTooLarge):
		return "The file must not exceed 5MB."
	case errors.Is(err, ErrEncoding):
		return "The file could not be processed. Please try again."
	case errors.Is(err, ErrProfileIncomplete):
		return "Job title and industry are required."
	default:
		return "Something went wrong. Please try again."
	}
}

// errorKind labels inference failures for logs.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	default:
		return "transport"
	}
}
