package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"

	"alfredoptarigan/cv-master-ats/internal/models"
)

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModelClient struct {
	responses []string
	errs      []error
	calls     []generateCall
}

func (f *fakeModelClient) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, generateCall{model: model, contents: contents, config: config})

	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}

	text := ""
	if idx < len(f.responses) {
		text = f.responses[idx]
	} else if len(f.responses) > 0 {
		text = f.responses[len(f.responses)-1]
	}

	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}, nil
}

func testDocument() *models.Document {
	data := []byte("%PDF-1.4 test")
	return &models.Document{
		Filename:  "cv.pdf",
		MediaType: models.MediaTypePDF,
		Size:      int64(len(data)),
		Payload:   base64.StdEncoding.EncodeToString(data),
	}
}

func testProfile() *models.TargetProfile {
	return &models.TargetProfile{
		JobTitle: "Backend Engineer",
		Industry: "Fintech",
		Level:    models.SenioritySenior,
	}
}

func testGemini(client modelClient, attempts int, log *zap.Logger) *geminiService {
	return newGeminiService(client, GeminiOptions{
		Model:               "gemini-test",
		Timeout:             time.Second,
		MaxAttempts:         attempts,
		RetryDelay:          time.Millisecond,
		AnalyzeTemperature:  genai.Ptr[float32](0.2),
		OptimizeTemperature: genai.Ptr[float32](0.4),
	}, log)
}

func skipWaits(t *testing.T) {
	t.Helper()
	original := waitFor
	waitFor = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { waitFor = original })
}

func TestAnalyzeSendsDocumentInline(t *testing.T) {
	client := &fakeModelClient{responses: []string{analysisJSON}}
	g := testGemini(client, 1, nil)

	result, err := g.Analyze(context.Background(), testDocument(), testProfile())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.OverallScore != 72 || result.Experience.Status != models.SectionGood {
		t.Fatalf("unexpected result %+v", result)
	}

	if len(client.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(client.calls))
	}
	call := client.calls[0]
	if call.model != "gemini-test" {
		t.Fatalf("unexpected model %q", call.model)
	}

	parts := call.contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil {
		t.Fatalf("expected inline document and prompt, got %+v", parts)
	}
	if parts[0].InlineData.MIMEType != models.MediaTypePDF {
		t.Fatalf("unexpected mime type %q", parts[0].InlineData.MIMEType)
	}
	if !bytes.Equal(parts[0].InlineData.Data, []byte("%PDF-1.4 test")) {
		t.Fatalf("document bytes were not passed through")
	}
	for _, want := range []string{"Backend Engineer", "Fintech", "Senior (5-8 years)", "infer them from the target role"} {
		if !strings.Contains(parts[1].Text, want) {
			t.Fatalf("prompt is missing %q", want)
		}
	}

	if call.config.ResponseMIMEType != "application/json" || call.config.ResponseSchema == nil {
		t.Fatalf("expected structured output config, got %+v", call.config)
	}
	if call.config.Temperature == nil || *call.config.Temperature != 0.2 {
		t.Fatalf("expected analyze temperature 0.2")
	}
}

func TestOptimizePassesMissingKeywords(t *testing.T) {
	client := &fakeModelClient{responses: []string{"```json\n" + optimizedJSON + "\n```"}}
	g := testGemini(client, 1, nil)

	doc, err := g.Optimize(context.Background(), testDocument(), testProfile(), sampleAnalysis(t))
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if doc.StructuredContent.FullName != "Jane Doe" || len(doc.StructuredContent.Projects) != 0 {
		t.Fatalf("unexpected document %+v", doc.StructuredContent)
	}

	call := client.calls[0]
	if !strings.Contains(call.contents[0].Parts[1].Text, "Kubernetes, Terraform") {
		t.Fatalf("expected missing keywords in the prompt")
	}
	if call.config.Temperature == nil || *call.config.Temperature != 0.4 {
		t.Fatalf("expected optimize temperature 0.4")
	}
}

func TestAnalyzeEmptyResponseIsNotRetried(t *testing.T) {
	skipWaits(t)
	client := &fakeModelClient{responses: []string{"   "}}
	g := testGemini(client, 3, nil)

	_, err := g.Analyze(context.Background(), testDocument(), testProfile())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(client.calls))
	}
}

func TestAnalyzeSchemaViolationIsNotRetried(t *testing.T) {
	skipWaits(t)
	core, logs := observer.New(zapcore.DebugLevel)
	client := &fakeModelClient{responses: []string{`{"overallScore": 72}`}}
	g := testGemini(client, 3, zap.New(core))

	_, err := g.Analyze(context.Background(), testDocument(), testProfile())
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(client.calls))
	}

	failures := logs.FilterMessage("gemini call failed").All()
	if len(failures) != 1 {
		t.Fatalf("expected one failure log, got %d", len(failures))
	}
	if kind := failures[0].ContextMap()["error_kind"]; kind != "schema_violation" {
		t.Fatalf("expected schema_violation kind, got %v", kind)
	}
}

func TestTemporaryErrorsAreRetried(t *testing.T) {
	skipWaits(t)
	client := &fakeModelClient{
		errs:      []error{genai.APIError{Code: 503}, genai.APIError{Code: 429}},
		responses: []string{"", "", analysisJSON},
	}
	g := testGemini(client, 3, nil)

	result, err := g.Analyze(context.Background(), testDocument(), testProfile())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.OverallScore != 72 {
		t.Fatalf("unexpected score %d", result.OverallScore)
	}
	if len(client.calls) != 3 {
		t.Fatalf("expected three attempts, got %d", len(client.calls))
	}
}

func TestRetriesStopAtAttemptLimit(t *testing.T) {
	skipWaits(t)
	client := &fakeModelClient{errs: []error{genai.APIError{Code: 500}, genai.APIError{Code: 500}, genai.APIError{Code: 500}}}
	g := testGemini(client, 2, nil)

	_, err := g.Analyze(context.Background(), testDocument(), testProfile())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected two attempts, got %d", len(client.calls))
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	skipWaits(t)
	client := &fakeModelClient{errs: []error{genai.APIError{Code: 400, Message: "bad request"}}}
	g := testGemini(client, 3, nil)

	_, err := g.Analyze(context.Background(), testDocument(), testProfile())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(client.calls))
	}
}

func TestDefaultPolicyIsSingleAttempt(t *testing.T) {
	client := &fakeModelClient{errs: []error{genai.APIError{Code: 503}}}
	g := newGeminiService(client, GeminiOptions{}, nil)

	if _, err := g.Analyze(context.Background(), testDocument(), testProfile()); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(client.calls))
	}
	if g.modelName != defaultModel || g.timeout != defaultTimeout {
		t.Fatalf("expected defaults, got model %q timeout %s", g.modelName, g.timeout)
	}
}

func TestUnsetTemperaturesUseDefaults(t *testing.T) {
	client := &fakeModelClient{responses: []string{analysisJSON, optimizedJSON}}
	g := newGeminiService(client, GeminiOptions{}, nil)

	if _, err := g.Analyze(context.Background(), testDocument(), testProfile()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, err := g.Optimize(context.Background(), testDocument(), testProfile(), sampleAnalysis(t)); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if got := *client.calls[0].config.Temperature; got != 0.2 {
		t.Fatalf("expected analyze temperature 0.2, got %v", got)
	}
	if got := *client.calls[1].config.Temperature; got != 0.4 {
		t.Fatalf("expected optimize temperature 0.4, got %v", got)
	}
}

func TestExplicitZeroTemperatureIsKept(t *testing.T) {
	client := &fakeModelClient{responses: []string{analysisJSON}}
	g := newGeminiService(client, GeminiOptions{AnalyzeTemperature: genai.Ptr[float32](0)}, nil)

	if _, err := g.Analyze(context.Background(), testDocument(), testProfile()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := *client.calls[0].config.Temperature; got != 0 {
		t.Fatalf("expected temperature 0, got %v", got)
	}
}

func TestNewGeminiServiceRequiresKey(t *testing.T) {
	_, err := NewGeminiService(context.Background(), GeminiOptions{APIKey: "  "}, nil)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestUnavailableGatewayFailsEveryCall(t *testing.T) {
	gateway := NewUnavailableGateway(nil)

	if _, err := gateway.Analyze(context.Background(), testDocument(), testProfile()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials from Analyze, got %v", err)
	}
	if _, err := gateway.Optimize(context.Background(), testDocument(), testProfile(), sampleAnalysis(t)); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials from Optimize, got %v", err)
	}
}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "rate limited", err: genai.APIError{Code: 429}, want: true},
		{name: "server error", err: &genai.APIError{Code: 502}, want: true},
		{name: "bad request", err: genai.APIError{Code: 400}, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTemporary(tt.err); got != tt.want {
				t.Fatalf("isTemporary(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
