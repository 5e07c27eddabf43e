package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/cv-master-ats/internal/logger"
	"alfredoptarigan/cv-master-ats/internal/models"
)

const (
	defaultModel        = "gemini-2.5-flash"
	defaultTimeout      = 90 * time.Second
	defaultMaxLogLength = 200

	defaultAnalyzeTemperature  float32 = 0.2
	defaultOptimizeTemperature float32 = 0.4
	jsonMIMEType        = "application/json"
)

// InferenceGateway is the boundary to the external model. Both calls are
// single request/response exchanges returning typed results.
type InferenceGateway interface {
	Analyze(ctx context.Context, doc *models.Document, profile *models.TargetProfile) (*models.AnalysisResult, error)
	Optimize(ctx context.Context, doc *models.Document, profile *models.TargetProfile, analysis *models.AnalysisResult) (*models.OptimizedDocument, error)
}

// modelClient is the part of genai.Models the gateway needs.
type modelClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiOptions struct {
	APIKey              string
	Model               string
	Timeout             time.Duration
	MaxAttempts         int
	RetryDelay          time.Duration
	// Nil temperatures select the defaults (0.2 for Analyze, 0.4 for
	// Optimize). Zero is a valid explicit value.
	AnalyzeTemperature  *float32
	OptimizeTemperature *float32
	Language            string
	MaxLogLength        int
}

type geminiService struct {
	models        modelClient
	modelName     string
	timeout       time.Duration
	maxAttempts   int
	retryDelay    time.Duration
	analyzeTemp   float32
	optimizeTemp  float32
	promptBuilder *PromptBuilder
	maxLogLen     int
	logger        *zap.Logger
}

// waitFor pauses between retry attempts. Tests replace it.
var waitFor = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func NewGeminiService(ctx context.Context, opts GeminiOptions, log *zap.Logger) (InferenceGateway, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingCredentials
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, opts, log), nil
}

func newGeminiService(client modelClient, opts GeminiOptions, log *zap.Logger) *geminiService {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	analyzeTemp := defaultAnalyzeTemperature
	if opts.AnalyzeTemperature != nil {
		analyzeTemp = *opts.AnalyzeTemperature
	}
	optimizeTemp := defaultOptimizeTemperature
	if opts.OptimizeTemperature != nil {
		optimizeTemp = *opts.OptimizeTemperature
	}
	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &geminiService{
		models:        client,
		modelName:     model,
		timeout:       timeout,
		maxAttempts:   attempts,
		retryDelay:    opts.RetryDelay,
		analyzeTemp:   analyzeTemp,
		optimizeTemp:  optimizeTemp,
		promptBuilder: NewPromptBuilder(opts.Language),
		maxLogLen:     maxLogLen,
		logger:        logger.WithProvider(log, "gemini", model),
	}
}

// Analyze implements InferenceGateway.
func (g *geminiService) Analyze(ctx context.Context, doc *models.Document, profile *models.TargetProfile) (*models.AnalysisResult, error) {
	if doc == nil || profile == nil {
		return nil, fmt.Errorf("analyze: %w", ErrContractViolation)
	}

	prompt := g.promptBuilder.BuildAnalysisPrompt(profile)
	raw, err := g.generate(ctx, "analyze", doc, prompt, AnalysisSchema(), g.analyzeTemp)
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := decodeWithSchema(raw, AnalysisSchema(), &result); err != nil {
		g.logFailure("analyze", err, raw)
		return nil, fmt.Errorf("analyze: %w", err)
	}

	return &result, nil
}

// Optimize implements InferenceGateway.
func (g *geminiService) Optimize(ctx context.Context, doc *models.Document, profile *models.TargetProfile, analysis *models.AnalysisResult) (*models.OptimizedDocument, error) {
	if doc == nil || profile == nil || analysis == nil {
		return nil, fmt.Errorf("optimize: %w", ErrContractViolation)
	}

	prompt := g.promptBuilder.BuildOptimizationPrompt(profile, analysis)
	raw, err := g.generate(ctx, "optimize", doc, prompt, OptimizedSchema(), g.optimizeTemp)
	if err != nil {
		return nil, err
	}

	var resume models.StructuredResume
	if err := decodeWithSchema(raw, OptimizedSchema(), &resume); err != nil {
		g.logFailure("optimize", err, raw)
		return nil, fmt.Errorf("optimize: %w", err)
	}

	return &models.OptimizedDocument{StructuredContent: resume}, nil
}

func (g *geminiService) generate(ctx context.Context, op string, doc *models.Document, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	data, err := doc.Bytes()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrEncoding, err)
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: doc.MediaType, Data: data}},
			{Text: prompt},
		},
	}}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
		ResponseSchema:   schema,
		Temperature:      &temperature,
	}

	g.logger.Debug("gemini generate content request",
		zap.String("operation", op),
		zap.Int64("document_size", doc.Size),
		zap.Float32("temperature", temperature),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.models.GenerateContent(attemptCtx, g.modelName, contents, config)
		cancel()

		if err == nil {
			text := ""
			if resp != nil {
				text = strings.TrimSpace(resp.Text())
			}
			if text == "" {
				err := fmt.Errorf("%s: %w", op, ErrEmptyResponse)
				g.logFailure(op, err, "")
				return "", err
			}

			g.logger.Debug("gemini generate content response",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Int("response_length", utf8.RuneCountInString(text)),
				zap.String("response_preview", logger.TruncateForLog(text, g.maxLogLen)),
			)
			return text, nil
		}

		lastErr = err
		if attempt == g.maxAttempts || ctx.Err() != nil || !isTemporary(err) {
			break
		}

		delay := g.retryDelay * time.Duration(attempt)
		g.logger.Warn("gemini request failed, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := waitFor(ctx, delay); err != nil {
			break
		}
	}

	err = fmt.Errorf("%s: %w: %v", op, ErrTransport, lastErr)
	g.logFailure(op, err, "")
	return "", err
}

func (g *geminiService) logFailure(op string, err error, raw string) {
	fields := []zap.Field{
		zap.String("operation", op),
		logger.ErrorKind(errorKind(err)),
		zap.Error(err),
	}
	if raw != "" {
		fields = append(fields, zap.String("response_preview", logger.TruncateForLog(raw, g.maxLogLen)))
	}
	g.logger.Error("gemini call failed", fields...)
}

// isTemporary reports whether a failed call is worth repeating.
func isTemporary(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return retryableStatus(apiErrPtr.Code)
	}

	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// unavailableGateway fails every call with the error that prevented the
// real gateway from being built, so sessions surface it as a failed step.
type unavailableGateway struct {
	err error
}

func NewUnavailableGateway(err error) InferenceGateway {
	if err == nil {
		err = ErrMissingCredentials
	}
	return &unavailableGateway{err: err}
}

func (u *unavailableGateway) Analyze(context.Context, *models.Document, *models.TargetProfile) (*models.AnalysisResult, error) {
	return nil, fmt.Errorf("analyze: %w", u.err)
}

func (u *unavailableGateway) Optimize(context.Context, *models.Document, *models.TargetProfile, *models.AnalysisResult) (*models.OptimizedDocument, error) {
	return nil, fmt.Errorf("optimize: %w", u.err)
}
