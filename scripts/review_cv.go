package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/cv-master-ats/internal/config"
	"alfredoptarigan/cv-master-ats/internal/logger"
	"alfredoptarigan/cv-master-ats/internal/models"
	"alfredoptarigan/cv-master-ats/internal/secrets"
	"alfredoptarigan/cv-master-ats/internal/services"
)

var (
	profileReq  models.ProfileRequest
	outputPath  string
	skipRewrite bool
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:   "review_cv [file.pdf]",
	Short: "Run an ATS review of a local CV and write the optimized version as plain text",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&profileReq.JobTitle, "title", "", "target job title (required)")
	flags.StringVar(&profileReq.Industry, "industry", "", "target industry (required)")
	flags.StringVar(&profileReq.Level, "level", string(models.SeniorityMid), "seniority: junior, mid, senior or executive")
	flags.StringVar(&profileReq.Keywords, "keywords", "", "comma separated keywords to look for")
	flags.StringVarP(&outputPath, "output", "o", services.ExportFilename, "where to write the optimized CV")
	flags.BoolVar(&skipRewrite, "analyze-only", false, "stop after the analysis")
	flags.BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl, err := logger.New(false, debug || cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "GEMINI_API_KEY",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	gateway, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:              apiKey,
		Model:               cfg.Gemini.Model,
		Timeout:             cfg.Gemini.Timeout,
		MaxAttempts:         cfg.Gemini.MaxAttempts,
		RetryDelay:          cfg.Gemini.RetryDelay,
		AnalyzeTemperature:  &cfg.Gemini.AnalyzeTemperature,
		OptimizeTemperature: &cfg.Gemini.OptimizeTemperature,
		Language:            cfg.Gemini.Language,
		MaxLogLength:        cfg.Log.MaxPreviewLen,
	}, zl)
	if err != nil {
		return err
	}

	controller := services.NewController(uuid.New(), services.ControllerDeps{
		Gateway:    gateway,
		Intake:     services.NewIntakeService(services.NewPDFParserService(), zl),
		Dispatcher: services.RunInline(ctx),
		Logger:     zl,
	})

	path := args[0]
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := controller.SubmitFile(services.IncomingFile{
		Name:    filepath.Base(path),
		Size:    info.Size(),
		Content: file,
	}); err != nil {
		return errors.New(services.UserMessage(err))
	}

	if err := controller.SubmitProfile(profileReq); err != nil {
		return err
	}

	state := controller.Snapshot()
	if state.Step != models.StepResults {
		return errors.New(state.Error)
	}

	out, err := json.MarshalIndent(state.Analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if skipRewrite {
		return nil
	}

	if err := controller.RequestOptimization(); err != nil {
		return err
	}

	state = controller.Snapshot()
	if state.Step != models.StepDone {
		return errors.New(state.Error)
	}

	if err := os.WriteFile(outputPath, []byte(services.RenderPlainText(state.Optimized)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	zl.Info("optimized CV written",
		zap.String("path", outputPath),
		zap.Int("overall_score", state.Analysis.OverallScore),
		zap.String("score_band", string(state.ScoreBand)),
	)
	return nil
}
