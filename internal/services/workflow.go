package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-master-ats/internal/logger"
	"alfredoptarigan/cv-master-ats/internal/models"
)

// Dispatcher hands inference calls to whatever runs them.
type Dispatcher interface {
	Dispatch(call *Call) error
}

type DispatcherFunc func(call *Call) error

func (f DispatcherFunc) Dispatch(call *Call) error { return f(call) }

// RunInline runs every call synchronously on the caller's goroutine.
func RunInline(ctx context.Context) Dispatcher {
	return DispatcherFunc(func(call *Call) error {
		call.Run(ctx)
		return nil
	})
}

// ReportArchiver stores finished sessions. It is optional.
type ReportArchiver interface {
	Create(report *models.Report) error
}

type CallKind string

const (
	CallAnalyze  CallKind = "analyze"
	CallOptimize CallKind = "optimize"
)

// Call is one pending inference request. It carries the inputs it was
// issued with and the ticket used to detect stale completions.
type Call struct {
	Kind       CallKind
	SessionID  uuid.UUID
	Generation uint64
	Seq        uint64

	controller *Controller
	document   *models.Document
	profile    *models.TargetProfile
	analysis   *models.AnalysisResult
}

// Run executes the call and reports the outcome to its session. It returns
// false when the session had moved on and the result was dropped.
func (c *Call) Run(ctx context.Context) bool {
	gateway := c.controller.gateway
	switch c.Kind {
	case CallAnalyze:
		result, err := gateway.Analyze(ctx, c.document, c.profile)
		return c.controller.completeAnalyze(c, result, err)
	case CallOptimize:
		result, err := gateway.Optimize(ctx, c.document, c.profile, c.analysis)
		return c.controller.completeOptimize(c, result, err)
	default:
		return false
	}
}

// Fail completes the call without running it.
func (c *Call) Fail(err error) bool {
	if c.controller == nil {
		return false
	}
	switch c.Kind {
	case CallAnalyze:
		return c.controller.completeAnalyze(c, nil, err)
	case CallOptimize:
		return c.controller.completeOptimize(c, nil, err)
	default:
		return false
	}
}

type ControllerDeps struct {
	Gateway    InferenceGateway
	Intake     IntakeService
	Dispatcher Dispatcher
	Archiver   ReportArchiver
	Logger     *zap.Logger
}

// Controller owns the state of one review session and is the only thing
// allowed to change it.
type Controller struct {
	mu sync.Mutex

	id         uuid.UUID
	gateway    InferenceGateway
	intake     IntakeService
	dispatcher Dispatcher
	archiver   ReportArchiver
	logger     *zap.Logger
	now        func() time.Time

	step       models.Step
	generation uint64
	seq        uint64
	inflight   uint64
	document   *models.Document
	profile    *models.TargetProfile
	analysis   *models.AnalysisResult
	optimized  *models.OptimizedDocument
	lastError  string
	reportID   uuid.UUID
	updatedAt  time.Time
}

func NewController(id uuid.UUID, deps ControllerDeps) *Controller {
	c := &Controller{
		id:         id,
		gateway:    deps.Gateway,
		intake:     deps.Intake,
		dispatcher: deps.Dispatcher,
		archiver:   deps.Archiver,
		logger:     logger.WithSession(deps.Logger, id),
		now:        time.Now,
		step:       models.StepUpload,
	}
	if c.intake == nil {
		c.intake = NewIntakeService(nil, deps.Logger)
	}
	c.updatedAt = c.now()
	return c
}

func (c *Controller) ID() uuid.UUID { return c.id }

// SubmitFile validates an upload and moves the session to the profile step.
// A rejected file keeps the session on the upload step with an error set.
func (c *Controller) SubmitFile(file IncomingFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != models.StepUpload {
		if closer, ok := file.Content.(io.Closer); ok {
			_ = closer.Close()
		}
		return fmt.Errorf("submit file in step %s: %w", c.step, ErrInvalidStep)
	}

	doc, err := c.intake.Submit(file)
	if err != nil {
		c.lastError = UserMessage(err)
		c.touch()
		c.logger.Info("document rejected", zap.String("filename", file.Name), zap.Error(err))
		return err
	}

	c.document = doc
	c.transition(models.StepProfile)
	return nil
}

// RejectUpload records an upload that could not be read from the request.
// Outside the upload step it fails like SubmitFile.
func (c *Controller) RejectUpload(cause error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != models.StepUpload {
		return fmt.Errorf("submit file in step %s: %w", c.step, ErrInvalidStep)
	}

	c.lastError = UserMessage(cause)
	c.touch()
	c.logger.Info("upload unreadable", zap.Error(cause))
	return cause
}

// SubmitProfile freezes the target profile and starts the analysis. An
// incomplete profile is rejected without touching the session.
func (c *Controller) SubmitProfile(req models.ProfileRequest) error {
	c.mu.Lock()

	if c.step != models.StepProfile {
		c.mu.Unlock()
		return fmt.Errorf("submit profile in step %s: %w", c.step, ErrInvalidStep)
	}

	profile, err := BuildProfile(req)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if c.document == nil {
		c.mu.Unlock()
		c.logger.Error("entering analysis without a document", zap.Error(ErrContractViolation))
		return fmt.Errorf("analyze: %w", ErrContractViolation)
	}

	c.profile = profile
	c.transition(models.StepAnalyzing)
	call := c.newCall(CallAnalyze)
	c.mu.Unlock()

	c.dispatch(call)
	return nil
}

// RequestOptimization starts the rewrite of an analysed CV.
func (c *Controller) RequestOptimization() error {
	c.mu.Lock()

	if c.step != models.StepResults {
		c.mu.Unlock()
		return fmt.Errorf("optimize in step %s: %w", c.step, ErrInvalidStep)
	}

	if c.document == nil || c.profile == nil || c.analysis == nil {
		c.mu.Unlock()
		c.logger.Error("entering optimization with missing state", zap.Error(ErrContractViolation))
		return fmt.Errorf("optimize: %w", ErrContractViolation)
	}

	c.transition(models.StepOptimizing)
	call := c.newCall(CallOptimize)
	c.mu.Unlock()

	c.dispatch(call)
	return nil
}

// Restart clears the session. Responses to calls issued before the restart
// are discarded when they arrive.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.inflight = 0
	c.document = nil
	c.profile = nil
	c.analysis = nil
	c.optimized = nil
	c.reportID = uuid.Nil
	c.transition(models.StepUpload)

	c.logger.Info("session restarted", zap.Uint64(logger.FieldGeneration, c.generation))
}

func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastError = ""
	c.touch()
}

// Snapshot returns a copy of the current state. The referenced results are
// immutable and shared.
func (c *Controller) Snapshot() models.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := models.SessionState{
		ID:         c.id,
		Step:       c.step,
		Generation: c.generation,
		Document:   c.document,
		Profile:    c.profile,
		Analysis:   c.analysis,
		Optimized:  c.optimized,
		Error:      c.lastError,
		Progress:   models.Progress(c.step),
		UpdatedAt:  c.updatedAt,
	}
	if c.reportID != uuid.Nil {
		state.ReportID = c.reportID.String()
	}
	if c.analysis != nil {
		state.ScoreBand = models.BandFor(c.analysis.OverallScore)
	}
	return state
}

// LastActivity is the time of the latest state change.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

// busy reports whether an inference call is outstanding.
func (c *Controller) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != 0
}

func (c *Controller) completeAnalyze(call *Call, result *models.AnalysisResult, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.accepts(call) {
		return false
	}
	c.inflight = 0

	if err == nil && result == nil {
		err = fmt.Errorf("analyze: %w", ErrEmptyResponse)
	}
	if err != nil {
		c.transition(models.StepProfile)
		c.lastError = msgAnalysisFailed
		c.logger.Warn("analysis failed", logger.ErrorKind(errorKind(err)), zap.Error(err))
		return true
	}

	c.analysis = result
	c.transition(models.StepResults)
	c.logger.Info("analysis completed", zap.Int("overall_score", result.OverallScore))
	return true
}

func (c *Controller) completeOptimize(call *Call, result *models.OptimizedDocument, err error) bool {
	c.mu.Lock()

	if !c.accepts(call) {
		c.mu.Unlock()
		return false
	}
	c.inflight = 0

	if err == nil && result == nil {
		err = fmt.Errorf("optimize: %w", ErrEmptyResponse)
	}
	if err != nil {
		c.transition(models.StepResults)
		c.lastError = msgOptimizationFailed
		c.mu.Unlock()
		c.logger.Warn("optimization failed", logger.ErrorKind(errorKind(err)), zap.Error(err))
		return true
	}

	c.optimized = result
	c.transition(models.StepDone)
	report := c.report()
	c.mu.Unlock()

	c.logger.Info("optimization completed")
	c.archive(call, report)
	return true
}

// accepts must be called with the lock held.
func (c *Controller) accepts(call *Call) bool {
	if call.Generation != c.generation || call.Seq != c.inflight {
		c.logger.Info("discarding stale inference response",
			zap.String("call", string(call.Kind)),
			zap.Uint64(logger.FieldGeneration, call.Generation),
			zap.Uint64("current_generation", c.generation),
		)
		return false
	}
	return true
}

// newCall must be called with the lock held.
func (c *Controller) newCall(kind CallKind) *Call {
	c.seq++
	c.inflight = c.seq
	return &Call{
		Kind:       kind,
		SessionID:  c.id,
		Generation: c.generation,
		Seq:        c.seq,
		controller: c,
		document:   c.document,
		profile:    c.profile,
		analysis:   c.analysis,
	}
}

func (c *Controller) dispatch(call *Call) {
	var err error
	if c.dispatcher == nil {
		err = errors.New("no dispatcher configured")
	} else {
		err = c.dispatcher.Dispatch(call)
	}
	if err == nil {
		return
	}

	call.Fail(fmt.Errorf("%s: %w: dispatch: %v", call.Kind, ErrTransport, err))
}

// transition must be called with the lock held. Every step change clears
// the error banner.
func (c *Controller) transition(step models.Step) {
	c.step = step
	c.lastError = ""
	c.touch()
}

func (c *Controller) touch() {
	c.updatedAt = c.now()
}

func (c *Controller) report() *models.Report {
	if c.document == nil || c.profile == nil || c.analysis == nil || c.optimized == nil {
		return nil
	}
	return &models.Report{
		ID:           uuid.New(),
		SessionID:    c.id,
		Filename:     c.document.Filename,
		JobTitle:     c.profile.JobTitle,
		Industry:     c.profile.Industry,
		Level:        c.profile.Level,
		OverallScore: c.analysis.OverallScore,
		Analysis:     c.analysis,
		Optimized:    c.optimized,
		CreatedAt:    c.now(),
	}
}

func (c *Controller) archive(call *Call, report *models.Report) {
	if c.archiver == nil || report == nil {
		return
	}
	if err := c.archiver.Create(report); err != nil {
		c.logger.Warn("failed to archive report", zap.Error(err))
		return
	}
	c.logger.Info("report archived", zap.String("report_id", report.ID.String()))

	c.mu.Lock()
	defer c.mu.Unlock()
	if call.Generation == c.generation && c.step == models.StepDone {
		c.reportID = report.ID
	}
}
