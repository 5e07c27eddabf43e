package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"alfredoptarigan/cv-master-ats/internal/models"
)

const analysisJSON = `{
  "overallScore": 72,
  "summary": "Solid backend profile with gaps in cloud keywords.",
  "contactInfo": {"status": "good", "score": 90, "feedback": ["Complete"]},
  "professionalSummary": {"status": "warning", "score": 60, "feedback": ["Too generic"]},
  "experience": {"status": "good", "score": 80, "feedback": ["Quantified"]},
  "education": {"status": "good", "score": 85, "feedback": []},
  "skills": {"status": "warning", "score": 55, "feedback": ["Missing cloud skills"]},
  "atsKeywords": {"found": ["Go", "PostgreSQL"], "missing": ["Kubernetes", "Terraform"], "densityScore": 58},
  "formatting": {"isClean": true, "issues": []},
  "recommendations": ["Add Kubernetes experience"]
}`

const optimizedJSON = `{
  "fullName": "Jane Doe",
  "title": "Senior Backend Engineer",
  "contact": {"email": "jane@example.com", "phone": "+1 555 0100", "location": "Berlin"},
  "professionalSummary": "Backend engineer with eight years building payment systems.",
  "skills": {"technical": ["Go", "Kubernetes"], "soft": ["Mentoring"], "tools": ["Terraform"], "languages": ["English"]},
  "experience": [{
    "company": "Acme",
    "position": "Backend Engineer",
    "location": "Berlin",
    "startDate": "2019",
    "endDate": "2024",
    "achievements": ["Cut p99 latency by 40%", "Led migration to Kubernetes"]
  }],
  "education": [{"institution": "TU Berlin", "degree": "BSc Computer Science", "year": "2016"}]
}`

func sampleAnalysis(t *testing.T) *models.AnalysisResult {
	t.Helper()
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(analysisJSON), &result); err != nil {
		t.Fatalf("decode analysis fixture: %v", err)
	}
	return &result
}

func sampleOptimized(t *testing.T) *models.OptimizedDocument {
	t.Helper()
	var resume models.StructuredResume
	if err := json.Unmarshal([]byte(optimizedJSON), &resume); err != nil {
		t.Fatalf("decode optimized fixture: %v", err)
	}
	return &models.OptimizedDocument{StructuredContent: resume}
}

func pdfUpload(name string) IncomingFile {
	content := "%PDF-1.4\n% test document\n"
	return IncomingFile{
		Name:      name,
		MediaType: models.MediaTypePDF,
		Size:      int64(len(content)),
		Content:   strings.NewReader(content),
	}
}

func sampleProfile() models.ProfileRequest {
	return models.ProfileRequest{
		JobTitle: "Backend Engineer",
		Industry: "Fintech",
		Level:    "Senior",
	}
}

type fakeGateway struct {
	mu            sync.Mutex
	analyzeCalls  int
	optimizeCalls int
	analysis      *models.AnalysisResult
	optimized     *models.OptimizedDocument
	analyzeErr    error
	optimizeErr   error
	lastAnalysis  *models.AnalysisResult
}

func (f *fakeGateway) Analyze(_ context.Context, _ *models.Document, _ *models.TargetProfile) (*models.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzeCalls++
	return f.analysis, f.analyzeErr
}

func (f *fakeGateway) Optimize(_ context.Context, _ *models.Document, _ *models.TargetProfile, analysis *models.AnalysisResult) (*models.OptimizedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optimizeCalls++
	f.lastAnalysis = analysis
	return f.optimized, f.optimizeErr
}

// manualDispatcher holds calls until the test runs them.
type manualDispatcher struct {
	calls []*Call
}

func (d *manualDispatcher) Dispatch(call *Call) error {
	d.calls = append(d.calls, call)
	return nil
}

type fakeArchiver struct {
	mu      sync.Mutex
	reports []*models.Report
	err     error
}

func (f *fakeArchiver) Create(report *models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeArchiver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

// onePagePDF builds a minimal well-formed PDF with a single empty page. The
// cross-reference offsets are computed so the reader can resolve objects.
func onePagePDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}
