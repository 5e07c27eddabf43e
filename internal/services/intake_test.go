package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"alfredoptarigan/cv-master-ats/internal/models"
)

func TestIntakeAcceptsPDF(t *testing.T) {
	intake := NewIntakeService(nil, nil)

	doc, err := intake.Submit(pdfUpload("uploads/jane_doe.pdf"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if doc.Filename != "jane_doe.pdf" {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}
	if doc.MediaType != models.MediaTypePDF {
		t.Fatalf("unexpected media type %q", doc.MediaType)
	}

	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(data) != "%PDF-1.4\n% test document\n" || doc.Size != int64(len(data)) {
		t.Fatalf("payload did not round trip: %q", data)
	}
}

func TestIntakeAcceptsPDFExtensionWithoutType(t *testing.T) {
	file := pdfUpload("CV.PDF")
	file.MediaType = ""

	if _, err := NewIntakeService(nil, nil).Submit(file); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestIntakeRejections(t *testing.T) {
	tests := []struct {
		name string
		file IncomingFile
		want error
	}{
		{
			name: "word document",
			file: IncomingFile{Name: "cv.docx", MediaType: "application/msword", Size: 10, Content: strings.NewReader("doc")},
			want: ErrUnsupportedType,
		},
		{
			name: "type is checked before size",
			file: IncomingFile{Name: "photo.png", MediaType: "image/png", Size: 10 * 1024 * 1024, Content: strings.NewReader("png")},
			want: ErrUnsupportedType,
		},
		{
			name: "declared size over limit",
			file: IncomingFile{Name: "cv.pdf", MediaType: models.MediaTypePDF, Size: models.MaxDocumentSize + 1, Content: strings.NewReader("%PDF")},
			want: ErrFileTooLarge,
		},
		{
			name: "actual size over limit",
			file: IncomingFile{Name: "cv.pdf", MediaType: models.MediaTypePDF, Content: bytes.NewReader(make([]byte, models.MaxDocumentSize+1))},
			want: ErrFileTooLarge,
		},
		{
			name: "invalid base64",
			file: IncomingFile{Name: "cv.pdf", MediaType: models.MediaTypePDF, Encoded: "!!not base64!!"},
			want: ErrEncoding,
		},
		{
			name: "empty upload",
			file: IncomingFile{Name: "cv.pdf", MediaType: models.MediaTypePDF},
			want: ErrEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIntakeService(nil, nil).Submit(tt.file)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestIntakeExactLimitIsAccepted(t *testing.T) {
	data := make([]byte, models.MaxDocumentSize)
	file := IncomingFile{Name: "cv.pdf", MediaType: models.MediaTypePDF, Size: int64(len(data)), Content: bytes.NewReader(data)}

	doc, err := NewIntakeService(nil, nil).Submit(file)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if doc.Size != models.MaxDocumentSize {
		t.Fatalf("unexpected size %d", doc.Size)
	}
}

func TestIntakeDecodesDataURL(t *testing.T) {
	content := []byte("%PDF-1.7 encoded")
	encoded := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(content)

	doc, err := NewIntakeService(nil, nil).Submit(IncomingFile{Name: "cv", Encoded: encoded})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if strings.HasPrefix(doc.Payload, "data:") {
		t.Fatalf("payload kept the data URL prefix")
	}

	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("payload did not round trip: %q", data)
	}
}

func TestStripDataURLPrefix(t *testing.T) {
	tests := []struct {
		in          string
		wantType    string
		wantPayload string
	}{
		{in: "data:application/pdf;base64,QUJD", wantType: "application/pdf", wantPayload: "QUJD"},
		{in: "QUJD", wantType: "", wantPayload: "QUJD"},
		{in: "data:application/pdf;base64", wantType: "", wantPayload: ""},
	}

	for _, tt := range tests {
		gotType, gotPayload := StripDataURLPrefix(tt.in)
		if gotType != tt.wantType || gotPayload != tt.wantPayload {
			t.Fatalf("StripDataURLPrefix(%q) = (%q, %q), want (%q, %q)", tt.in, gotType, gotPayload, tt.wantType, tt.wantPayload)
		}
	}
}
