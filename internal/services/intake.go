package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-master-ats/internal/models"
)

// IncomingFile is an upload as received from a client. Exactly one of
// Content or Encoded is expected to be set.
type IncomingFile struct {
	Name      string
	MediaType string
	// Size is the declared byte length. It may be zero for encoded uploads.
	Size    int64
	Content io.Reader
	// Encoded is base64 data, optionally prefixed as a data URL.
	Encoded string
}

type IntakeService interface {
	Submit(file IncomingFile) (*models.Document, error)
}

type intakeService struct {
	pdfParser PDFParserService
	logger    *zap.Logger
}

func NewIntakeService(pdfParser PDFParserService, logger *zap.Logger) IntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &intakeService{pdfParser: pdfParser, logger: logger}
}

// FromMultipart adapts a multipart upload.
func FromMultipart(header *multipart.FileHeader) (IncomingFile, error) {
	src, err := header.Open()
	if err != nil {
		return IncomingFile{}, fmt.Errorf("failed to open uploaded file: %w: %v", ErrEncoding, err)
	}

	return IncomingFile{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Size:      header.Size,
		Content:   src,
	}, nil
}

// Submit validates the upload and encodes it. Type is checked before size.
func (s *intakeService) Submit(file IncomingFile) (*models.Document, error) {
	if closer, ok := file.Content.(io.Closer); ok {
		defer closer.Close()
	}

	mediaType := file.MediaType
	encoded := strings.TrimSpace(file.Encoded)
	if file.Content == nil && encoded != "" {
		var urlType string
		urlType, encoded = StripDataURLPrefix(encoded)
		if mediaType == "" {
			mediaType = urlType
		}
	}

	if !isPDF(mediaType, file.Name) {
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedType, file.Name, mediaType)
	}

	if file.Size > models.MaxDocumentSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, file.Size)
	}

	data, err := readPayload(file.Content, encoded)
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > models.MaxDocumentSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(data))
	}

	doc := &models.Document{
		Filename:  filepath.Base(file.Name),
		MediaType: models.MediaTypePDF,
		Size:      int64(len(data)),
		Payload:   base64.StdEncoding.EncodeToString(data),
	}

	if s.pdfParser != nil {
		if pages, err := s.pdfParser.PageCount(data); err != nil {
			s.logger.Warn("pdf page count unavailable", zap.String("filename", doc.Filename), zap.Error(err))
		} else {
			doc.Pages = pages
		}
	}

	s.logger.Debug("document accepted",
		zap.String("filename", doc.Filename),
		zap.Int64("size", doc.Size),
		zap.Int("pages", doc.Pages),
	)

	return doc, nil
}

func readPayload(content io.Reader, encoded string) ([]byte, error) {
	if content != nil {
		data, err := io.ReadAll(io.LimitReader(content, models.MaxDocumentSize+1))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return data, nil
	}

	if encoded == "" {
		return nil, fmt.Errorf("%w: empty upload", ErrEncoding)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return data, nil
}

// StripDataURLPrefix splits "data:<type>;base64,<payload>" into its media
// type and payload. Input without the prefix is returned unchanged.
func StripDataURLPrefix(value string) (mediaType, payload string) {
	if !strings.HasPrefix(value, "data:") {
		return "", value
	}

	header, payload, found := strings.Cut(value, ",")
	if !found {
		return "", ""
	}

	mediaType = strings.TrimPrefix(header, "data:")
	mediaType, _, _ = strings.Cut(mediaType, ";")
	return mediaType, payload
}

// isPDF accepts either the declared type or the .pdf suffix, since
// browsers do not always report a type.
func isPDF(mediaType, name string) bool {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if base, _, found := strings.Cut(mediaType, ";"); found {
		mediaType = strings.TrimSpace(base)
	}
	return mediaType == models.MediaTypePDF || strings.EqualFold(filepath.Ext(name), ".pdf")
}
