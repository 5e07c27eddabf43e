package services

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

type PDFParserService interface {
	PageCount(data []byte) (int, error)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

// PageCount opens an in-memory PDF and reads the page count from its page
// tree. Page content is not decoded.
func (p *pdfParserService) PageCount(data []byte) (pages int, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("failed to open PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	return r.NumPage(), nil
}
