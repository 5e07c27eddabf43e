package models

import (
	"encoding/base64"
	"fmt"
)

const (
	MediaTypePDF = "application/pdf"

	// MaxDocumentSize is the largest accepted upload, in bytes.
	MaxDocumentSize int64 = 5 * 1024 * 1024
)

// Document is an uploaded CV that passed intake validation. It is never
// mutated after creation.
type Document struct {
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Pages     int    `json:"pages"`
	// Payload is the standard base64 encoding of the file, without any
	// data URL prefix.
	Payload string `json:"-"`
}

// Bytes decodes the payload back into the original file content.
func (d *Document) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document payload: %w", err)
	}
	return data, nil
}
