package dto

import (
	"fmt"
	"strings"
)

type FileKind string

const (
	FileKindPDF   FileKind = "pdf"
	FileKindImage FileKind = "image"
)

// ParseFileKind accepts the declared kind of an input document. Anything other
// than pdf or image is an input contract violation.
func ParseFileKind(s string) (FileKind, error) {
	switch FileKind(strings.ToLower(strings.TrimSpace(s))) {
	case FileKindPDF:
		return FileKindPDF, nil
	case FileKindImage:
		return FileKindImage, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// DefaultLanguages is the OCR language preference used when a document does
// not declare its own: Arabic+English, then Arabic, then English.
var DefaultLanguages = []string{"ara+eng", "ara", "eng"}

// Document is one source document, fully read into memory.
type Document struct {
	Name      string   `json:"name"`
	Kind      FileKind `json:"kind"`
	Languages []string `json:"languages,omitempty"`
	Password  string   `json:"-"`
	Data      []byte   `json:"-"`
}

// OCRLanguages returns the declared languages, else fallback, else the
// default preference list.
func (d *Document) OCRLanguages(fallback []string) []string {
	if len(d.Languages) > 0 {
		return d.Languages
	}
	if len(fallback) > 0 {
		return fallback
	}
	return DefaultLanguages
}

type StatementStatus string

const (
	StatusPending    StatementStatus = "pending"
	StatusProcessing StatementStatus = "processing"
	StatusCompleted  StatementStatus = "completed"
	StatusFailed     StatementStatus = "failed"
)

// DocumentQuality summarises how the winning backend read the document.
type DocumentQuality struct {
	Backend       string   `json:"backend"`
	OcrConfidence float64  `json:"ocr_confidence,omitempty"`
	Issues        []string `json:"issues,omitempty"`
}
