package dto

import "errors"

var (
	ErrNoFile             = errors.New("no file provided")
	ErrUnsupportedKind    = errors.New("declared file kind must be pdf or image")
	ErrUnreadableDocument = errors.New("document is not readable")
	ErrRunNotFound        = errors.New("run not found")
	ErrDocumentTooLarge   = errors.New("uploaded file exceeds the size limit")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	RunID   string `json:"run_id,omitempty"`
}

type ProcessingSummary struct {
	Extracted  int    `json:"extracted"`
	Invalid    int    `json:"invalid"`
	Duplicates int    `json:"duplicates"`
	Message    string `json:"message"`
}

// StatementResult is what one statement processing run produces.
type StatementResult struct {
	RunID        string            `json:"run_id"`
	Document     string            `json:"document"`
	Status       StatementStatus   `json:"status"`
	Quality      DocumentQuality   `json:"quality"`
	Transactions []Transaction     `json:"transactions"`
	Summary      ProcessingSummary `json:"summary"`
	Logs         []LogEntry        `json:"logs"`
	ProcessedAt  string            `json:"processed_at"`
}

type InvoiceResult struct {
	RunID       string     `json:"run_id"`
	Document    string     `json:"document"`
	Invoice     Invoice    `json:"invoice"`
	Receipt     Receipt    `json:"receipt"`
	Error       string     `json:"error,omitempty"`
	Logs        []LogEntry `json:"logs"`
	ProcessedAt string     `json:"processed_at"`
}
