package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/gin-gonic/gin"
)

// StatementProcessor runs the extraction pipeline over one statement.
type StatementProcessor interface {
	Process(ctx context.Context, doc *dto.Document) (*dto.StatementResult, error)
}

type StatementHandler struct {
	statements  StatementProcessor
	maxFileSize int64
}

func NewStatementHandler(statements StatementProcessor, maxFileSize int64) *StatementHandler {
	return &StatementHandler{
		statements:  statements,
		maxFileSize: maxFileSize,
	}
}

// Extract handles the POST /statements/extract endpoint
func (h *StatementHandler) Extract(c *gin.Context) {
	log := requestLog(c)
	doc, err := readDocument(c, h.maxFileSize)
	if err != nil {
		sendError(c, log, uploadStatus(err), "INVALID_REQUEST", "Invalid upload", err)
		return
	}

	log.Info().Str("document", doc.Name).Str("kind", string(doc.Kind)).Int("bytes", len(doc.Data)).Msg("Received statement extraction request")

	result, err := h.statements.Process(c.Request.Context(), doc)
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, dto.ErrUnsupportedKind) {
			status = http.StatusBadRequest
		}
		log.Error().Err(err).Str("document", doc.Name).Msg("Statement extraction failed")
		resp := dto.ErrorResponse{Error: "EXTRACTION_FAILED", Message: err.Error(), Code: status}
		if result != nil {
			resp.RunID = result.RunID
		}
		c.JSON(status, resp)
		return
	}

	log.Info().Str("run_id", result.RunID).Int("transactions", len(result.Transactions)).Msg("Statement extraction completed")
	c.JSON(http.StatusOK, result)
}
