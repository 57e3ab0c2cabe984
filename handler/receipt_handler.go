package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/gin-gonic/gin"
)

// ReceiptProcessor reads and prepares one POS receipt.
type ReceiptProcessor interface {
	Process(ctx context.Context, doc *dto.Document) (*dto.InvoiceResult, error)
}

type ReceiptHandler struct {
	receipts    ReceiptProcessor
	maxFileSize int64
}

func NewReceiptHandler(receipts ReceiptProcessor, maxFileSize int64) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts, maxFileSize: maxFileSize}
}

// Parse handles the POST /receipts/parse endpoint
func (h *ReceiptHandler) Parse(c *gin.Context) {
	log := requestLog(c)
	doc, err := readDocument(c, h.maxFileSize)
	if err != nil {
		sendError(c, log, uploadStatus(err), "INVALID_REQUEST", "Invalid upload", err)
		return
	}

	result, err := h.receipts.Process(c.Request.Context(), doc)
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, dto.ErrUnsupportedKind) {
			status = http.StatusBadRequest
		}
		log.Error().Err(err).Str("document", doc.Name).Msg("Receipt parsing failed")
		resp := dto.ErrorResponse{Error: "RECEIPT_PARSE_FAILED", Message: err.Error(), Code: status}
		if result != nil {
			resp.RunID = result.RunID
		}
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, result)
}
