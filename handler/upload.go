package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// readDocument binds and validates the multipart upload and reads the file
// into memory.
func readDocument(c *gin.Context, maxSize int64) (*dto.Document, error) {
	var req dto.ExtractRequest
	if err := c.ShouldBind(&req); err != nil {
		if req.File == nil {
			return nil, dto.ErrNoFile
		}
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if maxSize > 0 && req.File.Size > maxSize {
		return nil, fmt.Errorf("%w: %d bytes", dto.ErrDocumentTooLarge, req.File.Size)
	}

	f, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	kind, _ := dto.ParseFileKind(req.Kind)
	return &dto.Document{
		Name:      req.File.Filename,
		Kind:      kind,
		Languages: req.LanguageList(),
		Password:  req.Password,
		Data:      data,
	}, nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var exErr *service.ExtractionError
	switch {
	case errors.Is(err, dto.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dto.ErrRunNotFound):
		return http.StatusNotFound
	case errors.As(err, &exErr), errors.Is(err, dto.ErrUnreadableDocument):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// sendError sends a structured error response
func sendError(c *gin.Context, log zerolog.Logger, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Error().Err(err).Int("status", statusCode).Msg(message)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}

func uploadStatus(err error) int {
	if errors.Is(err, dto.ErrDocumentTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
