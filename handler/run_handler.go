package handler

import (
	"net/http"

	"github.com/Aashish23092/statement-extraction/store"
	"github.com/gin-gonic/gin"
)

// RunReader looks up stored processing runs.
type RunReader interface {
	GetRun(runID string) (*store.Run, error)
	ListRuns() ([]*store.Run, error)
}

type RunHandler struct {
	runs RunReader
}

func NewRunHandler(runs RunReader) *RunHandler {
	return &RunHandler{runs: runs}
}

// Get handles the GET /runs/:id endpoint
func (h *RunHandler) Get(c *gin.Context) {
	run, err := h.runs.GetRun(c.Param("id"))
	if err != nil {
		sendError(c, requestLog(c), statusFor(err), "RUN_LOOKUP_FAILED", "Failed to load run", err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// List handles the GET /runs endpoint
func (h *RunHandler) List(c *gin.Context) {
	runs, err := h.runs.ListRuns()
	if err != nil {
		sendError(c, requestLog(c), http.StatusInternalServerError, "RUN_LOOKUP_FAILED", "Failed to list runs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
