package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter sets up the health check and the /api/v1 routes. Every request
// carries a logger derived from log.
func NewRouter(log zerolog.Logger, statements *StatementHandler, receipts *ReceiptHandler, runs *RunHandler, maxMultipartMemory int64) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))
	router.MaxMultipartMemory = maxMultipartMemory

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Statement Extraction",
		})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/statements/extract", statements.Extract)
		api.POST("/receipts/parse", receipts.Parse)
		api.GET("/runs", runs.List)
		api.GET("/runs/:id", runs.Get)
	}
	return router
}
