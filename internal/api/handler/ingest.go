package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/service"
)

// IngestHandler handles single-record ingestion over HTTP. Batch work goes
// through the ingest command instead.
type IngestHandler struct {
	ingest *service.IngestService
}

// NewIngestHandler creates a new ingest handler.
// Parameters:
//   - ingest: ingest pipeline service.
// Returns:
//   - *IngestHandler: initialized handler.
func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// IngestMeal handles POST /api/v1/meals/ingest. The body is a raw meal
// record; the response is the resolution outcome. Resubmitting the same
// (source_type, source_id) is safe and returns existing_variant.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *IngestHandler) IngestMeal(c *gin.Context) {
	var raw domain.RawMeal
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	if strings.TrimSpace(raw.SourceType) == "" {
		raw.SourceType = "user_form"
	}

	resolution, err := h.ingest.IngestRecord(c.Request.Context(), &raw)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, brain.ErrMissingName) || errors.Is(err, brain.ErrMissingSource) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error": "Failed to ingest record: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resolution": resolution,
	})
}
