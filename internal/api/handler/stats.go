package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/repository"
)

// StatsHandler serves catalog statistics and ingest job history.
type StatsHandler struct {
	store *repository.Store
}

// NewStatsHandler creates a new stats handler.
// Parameters:
//   - store: composed repository store.
// Returns:
//   - *StatsHandler: initialized handler.
func NewStatsHandler(store *repository.Store) *StatsHandler {
	return &StatsHandler{store: store}
}

// GetStats handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	meals, err := h.store.Meals.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count meals: " + err.Error(),
		})
		return
	}

	variants, err := h.store.Variants.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count variants: " + err.Error(),
		})
		return
	}

	pendingReview, err := h.store.Variants.CountByReview(ctx, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count review queue: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meals":          meals,
		"variants":       variants,
		"pending_review": pendingReview,
	})
}

// ListJobs handles GET /api/v1/jobs, newest first.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, err := h.store.Jobs.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"total":  len(jobs),
		"limit":  limit,
		"offset": offset,
	})
}

// GetJob handles GET /api/v1/jobs/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) GetJob(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Job ID is required",
		})
		return
	}

	job, err := h.store.Jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}

	c.JSON(http.StatusOK, job)
}
