package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/repository"
)

// ReviewHandler serves the manual review queue for uncertain resolutions.
type ReviewHandler struct {
	store *repository.Store
}

// NewReviewHandler creates a new review handler.
// Parameters:
//   - store: composed repository store.
// Returns:
//   - *ReviewHandler: initialized handler.
func NewReviewHandler(store *repository.Store) *ReviewHandler {
	return &ReviewHandler{store: store}
}

// ListReviewQueue handles GET /api/v1/review. Oldest items come first so the
// queue drains in ingestion order.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ReviewHandler) ListReviewQueue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	variants, err := h.store.Variants.ListNeedingReview(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list review queue: " + err.Error(),
		})
		return
	}

	total, err := h.store.Variants.CountByReview(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count review queue: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variants": variants,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// resolveRequest is the body for ResolveVariant. MealID is optional; when set
// the variant is reattached to that canonical meal before clearing the flag.
type resolveRequest struct {
	MealID string `json:"meal_id"`
}

// ResolveVariant handles POST /api/v1/review/:id/resolve.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ReviewHandler) ResolveVariant(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Variant ID is required",
		})
		return
	}

	var req resolveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}
	}

	if err := h.store.Variants.Resolve(c.Request.Context(), id, req.MealID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Variant not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve variant: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "resolved",
		"variant_id": id,
	})
}
