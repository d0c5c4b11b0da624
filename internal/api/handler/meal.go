package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/repository"
)

// MealHandler handles canonical meal endpoints.
type MealHandler struct {
	store *repository.Store
}

// NewMealHandler creates a new meal handler.
// Parameters:
//   - store: composed repository store.
// Returns:
//   - *MealHandler: initialized handler.
func NewMealHandler(store *repository.Store) *MealHandler {
	return &MealHandler{store: store}
}

// ListMeals handles GET /api/v1/meals.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MealHandler) ListMeals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	meals, err := h.store.Meals.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list meals: " + err.Error(),
		})
		return
	}

	total, err := h.store.Meals.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count meals: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meals":  meals,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetMeal handles GET /api/v1/meals/:id. The response includes the meal's
// tags so a client gets the full taxonomy view in one call.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MealHandler) GetMeal(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Meal ID is required",
		})
		return
	}

	meal, err := h.store.Meals.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Meal not found",
		})
		return
	}

	tags, err := h.store.Tags.ListByMeal(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load tags: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meal": meal,
		"tags": tags,
	})
}

// ListVariants handles GET /api/v1/meals/:id/variants.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MealHandler) ListVariants(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Meal ID is required",
		})
		return
	}

	variants, err := h.store.Variants.ListByMeal(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list variants: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variants": variants,
		"total":    len(variants),
	})
}
