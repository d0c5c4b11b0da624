package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/service"
)

// SearchHandler handles meal search endpoints.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler creates a new search handler.
// Parameters:
//   - search: search service.
// Returns:
//   - *SearchHandler: initialized handler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// searchRequest is the body for POST /api/v1/search.
type searchRequest struct {
	Query  string `json:"query" binding:"required"`
	Diet   string `json:"diet"`
	Course string `json:"course"`
	Region string `json:"region"`
	Limit  int    `json:"limit"`
}

// Search handles POST /api/v1/search.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	h.doSearch(c, req)
}

// SearchGet handles GET /api/v1/search?q=... for quick manual queries.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SearchHandler) SearchGet(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	h.doSearch(c, searchRequest{
		Query:  c.Query("q"),
		Diet:   c.Query("diet"),
		Course: c.Query("course"),
		Region: c.Query("region"),
		Limit:  limit,
	})
}

func (h *SearchHandler) doSearch(c *gin.Context, req searchRequest) {
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query is required",
		})
		return
	}

	filters := brain.CandidateFilters{
		Diet:   req.Diet,
		Course: req.Course,
		Region: req.Region,
	}

	results, err := h.search.Search(c.Request.Context(), req.Query, filters, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
		"total":   len(results),
	})
}

// Suggest handles GET /api/v1/suggest?q=... with prefix completion over
// normalized titles.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SearchHandler) Suggest(c *gin.Context) {
	prefix := c.Query("q")
	if prefix == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'q' is required",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	meals, err := h.search.Suggest(c.Request.Context(), prefix, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Suggest failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":       prefix,
		"suggestions": meals,
		"total":       len(meals),
	})
}
