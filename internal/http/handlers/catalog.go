package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/data/repos/learning"
	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

// CatalogHandler serves the public browse surface. No auth; only
// published courses are reachable through it.
type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/course/catalog
func (h *CatalogHandler) Catalog(c *gin.Context) {
	page, pageSize := pageParams(c, 20, 100)
	filter := learning.CatalogFilter{
		Category:        strings.TrimSpace(c.Query("category")),
		Subcategory:     strings.TrimSpace(c.Query("subcategory")),
		DifficultyLevel: strings.TrimSpace(c.Query("difficulty_level")),
		IsFree:          boolQuery(c, "is_free"),
		Search:          strings.TrimSpace(c.Query("search")),
		Sort:            strings.TrimSpace(c.Query("sort")),
		Page:            page,
		PageSize:        pageSize,
	}

	courses, total, err := h.catalog.Catalog(c.Request.Context(), filter)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"courses": courses,
		"pagination": gin.H{
			"page":        page,
			"per_page":    pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// GET /api/course/categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": categories})
}

// GET /api/course/featured
func (h *CatalogHandler) Featured(c *gin.Context) {
	courses, err := h.catalog.Featured(c.Request.Context(), intQuery(c, "limit", 8))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/course/trending
func (h *CatalogHandler) Trending(c *gin.Context) {
	courses, err := h.catalog.Trending(c.Request.Context(), intQuery(c, "limit", 10))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/course/:id/similar
func (h *CatalogHandler) Similar(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	courses, err := h.catalog.Similar(c.Request.Context(), courseID, intQuery(c, "limit", 6))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/course/stats
func (h *CatalogHandler) Stats(c *gin.Context) {
	stats, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}
