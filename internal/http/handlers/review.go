package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/data/repos/learning"
	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

type ReviewHandler struct {
	review services.ReviewService
}

func NewReviewHandler(review services.ReviewService) *ReviewHandler {
	return &ReviewHandler{review: review}
}

type reviewCreateRequest struct {
	Rating     int     `json:"rating" binding:"required,min=1,max=5"`
	ReviewText *string `json:"review_text"`
}

type reviewUpdateRequest struct {
	Rating     *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	ReviewText *string `json:"review_text"`
}

// POST /api/course/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}
	var req reviewCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	review, err := h.review.Create(c.Request.Context(), courseID, &services.ReviewCreateInput{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"review": review})
}

// PUT /api/course/reviews/:reviewId
func (h *ReviewHandler) Update(c *gin.Context) {
	reviewID, ok := uuidParam(c, "reviewId", "INVALID_REVIEW_ID")
	if !ok {
		return
	}
	var req reviewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	review, err := h.review.Update(c.Request.Context(), reviewID, &services.ReviewUpdateInput{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"review": review})
}

// DELETE /api/course/reviews/:reviewId
func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewID, ok := uuidParam(c, "reviewId", "INVALID_REVIEW_ID")
	if !ok {
		return
	}

	if err := h.review.Delete(c.Request.Context(), reviewID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/course/:id/reviews
func (h *ReviewHandler) ListByCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	page, pageSize := pageParams(c, 10, 50)
	reviews, err := h.review.ListByCourse(c.Request.Context(), courseID, learning.ReviewFilter{
		Page:      page,
		PageSize:  pageSize,
		Rating:    intQuery(c, "rating", 0),
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		SortOrder: strings.TrimSpace(c.Query("sort_order")),
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, reviews)
}

// GET /api/course/my-reviews
func (h *ReviewHandler) MyReviews(c *gin.Context) {
	page, pageSize := pageParams(c, 10, 50)
	reviews, total, err := h.review.MyReviews(c.Request.Context(), page, pageSize)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"reviews": reviews,
		"pagination": gin.H{
			"page":        page,
			"per_page":    pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// GET /api/course/:id/rating-stats
func (h *ReviewHandler) RatingStats(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	stats, err := h.review.RatingStats(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/course/:id/can-review
func (h *ReviewHandler) CanReview(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	view, err := h.review.CanReview(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/course/top-rated
func (h *ReviewHandler) TopRated(c *gin.Context) {
	courses, err := h.review.TopRated(
		c.Request.Context(),
		strings.TrimSpace(c.Query("category")),
		intQuery(c, "min_reviews", 5),
		intQuery(c, "limit", 10),
	)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/course/recent-reviews
func (h *ReviewHandler) Recent(c *gin.Context) {
	reviews, err := h.review.Recent(
		c.Request.Context(),
		intQuery(c, "days", 7),
		intQuery(c, "limit", 20),
	)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviews": reviews})
}
