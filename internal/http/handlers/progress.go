package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

type lessonProgressRequest struct {
	TimeSpent   int  `json:"time_spent" binding:"gte=0"`
	WatchTime   int  `json:"watch_time" binding:"gte=0"`
	IsCompleted bool `json:"is_completed"`
}

// POST /api/course/lesson/:lessonId/progress
func (h *ProgressHandler) UpdateLessonProgress(c *gin.Context) {
	lessonID, ok := uuidParam(c, "lessonId", "INVALID_LESSON_ID")
	if !ok {
		return
	}
	var req lessonProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	progress, err := h.progress.UpdateLessonProgress(c.Request.Context(), &services.LessonProgressInput{
		LessonID:    lessonID,
		TimeSpent:   req.TimeSpent,
		WatchTime:   req.WatchTime,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": progress})
}

// GET /api/course/:id/progress
func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	view, err := h.progress.CourseProgress(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/course/progress/stats
func (h *ProgressHandler) Stats(c *gin.Context) {
	timeframe := strings.TrimSpace(c.DefaultQuery("timeframe", "month"))

	stats, err := h.progress.Stats(c.Request.Context(), timeframe)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/course/learning-path
func (h *ProgressHandler) LearningPath(c *gin.Context) {
	paths, err := h.progress.LearningPath(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learning_path": paths})
}
