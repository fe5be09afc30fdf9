package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

// ContentHandler delivers course structure and lesson material to
// authenticated students. Enrollment gating happens in the service.
type ContentHandler struct {
	content services.ContentService
}

func NewContentHandler(content services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// GET /api/course/:id
func (h *ContentHandler) Course(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	view, err := h.content.CourseStructure(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/course/:id/module/:moduleId
func (h *ContentHandler) Module(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}
	moduleID, ok := uuidParam(c, "moduleId", "INVALID_MODULE_ID")
	if !ok {
		return
	}

	view, err := h.content.ModuleDetail(c.Request.Context(), courseID, moduleID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/course/lesson/:lessonId
func (h *ContentHandler) Lesson(c *gin.Context) {
	lessonID, ok := uuidParam(c, "lessonId", "INVALID_LESSON_ID")
	if !ok {
		return
	}

	view, err := h.content.LessonDetail(c.Request.Context(), lessonID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/course/:id/announcements
func (h *ContentHandler) Announcements(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	announcements, err := h.content.Announcements(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"announcements": announcements})
}

// GET /api/course/:id/assignments
func (h *ContentHandler) Assignments(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	assignments, err := h.content.Assignments(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignments": assignments})
}

// GET /api/course/:id/forums
func (h *ContentHandler) Forums(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	forums, err := h.content.Forums(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"forums": forums})
}
