package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

type AdminCourseHandler struct {
	courses services.AdminCourseService
}

func NewAdminCourseHandler(courses services.AdminCourseService) *AdminCourseHandler {
	return &AdminCourseHandler{courses: courses}
}

type setPublishedRequest struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}

// POST /api/admin/course
func (h *AdminCourseHandler) Create(c *gin.Context) {
	var input services.CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	course, err := h.courses.CreateCourse(c.Request.Context(), input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

// PUT /api/admin/course/:id
func (h *AdminCourseHandler) Update(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}
	var input services.UpdateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	course, err := h.courses.UpdateCourse(c.Request.Context(), courseID, input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// GET /api/admin/course/:id
func (h *AdminCourseHandler) Get(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	course, err := h.courses.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// GET /api/admin/course/list
func (h *AdminCourseHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c, 20, 100)
	courses, err := h.courses.ListCourses(c.Request.Context(), services.AdminCourseQuery{
		Category:    strings.TrimSpace(c.Query("category")),
		Subcategory: strings.TrimSpace(c.Query("subcategory")),
		IsPublished: boolQuery(c, "is_published"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, courses)
}

// DELETE /api/admin/course/:id
func (h *AdminCourseHandler) Delete(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	if err := h.courses.DeleteCourse(c.Request.Context(), courseID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// PUT /api/admin/course/:id/publish
func (h *AdminCourseHandler) SetPublished(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}
	var req setPublishedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	course, err := h.courses.SetPublished(c.Request.Context(), courseID, *req.IsPublished)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// GET /api/admin/course/:id/analytics
func (h *AdminCourseHandler) Analytics(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	analytics, err := h.courses.Analytics(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, analytics)
}

// GET /api/admin/course/:id/enrollments
func (h *AdminCourseHandler) Enrollments(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	page, pageSize := pageParams(c, 20, 100)
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	enrollments, err := h.courses.CourseEnrollments(c.Request.Context(), courseID, status, page, pageSize)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, enrollments)
}

// POST /api/admin/course/:id/modules
func (h *AdminCourseHandler) AddModule(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}
	var input services.ModuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	module, err := h.courses.AddModule(c.Request.Context(), courseID, input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": module})
}

// PUT /api/admin/course/modules/:moduleId
func (h *AdminCourseHandler) UpdateModule(c *gin.Context) {
	moduleID, ok := uuidParam(c, "moduleId", "INVALID_MODULE_ID")
	if !ok {
		return
	}
	var input services.UpdateModuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	module, err := h.courses.UpdateModule(c.Request.Context(), moduleID, input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": module})
}

// DELETE /api/admin/course/modules/:moduleId
func (h *AdminCourseHandler) DeleteModule(c *gin.Context) {
	moduleID, ok := uuidParam(c, "moduleId", "INVALID_MODULE_ID")
	if !ok {
		return
	}

	if err := h.courses.DeleteModule(c.Request.Context(), moduleID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
