package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type EnrollmentHandler struct {
	enrollment services.EnrollmentService
}

func NewEnrollmentHandler(enrollment services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollment: enrollment}
}

type enrollRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

type enrollmentStatusRequest struct {
	Status string `json:"status" binding:"required,enrollmentstatus"`
}

// POST /api/course/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	enrollment, err := h.enrollment.Enroll(c.Request.Context(), req.CourseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": enrollment})
}

// GET /api/course/enrollments/my
func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	enrollments, err := h.enrollment.MyEnrollments(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollments": enrollments})
}

// GET /api/course/:id/enrollment-status
func (h *EnrollmentHandler) Status(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "INVALID_COURSE_ID")
	if !ok {
		return
	}

	view, err := h.enrollment.Status(c.Request.Context(), courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PUT /api/course/enrollment/:id/status
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	enrollmentID, ok := uuidParam(c, "id", "INVALID_ENROLLMENT_ID")
	if !ok {
		return
	}
	var req enrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ENROLLMENT_STATUS", err)
		return
	}

	status := types.EnrollmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	enrollment, err := h.enrollment.UpdateStatus(c.Request.Context(), enrollmentID, status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": enrollment})
}
