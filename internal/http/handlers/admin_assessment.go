package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

type AdminAssessmentHandler struct {
	tests services.AdminAssessmentService
}

func NewAdminAssessmentHandler(tests services.AdminAssessmentService) *AdminAssessmentHandler {
	return &AdminAssessmentHandler{tests: tests}
}

// POST /api/admin/test
func (h *AdminAssessmentHandler) Create(c *gin.Context) {
	var input services.CreateTestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	test, err := h.tests.CreateTest(c.Request.Context(), input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"test": test})
}

// GET /api/admin/test/:id
func (h *AdminAssessmentHandler) Get(c *gin.Context) {
	testID, ok := uuidParam(c, "id", "INVALID_TEST_ID")
	if !ok {
		return
	}

	test, err := h.tests.GetTest(c.Request.Context(), testID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": test})
}

// GET /api/admin/test/list
func (h *AdminAssessmentHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c, 10, 100)
	tests, err := h.tests.ListTests(c.Request.Context(), page, pageSize)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, tests)
}

// DELETE /api/admin/test/:id
func (h *AdminAssessmentHandler) Delete(c *gin.Context) {
	testID, ok := uuidParam(c, "id", "INVALID_TEST_ID")
	if !ok {
		return
	}

	if err := h.tests.DeleteTest(c.Request.Context(), testID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
