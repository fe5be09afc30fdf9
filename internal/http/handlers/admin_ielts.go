package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type AdminIeltsHandler struct {
	ielts services.AdminIeltsService
}

func NewAdminIeltsHandler(ielts services.AdminIeltsService) *AdminIeltsHandler {
	return &AdminIeltsHandler{ielts: ielts}
}

type updateIeltsStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type gradeBandRequest struct {
	Band     *float64 `json:"band" binding:"required,gte=0,lte=9"`
	Feedback string   `json:"feedback" binding:"max=5000"`
}

// POST /api/admin/ielts/test
func (h *AdminIeltsHandler) Create(c *gin.Context) {
	var input services.CreateIeltsTestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	test, err := h.ielts.CreateTest(c.Request.Context(), input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"test": test})
}

// GET /api/admin/ielts/test/:id
func (h *AdminIeltsHandler) Get(c *gin.Context) {
	testID, ok := uuidParam(c, "id", "INVALID_TEST_ID")
	if !ok {
		return
	}

	test, err := h.ielts.GetTest(c.Request.Context(), testID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": test})
}

// GET /api/admin/ielts/tests
func (h *AdminIeltsHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c, 10, 100)
	tests, err := h.ielts.ListTests(c.Request.Context(), services.AdminIeltsQuery{
		Status:   types.IeltsTestStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		TestType: types.IeltsTestType(strings.ToUpper(strings.TrimSpace(c.Query("test_type")))),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, tests)
}

// PUT /api/admin/ielts/test/:id/status
func (h *AdminIeltsHandler) UpdateStatus(c *gin.Context) {
	testID, ok := uuidParam(c, "id", "INVALID_TEST_ID")
	if !ok {
		return
	}
	var req updateIeltsStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	status := types.IeltsTestStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	test, err := h.ielts.UpdateStatus(c.Request.Context(), testID, status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": test})
}

// POST /api/admin/ielts/writing/:responseId/grade
func (h *AdminIeltsHandler) GradeWriting(c *gin.Context) {
	responseID, ok := uuidParam(c, "responseId", "INVALID_RESPONSE_ID")
	if !ok {
		return
	}
	var req gradeBandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	attempt, err := h.ielts.GradeWriting(c.Request.Context(), responseID, *req.Band, req.Feedback)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt": attempt})
}

// POST /api/admin/ielts/speaking/:responseId/grade
func (h *AdminIeltsHandler) GradeSpeaking(c *gin.Context) {
	responseID, ok := uuidParam(c, "responseId", "INVALID_RESPONSE_ID")
	if !ok {
		return
	}
	var req gradeBandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	attempt, err := h.ielts.GradeSpeaking(c.Request.Context(), responseID, *req.Band, req.Feedback)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt": attempt})
}
