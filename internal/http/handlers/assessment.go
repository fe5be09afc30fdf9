package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/genasnewdar/lever-stg/internal/types"
	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

type AssessmentHandler struct {
	assessment services.AssessmentService
}

func NewAssessmentHandler(assessment services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessment: assessment}
}

type startTestRequest struct {
	TestID uuid.UUID `json:"test_id" binding:"required"`
}

type finishTestRequest struct {
	AttemptID uuid.UUID `json:"attempt_id" binding:"required"`
}

type submitResponseRequest struct {
	AttemptID        uuid.UUID      `json:"attempt_id" binding:"required"`
	QuestionID       uuid.UUID      `json:"question_id" binding:"required"`
	QuestionType     string         `json:"question_type" binding:"required"`
	SelectedOptionID string         `json:"selected_option_id"`
	AdditionalData   datatypes.JSON `json:"additional_data"`
}

func (r *submitResponseRequest) toInput() *services.SubmitResponseInput {
	return &services.SubmitResponseInput{
		AttemptID:        r.AttemptID,
		QuestionID:       r.QuestionID,
		QuestionType:     types.QuestionType(r.QuestionType),
		SelectedOptionID: r.SelectedOptionID,
		AdditionalData:   r.AdditionalData,
	}
}

// GET /api/test/list
func (h *AssessmentHandler) ListTests(c *gin.Context) {
	page, pageSize := pageParams(c, 10, 100)
	tests, err := h.assessment.ListTests(c.Request.Context(), page, pageSize)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, tests)
}

// GET /api/test/:id
func (h *AssessmentHandler) GetTest(c *gin.Context) {
	testID, ok := uuidParam(c, "id", "INVALID_TEST_ID")
	if !ok {
		return
	}

	test, err := h.assessment.GetTest(c.Request.Context(), testID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": test})
}

// POST /api/test/start
func (h *AssessmentHandler) StartTest(c *gin.Context) {
	var req startTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	attempt, err := h.assessment.StartTest(c.Request.Context(), req.TestID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"attempt": attempt})
}

// POST /api/test/response/submit
func (h *AssessmentHandler) SubmitResponse(c *gin.Context) {
	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	resp, err := h.assessment.SubmitResponse(c.Request.Context(), req.toInput())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"response": resp})
}

// POST /api/test/response/submit-batch
func (h *AssessmentHandler) SubmitBatch(c *gin.Context) {
	var reqs []submitResponseRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}
	if len(reqs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "EMPTY_BATCH", nil)
		return
	}

	inputs := make([]*services.SubmitResponseInput, 0, len(reqs))
	for i := range reqs {
		inputs = append(inputs, reqs[i].toInput())
	}

	results, err := h.assessment.SubmitBatch(c.Request.Context(), inputs)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"status":  "batch_processing_completed",
		"results": results,
	})
}

// POST /api/test/finish
func (h *AssessmentHandler) FinishAttempt(c *gin.Context) {
	var req finishTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	report, err := h.assessment.FinishAttempt(c.Request.Context(), req.AttemptID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

// GET /api/test/attempt/:id
func (h *AssessmentHandler) AttemptDetail(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id", "INVALID_ATTEMPT_ID")
	if !ok {
		return
	}

	detail, err := h.assessment.AttemptDetail(c.Request.Context(), attemptID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// GET /api/test/attempts/my
func (h *AssessmentHandler) MyAttempts(c *gin.Context) {
	page, pageSize := pageParams(c, 10, 100)
	attempts, err := h.assessment.MyAttempts(c.Request.Context(), page, pageSize)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, attempts)
}
