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

type IeltsHandler struct {
	ielts services.IeltsService
}

func NewIeltsHandler(ielts services.IeltsService) *IeltsHandler {
	return &IeltsHandler{ielts: ielts}
}

type startIeltsAttemptRequest struct {
	TestID uuid.UUID `json:"test_id" binding:"required"`
}

type listeningAnswerRequest struct {
	QuestionID       uuid.UUID  `json:"question_id" binding:"required"`
	AnswerText       string     `json:"answer_text"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
}

type readingAnswerRequest struct {
	QuestionID       uuid.UUID  `json:"question_id" binding:"required"`
	AnswerText       string     `json:"answer_text"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
}

type writingAnswerRequest struct {
	TaskID    uuid.UUID `json:"task_id" binding:"required"`
	EssayText string    `json:"essay_text" binding:"required"`
	WordCount *int      `json:"word_count" binding:"omitempty,gte=0"`
}

type speakingAnswerRequest struct {
	PartID          uuid.UUID `json:"part_id" binding:"required"`
	AudioURL        string    `json:"audio_url"`
	Transcript      string    `json:"transcript"`
	DurationSeconds int       `json:"duration_seconds" binding:"gte=0"`
}

type completeModuleRequest struct {
	Module string `json:"module" binding:"required,ieltsmodule"`
}

// GET /api/ielts/tests
func (h *IeltsHandler) ListTests(c *gin.Context) {
	page, pageSize := pageParams(c, 10, 50)
	testType := types.IeltsTestType(strings.ToUpper(strings.TrimSpace(c.Query("test_type"))))

	tests, err := h.ielts.ListTests(c.Request.Context(), testType, page, pageSize)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, tests)
}

// GET /api/ielts/tests/:id
func (h *IeltsHandler) GetTest(c *gin.Context) {
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

// POST /api/ielts/attempts/start
func (h *IeltsHandler) StartAttempt(c *gin.Context) {
	var req startIeltsAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	attempt, err := h.ielts.StartAttempt(c.Request.Context(), req.TestID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"attempt": attempt})
}

// GET /api/ielts/attempts/my
func (h *IeltsHandler) MyAttempts(c *gin.Context) {
	attempts, err := h.ielts.MyAttempts(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": attempts})
}

// GET /api/ielts/attempts/:id
func (h *IeltsHandler) AttemptDetail(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id", "INVALID_ATTEMPT_ID")
	if !ok {
		return
	}

	attempt, err := h.ielts.AttemptDetail(c.Request.Context(), attemptID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt": attempt})
}

// POST /api/ielts/attempts/:id/listening/responses
func (h *IeltsHandler) SubmitListening(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id", "INVALID_ATTEMPT_ID")
	if !ok {
		return
	}
	var req listeningAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	resp, err := h.ielts.SubmitListening(c.Request.Context(), &services.IeltsListeningAnswer{
		AttemptID:        attemptID,
		QuestionID:       req.QuestionID,
		AnswerText:       req.AnswerText,
		SelectedOptionID: req.SelectedOptionID,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"response": resp})
}

// POST /api/ielts/attempts/:id/reading/responses
func (h *IeltsHandler) SubmitReading(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id", "INVALID_ATTEMPT_ID")
	if !ok {
		return
	}
	var req readingAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	resp, err := h.ielts.SubmitReading(c.Request.Context(), &services.IeltsReadingAnswer{
		AttemptID:        attemptID,
		QuestionID:       req.QuestionID,
		AnswerText:       req.AnswerText,
		SelectedOptionID: req.SelectedOptionID,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"response": resp})
}

// POST /api/ielts/attempts/:id/writing/responses
func (h *IeltsHandler) SubmitWriting(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id", "INVALID_ATTEMPT_ID")
	if !ok {
		return
	}
	var req writingAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	resp, err := h.ielts.SubmitWriting(c.Request.Context(), &services.IeltsWritingAnswer{
		AttemptID: attemptID,
		TaskID:    req.TaskID,
		EssayText: req.EssayText,
		WordCount: req.WordCount,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"response": resp})
}

// POST /api/ielts/attempts/:id/speaking/responses
func (h *IeltsHandler) SubmitSpeaking(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id", "INVALID_ATTEMPT_ID")
	if !ok {
		return
	}
	var req speakingAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	resp, err := h.ielts.SubmitSpeaking(c.Request.Context(), &services.IeltsSpeakingAnswer{
		AttemptID:       attemptID,
		PartID:          req.PartID,
		AudioURL:        req.AudioURL,
		Transcript:      req.Transcript,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"response": resp})
}

// POST /api/ielts/attempts/:id/complete-module
func (h *IeltsHandler) CompleteModule(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id", "INVALID_ATTEMPT_ID")
	if !ok {
		return
	}
	var req completeModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_MODULE", err)
		return
	}

	module := types.IeltsModule(strings.ToUpper(strings.TrimSpace(req.Module)))
	attempt, err := h.ielts.CompleteModule(c.Request.Context(), attemptID, module)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt": attempt})
}

// GET /api/ielts/band-scores
func (h *IeltsHandler) BandScores(c *gin.Context) {
	module := types.IeltsModule(strings.ToUpper(strings.TrimSpace(c.Query("module"))))
	scores, err := h.ielts.BandScores(c.Request.Context(), module)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"band_scores": scores})
}

// GET /api/ielts/vocabulary
func (h *IeltsHandler) Vocabulary(c *gin.Context) {
	words, err := h.ielts.Vocabulary(
		c.Request.Context(),
		strings.TrimSpace(c.Query("topic")),
		strings.TrimSpace(c.Query("level")),
	)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"vocabulary": words})
}

// GET /api/ielts/grammar-points
func (h *IeltsHandler) GrammarPoints(c *gin.Context) {
	points, err := h.ielts.GrammarPoints(c.Request.Context(), strings.TrimSpace(c.Query("level")))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"grammar_points": points})
}

// GET /api/ielts/study-materials
func (h *IeltsHandler) StudyMaterials(c *gin.Context) {
	module := types.IeltsModule(strings.ToUpper(strings.TrimSpace(c.Query("module"))))
	materials, err := h.ielts.StudyMaterials(c.Request.Context(), module)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"study_materials": materials})
}
