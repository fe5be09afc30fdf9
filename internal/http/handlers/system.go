package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

// SystemHandler serves machine-to-machine endpoints guarded by the
// shared API key: the Auth0 post-login hook and the scheduler's
// force-finish callbacks.
type SystemHandler struct {
	hook       services.LoginHookService
	assessment services.AssessmentService
	ielts      services.IeltsService
}

func NewSystemHandler(hook services.LoginHookService, assessment services.AssessmentService, ielts services.IeltsService) *SystemHandler {
	return &SystemHandler{hook: hook, assessment: assessment, ielts: ielts}
}

type loginHookRequest struct {
	UserID    string  `json:"user_id" binding:"required"`
	Email     *string `json:"email" binding:"omitempty,email"`
	GivenName string  `json:"given_name"`
	LastName  string  `json:"last_name"`
	Picture   string  `json:"picture"`
}

type systemFinishRequest struct {
	AttemptID uuid.UUID `json:"attempt_id" binding:"required"`
}

// POST /api/system/user/login-hook
func (h *SystemHandler) LoginHook(c *gin.Context) {
	var req loginHookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	user, err := h.hook.ProcessLogin(c.Request.Context(), services.LoginHookInput{
		UserID:    req.UserID,
		Email:     req.Email,
		GivenName: req.GivenName,
		LastName:  req.LastName,
		Picture:   req.Picture,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// POST /api/system/test/finish
func (h *SystemHandler) FinishTest(c *gin.Context) {
	var req systemFinishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	if err := h.assessment.SystemFinish(c.Request.Context(), req.AttemptID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt_id": req.AttemptID, "finished": true})
}

// POST /api/system/ielts/finish
func (h *SystemHandler) FinishIelts(c *gin.Context) {
	var req systemFinishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	attempt, err := h.ielts.FinishExpired(c.Request.Context(), req.AttemptID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt": attempt})
}
