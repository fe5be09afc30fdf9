package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
)

type UserHandler struct {
	user services.UserService
}

func NewUserHandler(user services.UserService) *UserHandler {
	return &UserHandler{user: user}
}

// GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	me, err := h.user.Me(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": me})
}

// PUT /api/user/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	me, err := h.user.UpdateMe(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": me})
}

// GET /api/user/school-options
func (h *UserHandler) SchoolOptions(c *gin.Context) {
	schools, err := h.user.SchoolOptions(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"schools": schools})
}
