package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type AdminUserHandler struct {
	users services.AdminUserService
}

func NewAdminUserHandler(users services.AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{users: users}
}

type updateRoleRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	NewRole string `json:"new_role" binding:"required,usertype"`
	Reason  string `json:"reason" binding:"max=500"`
}

type bulkUpdateRolesRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1,max=50"`
	NewRole string   `json:"new_role" binding:"required,usertype"`
	Reason  string   `json:"reason" binding:"max=500"`
}

// GET /api/admin/user/list
func (h *AdminUserHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c, 20, 100)
	users, err := h.users.ListUsers(c.Request.Context(), services.AdminUserQuery{
		Search:    strings.TrimSpace(c.Query("search")),
		UserType:  strings.ToUpper(strings.TrimSpace(c.Query("user_type"))),
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		SortOrder: strings.TrimSpace(c.Query("sort_order")),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, users)
}

// GET /api/admin/user/:id
func (h *AdminUserHandler) Detail(c *gin.Context) {
	auth0ID := c.Param("id")
	detail, err := h.users.UserDetail(c.Request.Context(), auth0ID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// PUT /api/admin/user/:id/role
func (h *AdminUserHandler) UpdateRole(c *gin.Context) {
	auth0ID := c.Param("id")
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}
	if req.UserID != auth0ID {
		response.RespondError(c, http.StatusBadRequest, "USER_ID_MISMATCH", nil)
		return
	}

	newType := types.UserType(strings.ToUpper(strings.TrimSpace(req.NewRole)))
	result, err := h.users.UpdateRole(c.Request.Context(), auth0ID, newType)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// PUT /api/admin/user/roles/bulk
func (h *AdminUserHandler) BulkUpdateRoles(c *gin.Context) {
	var req bulkUpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	newType := types.UserType(strings.ToUpper(strings.TrimSpace(req.NewRole)))
	result, err := h.users.BulkUpdateRoles(c.Request.Context(), req.UserIDs, newType)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// GET /api/admin/user/roles/stats
func (h *AdminUserHandler) RoleStats(c *gin.Context) {
	stats, err := h.users.RoleStats(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}
