package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type AdminEmployeeHandler struct {
	employees services.AdminEmployeeService
}

func NewAdminEmployeeHandler(employees services.AdminEmployeeService) *AdminEmployeeHandler {
	return &AdminEmployeeHandler{employees: employees}
}

type createEmployeeRequest struct {
	FullName   string `json:"full_name" binding:"required,max=200"`
	Email      string `json:"email" binding:"required,email"`
	Auth0ID    string `json:"auth0_id"`
	Type       string `json:"type" binding:"omitempty,usertype"`
	Position   string `json:"position" binding:"max=100"`
	Department string `json:"department" binding:"max=100"`
}

type updateEmployeeRequest struct {
	FullName   *string `json:"full_name" binding:"omitempty,max=200"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Type       *string `json:"type" binding:"omitempty,usertype"`
	Position   *string `json:"position" binding:"omitempty,max=100"`
	Department *string `json:"department" binding:"omitempty,max=100"`
}

// GET /api/admin/employee/list
func (h *AdminEmployeeHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c, 20, 100)
	employees, err := h.employees.ListEmployees(c.Request.Context(), services.AdminEmployeeQuery{
		Search:    strings.TrimSpace(c.Query("search")),
		Type:      strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		SortOrder: strings.TrimSpace(c.Query("sort_order")),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, employees)
}

// GET /api/admin/employee/:id
func (h *AdminEmployeeHandler) Get(c *gin.Context) {
	employeeID, ok := uuidParam(c, "id", "INVALID_EMPLOYEE_ID")
	if !ok {
		return
	}

	employee, err := h.employees.GetEmployee(c.Request.Context(), employeeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"employee": employee})
}

// POST /api/admin/employee
func (h *AdminEmployeeHandler) Create(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	input := services.CreateEmployeeInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Auth0ID:    req.Auth0ID,
		Position:   req.Position,
		Department: req.Department,
	}
	if req.Type != "" {
		t := types.UserType(strings.ToUpper(req.Type))
		input.Type = &t
	}

	employee, err := h.employees.CreateEmployee(c.Request.Context(), input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"employee": employee})
}

// PUT /api/admin/employee/:id
func (h *AdminEmployeeHandler) Update(c *gin.Context) {
	employeeID, ok := uuidParam(c, "id", "INVALID_EMPLOYEE_ID")
	if !ok {
		return
	}
	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	input := services.UpdateEmployeeInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
	}
	if req.Type != nil {
		t := types.UserType(strings.ToUpper(*req.Type))
		input.Type = &t
	}

	employee, err := h.employees.UpdateEmployee(c.Request.Context(), employeeID, input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"employee": employee})
}

// DELETE /api/admin/employee/:id
func (h *AdminEmployeeHandler) Delete(c *gin.Context) {
	employeeID, ok := uuidParam(c, "id", "INVALID_EMPLOYEE_ID")
	if !ok {
		return
	}

	if err := h.employees.DeleteEmployee(c.Request.Context(), employeeID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
