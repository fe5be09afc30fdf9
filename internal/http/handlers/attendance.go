package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/services"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type AttendanceHandler struct {
	attendance services.AttendanceService
}

func NewAttendanceHandler(attendance services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type attendanceLocationRequest struct {
	Latitude  float64  `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude float64  `json:"longitude" binding:"gte=-180,lte=180"`
	Accuracy  *float64 `json:"accuracy" binding:"omitempty,gte=0"`
}

type recordAttendanceRequest struct {
	EventType  string                    `json:"event_type" binding:"required,attendancetype"`
	Location   attendanceLocationRequest `json:"location" binding:"required"`
	DeviceInfo string                    `json:"device_info" binding:"max=200"`
}

// POST /api/attendance/event
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req recordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", err)
		return
	}

	event, err := h.attendance.Record(c.Request.Context(), &services.RecordAttendanceInput{
		EventType: types.AttendanceType(strings.ToUpper(strings.TrimSpace(req.EventType))),
		Location: services.AttendanceLocation{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
			Accuracy:  req.Location.Accuracy,
		},
		DeviceInfo: req.DeviceInfo,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"event": event})
}

// GET /api/attendance/history
func (h *AttendanceHandler) History(c *gin.Context) {
	from, err := timeQuery(c, "start_date")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_START_DATE", err)
		return
	}
	to, err := timeQuery(c, "end_date")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_END_DATE", err)
		return
	}

	page, pageSize := pageParams(c, 50, 200)
	history, err := h.attendance.History(c.Request.Context(), from, to, page, pageSize)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, history)
}

// GET /api/attendance/status
func (h *AttendanceHandler) Status(c *gin.Context) {
	status, err := h.attendance.Status(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, status)
}

// GET /api/attendance/office-info
func (h *AttendanceHandler) OfficeInfo(c *gin.Context) {
	info, err := h.attendance.OfficeInfo(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"office": info})
}

// timeQuery reads an optional timestamp query parameter, accepting
// RFC 3339 or a bare date.
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts, nil
	}
	return nil, fmt.Errorf("invalid %s %q", name, raw)
}
