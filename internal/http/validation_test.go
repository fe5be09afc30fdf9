package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func bindStatus(t *testing.T, body string) int {
	t.Helper()

	gin.SetMode(gin.TestMode)
	RegisterValidators()

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req struct {
			EventType string `json:"event_type" binding:"required,attendancetype"`
			Role      string `json:"role" binding:"omitempty,usertype"`
			Module    string `json:"module" binding:"omitempty,ieltsmodule"`
			Status    string `json:"status" binding:"omitempty,enrollmentstatus"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w.Code
}

func TestEnumBindingTags(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"valid check in", `{"event_type":"CHECK_IN"}`, http.StatusOK},
		{"lowercase accepted", `{"event_type":"check_out"}`, http.StatusOK},
		{"unknown event", `{"event_type":"BREAK"}`, http.StatusBadRequest},
		{"missing required", `{}`, http.StatusBadRequest},
		{"valid role", `{"event_type":"CHECK_IN","role":"ADMIN"}`, http.StatusOK},
		{"unknown role", `{"event_type":"CHECK_IN","role":"OWNER"}`, http.StatusBadRequest},
		{"valid module", `{"event_type":"CHECK_IN","module":"LISTENING"}`, http.StatusOK},
		{"unknown module", `{"event_type":"CHECK_IN","module":"GRAMMAR"}`, http.StatusBadRequest},
		{"valid status", `{"event_type":"CHECK_IN","status":"ACTIVE"}`, http.StatusOK},
		{"unknown status", `{"event_type":"CHECK_IN","status":"PAUSED"}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bindStatus(t, tc.body); got != tc.want {
				t.Fatalf("status: got %d want %d", got, tc.want)
			}
		})
	}
}
