package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/genasnewdar/lever-stg/internal/http/handlers"
	httpMW "github.com/genasnewdar/lever-stg/internal/http/middleware"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

// Handlers are constructed over nil services: every request below is
// rejected by routing or middleware before a handler runs.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewRouter(RouterConfig{
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, "router-test-secret", ""),
		UserHandler:       httpH.NewUserHandler(nil),
		AttendanceHandler: httpH.NewAttendanceHandler(nil),
		SystemHandler:     httpH.NewSystemHandler(nil, nil, nil),
	})
}

func TestRouterAuthGating(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"protected user route", http.MethodGet, "/api/user/me", http.StatusUnauthorized},
		{"protected attendance route", http.MethodPost, "/api/attendance/event", http.StatusUnauthorized},
		{"system route without key", http.MethodPost, "/api/system/test/finish", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
		{"unregistered handler route", http.MethodGet, "/api/health", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, nil)
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status: got %d want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRouterRejectsGarbageBearer(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusUnauthorized)
	}
}
