package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w
}

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"typed not found", apierr.NotFound("COURSE_NOT_FOUND"), http.StatusNotFound, "COURSE_NOT_FOUND"},
		{"typed bad request", apierr.BadRequest("INVALID_RATING", errors.New("rating out of range")), http.StatusBadRequest, "INVALID_RATING"},
		{"wrapped typed", fmt.Errorf("enroll: %w", apierr.Conflict("ALREADY_ENROLLED")), http.StatusConflict, "ALREADY_ENROLLED"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := record(func(c *gin.Context) { RespondServiceError(c, tc.err) })

			if w.Code != tc.wantStatus {
				t.Fatalf("status: got %d want %d", w.Code, tc.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code: got %q want %q", envelope.Error.Code, tc.wantCode)
			}
			if envelope.Error.Message == "" {
				t.Fatalf("message empty")
			}
		})
	}
}

func TestRespondErrorFallbackMessage(t *testing.T) {
	w := record(func(c *gin.Context) { RespondError(c, http.StatusBadRequest, "BAD_INPUT", nil) })

	var envelope ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	// With no wrapped error the code doubles as the message.
	if envelope.Error.Message != "BAD_INPUT" {
		t.Fatalf("message: got %q", envelope.Error.Message)
	}
}
