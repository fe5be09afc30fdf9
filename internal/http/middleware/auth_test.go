package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

const testJWTSecret = "middleware-test-secret"

func signToken(t *testing.T, secret, sub string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func testAuthMiddleware(t *testing.T, apiKeyHash string) *AuthMiddleware {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewAuthMiddleware(log, testJWTSecret, apiKeyHash)
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := testAuthMiddleware(t, "")

	var gotSub string
	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/api/user/me", func(c *gin.Context) {
		if id := ctxutil.GetIdentity(c.Request.Context()); id != nil {
			gotSub = id.Auth0ID
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, "auth0|abc123", time.Hour))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if gotSub != "auth0|abc123" {
		t.Fatalf("unexpected identity subject: got=%q want=%q", gotSub, "auth0|abc123")
	}
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := testAuthMiddleware(t, "")

	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/api/user/me", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Token abc"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "auth0|abc123", time.Hour)},
		{"expired", "Bearer " + signToken(t, testJWTSecret, "auth0|abc123", -time.Hour)},
		{"empty subject", "Bearer " + signToken(t, testJWTSecret, "", time.Hour)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRequireSystemKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("super-secret-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash key: %v", err)
	}
	am := testAuthMiddleware(t, string(hash))

	r := gin.New()
	r.Use(am.RequireSystemKey())
	r.POST("/api/system/test/finish", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"valid key", "super-secret-key", http.StatusOK},
		{"wrong key", "guess", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/system/test/finish", nil)
			if tc.key != "" {
				req.Header.Set("x-api-key", tc.key)
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tc.want)
			}
		})
	}
}
