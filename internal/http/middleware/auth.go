package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/genasnewdar/lever-stg/internal/http/response"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

const apiKeyHeader = "x-api-key"

// AuthMiddleware guards the two protected tiers: bearer tokens for
// user-facing routes and the shared API key for system callers.
type AuthMiddleware struct {
	log        *logger.Logger
	jwtSecret  []byte
	apiKeyHash string
}

func NewAuthMiddleware(baseLog *logger.Logger, jwtSecret, apiKeyHash string) *AuthMiddleware {
	return &AuthMiddleware{
		log:        baseLog.With("middleware", "AuthMiddleware"),
		jwtSecret:  []byte(jwtSecret),
		apiKeyHash: apiKeyHash,
	}
}

// RequireAuth verifies the HS256 bearer token and stores the token
// subject as the caller identity. Services resolve the user row from it.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "missing or invalid token")
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return am.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			am.log.Debug("Token rejected", "error", err)
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}
		sub, err := claims.GetSubject()
		if err != nil || strings.TrimSpace(sub) == "" {
			abortUnauthorized(c, "token has no subject")
			return
		}

		ctx := ctxutil.WithIdentity(c.Request.Context(), &ctxutil.Identity{Auth0ID: sub})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSystemKey compares the x-api-key header against the configured
// bcrypt hash. System routes carry no user identity.
func (am *AuthMiddleware) RequireSystemKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "missing api key", Code: "MISSING_API_KEY"},
			})
			return
		}
		if am.apiKeyHash == "" {
			am.log.Warn("System route called but API_KEY_HASH is not configured")
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "system access not configured", Code: "INVALID_API_KEY"},
			})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(am.apiKeyHash), []byte(key)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "invalid api key", Code: "INVALID_API_KEY"},
			})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
		Error: response.APIError{Message: msg, Code: "UNAUTHORIZED"},
	})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
