package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/platform/envutil"
)

// CORS builds the policy from CORS_ALLOW_ORIGINS (comma separated).
// The default wildcard mirrors the open policy the deployments run
// with; credentials are only allowed against an explicit origin list.
func CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With", apiKeyHeader},
	}

	raw := envutil.String("CORS_ALLOW_ORIGINS", "*")
	if raw == "*" {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}

	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
