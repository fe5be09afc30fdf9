package app

import (
	"github.com/genasnewdar/lever-stg/internal/platform/envutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

type Config struct {
	Port        string
	Env         string
	ServiceName string
	Version     string
	JWTSecret   string
	APIKeyHash  string
	RedisAddr   string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Env:         envutil.String("ENV", "development"),
		ServiceName: envutil.String("SERVICE_NAME", "lever-stg"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
		JWTSecret:   envutil.String("JWT_SECRET_KEY", ""),
		APIKeyHash:  envutil.String("API_KEY_HASH", ""),
		RedisAddr:   envutil.String("REDIS_ADDR", ""),
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET_KEY is not set, bearer tokens cannot be verified")
	}
	if cfg.APIKeyHash == "" {
		log.Warn("API_KEY_HASH is not set, system endpoints will reject every key")
	}
	return cfg
}
