package services

import (
	"time"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

type HealthStatus struct {
	Status string    `json:"status"`
	Uptime float64   `json:"uptime"`
	Date   time.Time `json:"date"`
}

type HealthService interface {
	Status() HealthStatus
}

type healthService struct {
	log       *logger.Logger
	startedAt time.Time
}

func NewHealthService(baseLog *logger.Logger) HealthService {
	return &healthService{
		log:       baseLog.With("service", "HealthService"),
		startedAt: time.Now(),
	}
}

func (hs *healthService) Status() HealthStatus {
	uptime := time.Since(hs.startedAt).Seconds()
	return HealthStatus{
		Status: "OK",
		Uptime: float64(int(uptime*1000)) / 1000,
		Date:   time.Now(),
	}
}
