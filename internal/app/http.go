package app

import (
	"github.com/gin-gonic/gin"

	"github.com/genasnewdar/lever-stg/internal/http"
	httpH "github.com/genasnewdar/lever-stg/internal/http/handlers"
	httpMW "github.com/genasnewdar/lever-stg/internal/http/middleware"
	"github.com/genasnewdar/lever-stg/internal/observability"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	User       *httpH.UserHandler
	Catalog    *httpH.CatalogHandler
	Content    *httpH.ContentHandler
	Enrollment *httpH.EnrollmentHandler
	Progress   *httpH.ProgressHandler
	Review     *httpH.ReviewHandler
	Assessment *httpH.AssessmentHandler
	Ielts      *httpH.IeltsHandler
	Attendance *httpH.AttendanceHandler
	System     *httpH.SystemHandler

	AdminUser       *httpH.AdminUserHandler
	AdminEmployee   *httpH.AdminEmployeeHandler
	AdminCourse     *httpH.AdminCourseHandler
	AdminAssessment *httpH.AdminAssessmentHandler
	AdminIelts      *httpH.AdminIeltsHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(services.Health),
		User:       httpH.NewUserHandler(services.User),
		Catalog:    httpH.NewCatalogHandler(services.Catalog),
		Content:    httpH.NewContentHandler(services.Content),
		Enrollment: httpH.NewEnrollmentHandler(services.Enrollment),
		Progress:   httpH.NewProgressHandler(services.Progress),
		Review:     httpH.NewReviewHandler(services.Review),
		Assessment: httpH.NewAssessmentHandler(services.Assessment),
		Ielts:      httpH.NewIeltsHandler(services.Ielts),
		Attendance: httpH.NewAttendanceHandler(services.Attendance),
		System:     httpH.NewSystemHandler(services.LoginHook, services.Assessment, services.Ielts),

		AdminUser:       httpH.NewAdminUserHandler(services.AdminUser),
		AdminEmployee:   httpH.NewAdminEmployeeHandler(services.AdminEmployee),
		AdminCourse:     httpH.NewAdminCourseHandler(services.AdminCourse),
		AdminAssessment: httpH.NewAdminAssessmentHandler(services.AdminAssessment),
		AdminIelts:      httpH.NewAdminIeltsHandler(services.AdminIelts),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecret, cfg.APIKeyHash),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	serviceName := ""
	if observability.Enabled() {
		serviceName = cfg.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.Auth,
		ServiceName:    serviceName,

		HealthHandler:     handlers.Health,
		UserHandler:       handlers.User,
		CatalogHandler:    handlers.Catalog,
		ContentHandler:    handlers.Content,
		EnrollmentHandler: handlers.Enrollment,
		ProgressHandler:   handlers.Progress,
		ReviewHandler:     handlers.Review,
		AssessmentHandler: handlers.Assessment,
		IeltsHandler:      handlers.Ielts,
		AttendanceHandler: handlers.Attendance,
		SystemHandler:     handlers.System,

		AdminUserHandler:       handlers.AdminUser,
		AdminEmployeeHandler:   handlers.AdminEmployee,
		AdminCourseHandler:     handlers.AdminCourse,
		AdminAssessmentHandler: handlers.AdminAssessment,
		AdminIeltsHandler:      handlers.AdminIelts,
	})
}
