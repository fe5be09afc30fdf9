package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/genasnewdar/lever-stg/internal/http/handlers"
	httpMW "github.com/genasnewdar/lever-stg/internal/http/middleware"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	// ServiceName feeds the otelgin middleware; tracing is skipped
	// when it is empty.
	ServiceName string

	HealthHandler     *httpH.HealthHandler
	UserHandler       *httpH.UserHandler
	CatalogHandler    *httpH.CatalogHandler
	ContentHandler    *httpH.ContentHandler
	EnrollmentHandler *httpH.EnrollmentHandler
	ProgressHandler   *httpH.ProgressHandler
	ReviewHandler     *httpH.ReviewHandler
	AssessmentHandler *httpH.AssessmentHandler
	IeltsHandler      *httpH.IeltsHandler
	AttendanceHandler *httpH.AttendanceHandler
	SystemHandler     *httpH.SystemHandler

	AdminUserHandler       *httpH.AdminUserHandler
	AdminEmployeeHandler   *httpH.AdminEmployeeHandler
	AdminCourseHandler     *httpH.AdminCourseHandler
	AdminAssessmentHandler *httpH.AdminAssessmentHandler
	AdminIeltsHandler      *httpH.AdminIeltsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS())

	api := r.Group("/api")
	{
		// Health
		if cfg.HealthHandler != nil {
			api.GET("/health", cfg.HealthHandler.Status)
		}

		// Public catalog
		if cfg.CatalogHandler != nil {
			api.GET("/course/catalog", cfg.CatalogHandler.Catalog)
			api.GET("/course/categories", cfg.CatalogHandler.Categories)
			api.GET("/course/featured", cfg.CatalogHandler.Featured)
			api.GET("/course/trending", cfg.CatalogHandler.Trending)
			api.GET("/course/stats", cfg.CatalogHandler.Stats)
			api.GET("/course/:id/similar", cfg.CatalogHandler.Similar)
		}

		// Public IELTS reference
		if cfg.IeltsHandler != nil {
			api.GET("/ielts/band-scores", cfg.IeltsHandler.BandScores)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/user/me", cfg.UserHandler.Me)
			protected.PUT("/user/me", cfg.UserHandler.UpdateMe)
			protected.GET("/user/school-options", cfg.UserHandler.SchoolOptions)
		}

		// Course content
		if cfg.ContentHandler != nil {
			protected.GET("/course/:id", cfg.ContentHandler.Course)
			protected.GET("/course/:id/module/:moduleId", cfg.ContentHandler.Module)
			protected.GET("/course/lesson/:lessonId", cfg.ContentHandler.Lesson)
			protected.GET("/course/:id/announcements", cfg.ContentHandler.Announcements)
			protected.GET("/course/:id/assignments", cfg.ContentHandler.Assignments)
			protected.GET("/course/:id/forums", cfg.ContentHandler.Forums)
		}

		// Enrollment
		if cfg.EnrollmentHandler != nil {
			protected.POST("/course/enroll", cfg.EnrollmentHandler.Enroll)
			protected.GET("/course/enrollments/my", cfg.EnrollmentHandler.MyEnrollments)
			protected.GET("/course/:id/enrollment-status", cfg.EnrollmentHandler.Status)
			protected.PUT("/course/enrollment/:id/status", cfg.EnrollmentHandler.UpdateStatus)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.POST("/course/lesson/:lessonId/progress", cfg.ProgressHandler.UpdateLessonProgress)
			protected.GET("/course/:id/progress", cfg.ProgressHandler.CourseProgress)
			protected.GET("/course/progress/stats", cfg.ProgressHandler.Stats)
			protected.GET("/course/learning-path", cfg.ProgressHandler.LearningPath)
		}

		// Reviews
		if cfg.ReviewHandler != nil {
			protected.POST("/course/:id/reviews", cfg.ReviewHandler.Create)
			protected.GET("/course/:id/reviews", cfg.ReviewHandler.ListByCourse)
			protected.PUT("/course/reviews/:reviewId", cfg.ReviewHandler.Update)
			protected.DELETE("/course/reviews/:reviewId", cfg.ReviewHandler.Delete)
			protected.GET("/course/my-reviews", cfg.ReviewHandler.MyReviews)
			protected.GET("/course/:id/rating-stats", cfg.ReviewHandler.RatingStats)
			protected.GET("/course/:id/can-review", cfg.ReviewHandler.CanReview)
			protected.GET("/course/top-rated", cfg.ReviewHandler.TopRated)
			protected.GET("/course/recent-reviews", cfg.ReviewHandler.Recent)
		}

		// Tests
		if cfg.AssessmentHandler != nil {
			protected.GET("/test/list", cfg.AssessmentHandler.ListTests)
			protected.GET("/test/:id", cfg.AssessmentHandler.GetTest)
			protected.POST("/test/start", cfg.AssessmentHandler.StartTest)
			protected.POST("/test/response/submit", cfg.AssessmentHandler.SubmitResponse)
			protected.POST("/test/response/submit-batch", cfg.AssessmentHandler.SubmitBatch)
			protected.POST("/test/finish", cfg.AssessmentHandler.FinishAttempt)
			protected.GET("/test/attempt/:id", cfg.AssessmentHandler.AttemptDetail)
			protected.GET("/test/attempts/my", cfg.AssessmentHandler.MyAttempts)
		}

		// IELTS
		if cfg.IeltsHandler != nil {
			protected.GET("/ielts/tests", cfg.IeltsHandler.ListTests)
			protected.GET("/ielts/tests/:id", cfg.IeltsHandler.GetTest)
			protected.POST("/ielts/attempts/start", cfg.IeltsHandler.StartAttempt)
			protected.GET("/ielts/attempts/my", cfg.IeltsHandler.MyAttempts)
			protected.GET("/ielts/attempts/:id", cfg.IeltsHandler.AttemptDetail)
			protected.POST("/ielts/attempts/:id/listening/responses", cfg.IeltsHandler.SubmitListening)
			protected.POST("/ielts/attempts/:id/reading/responses", cfg.IeltsHandler.SubmitReading)
			protected.POST("/ielts/attempts/:id/writing/responses", cfg.IeltsHandler.SubmitWriting)
			protected.POST("/ielts/attempts/:id/speaking/responses", cfg.IeltsHandler.SubmitSpeaking)
			protected.POST("/ielts/attempts/:id/complete-module", cfg.IeltsHandler.CompleteModule)
			protected.GET("/ielts/vocabulary", cfg.IeltsHandler.Vocabulary)
			protected.GET("/ielts/grammar-points", cfg.IeltsHandler.GrammarPoints)
			protected.GET("/ielts/study-materials", cfg.IeltsHandler.StudyMaterials)
		}

		// Attendance
		if cfg.AttendanceHandler != nil {
			protected.POST("/attendance/event", cfg.AttendanceHandler.Record)
			protected.GET("/attendance/history", cfg.AttendanceHandler.History)
			protected.GET("/attendance/status", cfg.AttendanceHandler.Status)
			protected.GET("/attendance/office-info", cfg.AttendanceHandler.OfficeInfo)
		}
	}

	system := api.Group("/system")
	{
		if cfg.AuthMiddleware != nil {
			system.Use(cfg.AuthMiddleware.RequireSystemKey())
		}

		if cfg.SystemHandler != nil {
			system.POST("/user/login-hook", cfg.SystemHandler.LoginHook)
			system.POST("/test/finish", cfg.SystemHandler.FinishTest)
			system.POST("/ielts/finish", cfg.SystemHandler.FinishIelts)
		}
	}

	admin := api.Group("/admin")
	{
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AdminUserHandler != nil {
			admin.GET("/user/list", cfg.AdminUserHandler.List)
			admin.GET("/user/:id", cfg.AdminUserHandler.Detail)
			admin.PUT("/user/:id/role", cfg.AdminUserHandler.UpdateRole)
			admin.PUT("/user/roles/bulk", cfg.AdminUserHandler.BulkUpdateRoles)
			admin.GET("/user/roles/stats", cfg.AdminUserHandler.RoleStats)
		}

		if cfg.AdminEmployeeHandler != nil {
			admin.GET("/employee/list", cfg.AdminEmployeeHandler.List)
			admin.GET("/employee/:id", cfg.AdminEmployeeHandler.Get)
			admin.POST("/employee", cfg.AdminEmployeeHandler.Create)
			admin.PUT("/employee/:id", cfg.AdminEmployeeHandler.Update)
			admin.DELETE("/employee/:id", cfg.AdminEmployeeHandler.Delete)
		}

		if cfg.AdminCourseHandler != nil {
			admin.POST("/course", cfg.AdminCourseHandler.Create)
			admin.GET("/course/list", cfg.AdminCourseHandler.List)
			admin.GET("/course/:id", cfg.AdminCourseHandler.Get)
			admin.PUT("/course/:id", cfg.AdminCourseHandler.Update)
			admin.DELETE("/course/:id", cfg.AdminCourseHandler.Delete)
			admin.PUT("/course/:id/publish", cfg.AdminCourseHandler.SetPublished)
			admin.GET("/course/:id/analytics", cfg.AdminCourseHandler.Analytics)
			admin.GET("/course/:id/enrollments", cfg.AdminCourseHandler.Enrollments)
			admin.POST("/course/:id/modules", cfg.AdminCourseHandler.AddModule)
			admin.PUT("/course/modules/:moduleId", cfg.AdminCourseHandler.UpdateModule)
			admin.DELETE("/course/modules/:moduleId", cfg.AdminCourseHandler.DeleteModule)
		}

		if cfg.AdminAssessmentHandler != nil {
			admin.POST("/test", cfg.AdminAssessmentHandler.Create)
			admin.GET("/test/list", cfg.AdminAssessmentHandler.List)
			admin.GET("/test/:id", cfg.AdminAssessmentHandler.Get)
			admin.DELETE("/test/:id", cfg.AdminAssessmentHandler.Delete)
		}

		if cfg.AdminIeltsHandler != nil {
			admin.POST("/ielts/test", cfg.AdminIeltsHandler.Create)
			admin.GET("/ielts/tests", cfg.AdminIeltsHandler.List)
			admin.GET("/ielts/test/:id", cfg.AdminIeltsHandler.Get)
			admin.PUT("/ielts/test/:id/status", cfg.AdminIeltsHandler.UpdateStatus)
			admin.POST("/ielts/writing/:responseId/grade", cfg.AdminIeltsHandler.GradeWriting)
			admin.POST("/ielts/speaking/:responseId/grade", cfg.AdminIeltsHandler.GradeSpeaking)
		}
	}

	return r
}
