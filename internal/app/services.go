package app

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/services"
)

type Services struct {
	Health    services.HealthService
	User      services.UserService
	LoginHook services.LoginHookService

	Catalog    services.CatalogService
	Content    services.ContentService
	Enrollment services.EnrollmentService
	Progress   services.ProgressService
	Review     services.ReviewService

	Assessment services.AssessmentService
	Ielts      services.IeltsService
	Attendance services.AttendanceService
	Scheduler  services.SchedulerService

	AdminUser       services.AdminUserService
	AdminEmployee   services.AdminEmployeeService
	AdminCourse     services.AdminCourseService
	AdminAssessment services.AdminAssessmentService
	AdminIelts      services.AdminIeltsService
}

func wireServices(db *gorm.DB, log *logger.Logger, clients Clients, r Repos) Services {
	log.Info("Wiring services...")

	scheduler := services.NewSchedulerService(clients.Redis, log, r.Attempt, r.IeltsAttempt)

	assessment := services.NewAssessmentService(db, log, r.Test, r.Attempt, r.Response, r.User, scheduler)
	ielts := services.NewIeltsService(db, log, r.IeltsTest, r.IeltsAttempt, r.IeltsResponse, r.IeltsReference, scheduler)

	// The scheduler calls back into the owning service when a deadline
	// fires, so handlers are registered once both sides exist.
	scheduler.SetTestExpiryHandler(assessment.SystemFinish)
	scheduler.SetIeltsExpiryHandler(func(ctx context.Context, attemptID uuid.UUID) error {
		_, err := ielts.FinishExpired(ctx, attemptID)
		return err
	})

	return Services{
		Health:    services.NewHealthService(log),
		User:      services.NewUserService(db, log, r.User, r.School),
		LoginHook: services.NewLoginHookService(db, log, r.User, r.Employee),

		Catalog:    services.NewCatalogService(log, clients.Redis, r.Course),
		Content:    services.NewContentService(db, log, r.Course, r.Module, r.Lesson, r.Enrollment, r.Community),
		Enrollment: services.NewEnrollmentService(db, log, r.Course, r.Enrollment),
		Progress: services.NewProgressService(
			db, log,
			r.Course, r.Module, r.Lesson,
			r.Enrollment, r.CourseProgress, r.ModuleProgress, r.LessonProgress,
		),
		Review: services.NewReviewService(db, log, r.Course, r.Enrollment, r.Review),

		Assessment: assessment,
		Ielts:      ielts,
		Attendance: services.NewAttendanceService(db, log, r.Employee, r.Attendance),
		Scheduler:  scheduler,

		AdminUser:     services.NewAdminUserService(db, log, r.User, r.Course, r.Enrollment, r.Review),
		AdminEmployee: services.NewAdminEmployeeService(db, log, r.User, r.Employee),
		AdminCourse: services.NewAdminCourseService(
			db, log,
			r.User, r.Course, r.Module,
			r.Enrollment, r.CourseProgress, r.ModuleProgress,
		),
		AdminAssessment: services.NewAdminAssessmentService(db, log, r.User, r.Test),
		AdminIelts:      services.NewAdminIeltsService(db, log, r.User, r.IeltsTest, r.IeltsAttempt, r.IeltsResponse),
	}
}
