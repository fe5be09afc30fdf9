package app

import (
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

type Repos struct {
	User   repos.UserRepo
	School repos.SchoolRepo

	Course         repos.CourseRepo
	Module         repos.ModuleRepo
	Lesson         repos.LessonRepo
	Enrollment     repos.EnrollmentRepo
	CourseProgress repos.CourseProgressRepo
	ModuleProgress repos.ModuleProgressRepo
	LessonProgress repos.LessonProgressRepo
	Review         repos.ReviewRepo
	Community      repos.CommunityRepo
	Certificate    repos.CertificateRepo

	Test     repos.TestRepo
	Attempt  repos.AttemptRepo
	Response repos.ResponseRepo

	IeltsTest      repos.IeltsTestRepo
	IeltsAttempt   repos.IeltsAttemptRepo
	IeltsResponse  repos.IeltsResponseRepo
	IeltsReference repos.IeltsReferenceRepo

	Employee   repos.EmployeeRepo
	Attendance repos.AttendanceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:   repos.NewUserRepo(db, log),
		School: repos.NewSchoolRepo(db, log),

		Course:         repos.NewCourseRepo(db, log),
		Module:         repos.NewModuleRepo(db, log),
		Lesson:         repos.NewLessonRepo(db, log),
		Enrollment:     repos.NewEnrollmentRepo(db, log),
		CourseProgress: repos.NewCourseProgressRepo(db, log),
		ModuleProgress: repos.NewModuleProgressRepo(db, log),
		LessonProgress: repos.NewLessonProgressRepo(db, log),
		Review:         repos.NewReviewRepo(db, log),
		Community:      repos.NewCommunityRepo(db, log),
		Certificate:    repos.NewCertificateRepo(db, log),

		Test:     repos.NewTestRepo(db, log),
		Attempt:  repos.NewAttemptRepo(db, log),
		Response: repos.NewResponseRepo(db, log),

		IeltsTest:      repos.NewIeltsTestRepo(db, log),
		IeltsAttempt:   repos.NewIeltsAttemptRepo(db, log),
		IeltsResponse:  repos.NewIeltsResponseRepo(db, log),
		IeltsReference: repos.NewIeltsReferenceRepo(db, log),

		Employee:   repos.NewEmployeeRepo(db, log),
		Attendance: repos.NewAttendanceRepo(db, log),
	}
}
