package repos

import (
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos/assessment"
	"github.com/genasnewdar/lever-stg/internal/data/repos/hr"
	"github.com/genasnewdar/lever-stg/internal/data/repos/ielts"
	"github.com/genasnewdar/lever-stg/internal/data/repos/learning"
	"github.com/genasnewdar/lever-stg/internal/data/repos/user"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

type UserRepo = user.UserRepo
type SchoolRepo = user.SchoolRepo

type CourseRepo = learning.CourseRepo
type ModuleRepo = learning.ModuleRepo
type LessonRepo = learning.LessonRepo
type EnrollmentRepo = learning.EnrollmentRepo
type CourseProgressRepo = learning.CourseProgressRepo
type ModuleProgressRepo = learning.ModuleProgressRepo
type LessonProgressRepo = learning.LessonProgressRepo
type ReviewRepo = learning.ReviewRepo
type CommunityRepo = learning.CommunityRepo
type CertificateRepo = learning.CertificateRepo

type TestRepo = assessment.TestRepo
type AttemptRepo = assessment.AttemptRepo
type ResponseRepo = assessment.ResponseRepo

type IeltsTestRepo = ielts.TestRepo
type IeltsAttemptRepo = ielts.AttemptRepo
type IeltsResponseRepo = ielts.ResponseRepo
type IeltsReferenceRepo = ielts.ReferenceRepo
type IeltsListFilter = ielts.ListFilter

type EmployeeRepo = hr.EmployeeRepo
type AttendanceRepo = hr.AttendanceRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewSchoolRepo(db *gorm.DB, baseLog *logger.Logger) SchoolRepo {
	return user.NewSchoolRepo(db, baseLog)
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return learning.NewModuleRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, baseLog)
}
func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, baseLog)
}
func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return learning.NewCourseProgressRepo(db, baseLog)
}
func NewModuleProgressRepo(db *gorm.DB, baseLog *logger.Logger) ModuleProgressRepo {
	return learning.NewModuleProgressRepo(db, baseLog)
}
func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	return learning.NewLessonProgressRepo(db, baseLog)
}
func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return learning.NewReviewRepo(db, baseLog)
}
func NewCommunityRepo(db *gorm.DB, baseLog *logger.Logger) CommunityRepo {
	return learning.NewCommunityRepo(db, baseLog)
}
func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return learning.NewCertificateRepo(db, baseLog)
}

func NewTestRepo(db *gorm.DB, baseLog *logger.Logger) TestRepo {
	return assessment.NewTestRepo(db, baseLog)
}
func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return assessment.NewAttemptRepo(db, baseLog)
}
func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return assessment.NewResponseRepo(db, baseLog)
}

func NewIeltsTestRepo(db *gorm.DB, baseLog *logger.Logger) IeltsTestRepo {
	return ielts.NewTestRepo(db, baseLog)
}
func NewIeltsAttemptRepo(db *gorm.DB, baseLog *logger.Logger) IeltsAttemptRepo {
	return ielts.NewAttemptRepo(db, baseLog)
}
func NewIeltsResponseRepo(db *gorm.DB, baseLog *logger.Logger) IeltsResponseRepo {
	return ielts.NewResponseRepo(db, baseLog)
}
func NewIeltsReferenceRepo(db *gorm.DB, baseLog *logger.Logger) IeltsReferenceRepo {
	return ielts.NewReferenceRepo(db, baseLog)
}

func NewEmployeeRepo(db *gorm.DB, baseLog *logger.Logger) EmployeeRepo {
	return hr.NewEmployeeRepo(db, baseLog)
}
func NewAttendanceRepo(db *gorm.DB, baseLog *logger.Logger) AttendanceRepo {
	return hr.NewAttendanceRepo(db, baseLog)
}
