package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// EnrollmentStatusView answers "am I enrolled" without forcing clients
// to interpret a 404.
type EnrollmentStatusView struct {
	Enrolled   bool              `json:"enrolled"`
	Enrollment *types.Enrollment `json:"enrollment,omitempty"`
}

type EnrollmentService interface {
	Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error)
	MyEnrollments(ctx context.Context) ([]*types.Enrollment, error)
	Status(ctx context.Context, courseID uuid.UUID) (*EnrollmentStatusView, error)
	UpdateStatus(ctx context.Context, enrollmentID uuid.UUID, status types.EnrollmentStatus) (*types.Enrollment, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewEnrollmentService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, enrollmentRepo repos.EnrollmentRepo) EnrollmentService {
	return &enrollmentService{
		db:             db,
		log:            baseLog.With("service", "EnrollmentService"),
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (es *enrollmentService) Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	var out *types.Enrollment
	if err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := es.courseRepo.GetByID(ctx, tx, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("COURSE_NOT_FOUND")
			}
			return fmt.Errorf("fetch course: %w", err)
		}
		if !course.IsPublished {
			return apierr.NotFound("COURSE_NOT_FOUND")
		}

		// any prior enrollment blocks, dropped ones included
		if _, err := es.enrollmentRepo.GetByUserAndCourse(ctx, tx, identity.Auth0ID, courseID); err == nil {
			return apierr.Conflict("USER_ALREADY_ENROLLED")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check enrollment: %w", err)
		}

		created, err := es.enrollmentRepo.Create(ctx, tx, &types.Enrollment{
			UserID:   identity.Auth0ID,
			CourseID: courseID,
			Status:   types.EnrollmentActive,
		})
		if err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}

		if err := es.courseRepo.IncrementEnrollmentCount(ctx, tx, courseID, 1); err != nil {
			return fmt.Errorf("bump enrollment count: %w", err)
		}

		created.Course = course
		out = created
		return nil
	}); err != nil {
		es.log.Warn("Enroll: transaction failed", "course_id", courseID, "error", err)
		return nil, err
	}
	return out, nil
}

func (es *enrollmentService) MyEnrollments(ctx context.Context) ([]*types.Enrollment, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	enrollments, err := es.enrollmentRepo.ListByUser(ctx, nil, identity.Auth0ID)
	if err != nil {
		es.log.Warn("MyEnrollments: query failed", "error", err)
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

func (es *enrollmentService) Status(ctx context.Context, courseID uuid.UUID) (*EnrollmentStatusView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	enrollment, err := es.enrollmentRepo.GetByUserAndCourse(ctx, nil, identity.Auth0ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &EnrollmentStatusView{Enrolled: false}, nil
		}
		es.log.Warn("Status: query failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	return &EnrollmentStatusView{Enrolled: true, Enrollment: enrollment}, nil
}

func (es *enrollmentService) UpdateStatus(ctx context.Context, enrollmentID uuid.UUID, status types.EnrollmentStatus) (*types.Enrollment, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if !status.Valid() {
		return nil, apierr.BadRequest("INVALID_ENROLLMENT_STATUS", fmt.Errorf("unknown status %q", status))
	}

	var out *types.Enrollment
	if err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := es.enrollmentRepo.GetByID(ctx, tx, enrollmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("ENROLLMENT_NOT_FOUND")
			}
			return fmt.Errorf("fetch enrollment: %w", err)
		}
		if enrollment.UserID != identity.Auth0ID {
			return apierr.Forbidden("ACCESS_DENIED")
		}
		if enrollment.Status == types.EnrollmentDropped && status == types.EnrollmentDropped {
			return apierr.Conflict("ALREADY_WITHDRAWN")
		}
		if enrollment.Status == status {
			out = enrollment
			return nil
		}

		if err := es.enrollmentRepo.UpdateStatus(ctx, tx, enrollmentID, status); err != nil {
			return fmt.Errorf("update enrollment status: %w", err)
		}

		// dropping frees a seat in the public counters
		if status == types.EnrollmentDropped && enrollment.Status != types.EnrollmentDropped {
			if err := es.courseRepo.IncrementEnrollmentCount(ctx, tx, enrollment.CourseID, -1); err != nil {
				return fmt.Errorf("decrement enrollment count: %w", err)
			}
		}

		updated, err := es.enrollmentRepo.GetByID(ctx, tx, enrollmentID)
		if err != nil {
			return fmt.Errorf("reload enrollment: %w", err)
		}
		out = updated
		return nil
	}); err != nil {
		es.log.Warn("UpdateStatus: transaction failed", "enrollment_id", enrollmentID, "error", err)
		return nil, err
	}
	return out, nil
}
