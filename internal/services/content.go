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

// LessonContentView is a lesson as seen by a specific caller. Content,
// video and resources are only populated when CanAccess is true, so the
// same payload shape serves both enrolled students and visitors
// browsing previews.
type LessonContentView struct {
	ID             uuid.UUID              `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description,omitempty"`
	Order          int                    `json:"order"`
	LessonType     types.LessonType       `json:"lesson_type"`
	VideoDuration  int                    `json:"video_duration,omitempty"`
	IsPreview      bool                   `json:"is_preview"`
	CanAccess      bool                   `json:"can_access"`
	ResourcesCount int                    `json:"resources_count"`
	Content        string                 `json:"content,omitempty"`
	VideoURL       string                 `json:"video_url,omitempty"`
	Resources      []types.LessonResource `json:"resources,omitempty"`
}

type ModuleContentView struct {
	ID                 uuid.UUID           `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	Order              int                 `json:"order"`
	EstimatedDuration  int                 `json:"estimated_duration,omitempty"`
	CalculatedDuration int                 `json:"calculated_duration"`
	LessonsCount       int                 `json:"lessons_count"`
	Lessons            []LessonContentView `json:"lessons"`
}

type ContentStats struct {
	TotalModules         int  `json:"total_modules"`
	TotalLessons         int  `json:"total_lessons"`
	TotalDurationSeconds int  `json:"total_duration_seconds"`
	UserEnrolled         bool `json:"user_enrolled"`
}

type CourseContentView struct {
	Course  *types.Course       `json:"course"`
	Modules []ModuleContentView `json:"modules"`
	Stats   ContentStats        `json:"stats"`
}

type LessonNeighbor struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type LessonNavigation struct {
	PreviousLesson *LessonNeighbor `json:"previous_lesson"`
	NextLesson     *LessonNeighbor `json:"next_lesson"`
}

type LessonDetailView struct {
	Lesson     *types.Lesson    `json:"lesson"`
	Module     *types.Module    `json:"module"`
	Course     *types.Course    `json:"course"`
	Navigation LessonNavigation `json:"navigation"`
}

// ContentService serves course material to authenticated students with
// enrollment gating. Community reads (announcements, assignments,
// forums) require an active or completed enrollment.
type ContentService interface {
	CourseStructure(ctx context.Context, courseID uuid.UUID) (*CourseContentView, error)
	ModuleDetail(ctx context.Context, courseID, moduleID uuid.UUID) (*ModuleContentView, error)
	LessonDetail(ctx context.Context, lessonID uuid.UUID) (*LessonDetailView, error)
	Announcements(ctx context.Context, courseID uuid.UUID) ([]*types.Announcement, error)
	Assignments(ctx context.Context, courseID uuid.UUID) ([]*types.Assignment, error)
	Forums(ctx context.Context, courseID uuid.UUID) ([]*types.Forum, error)
}

type contentService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	moduleRepo     repos.ModuleRepo
	lessonRepo     repos.LessonRepo
	enrollmentRepo repos.EnrollmentRepo
	communityRepo  repos.CommunityRepo
}

func NewContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.ModuleRepo,
	lessonRepo repos.LessonRepo,
	enrollmentRepo repos.EnrollmentRepo,
	communityRepo repos.CommunityRepo,
) ContentService {
	return &contentService{
		db:             db,
		log:            baseLog.With("service", "ContentService"),
		courseRepo:     courseRepo,
		moduleRepo:     moduleRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		communityRepo:  communityRepo,
	}
}

// activeEnrollment returns nil without error when the user has no
// usable enrollment (missing, dropped or suspended).
func activeEnrollment(ctx context.Context, repo repos.EnrollmentRepo, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.Enrollment, error) {
	enrollment, err := repo.GetByUserAndCourse(ctx, tx, userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if enrollment.Status != types.EnrollmentActive && enrollment.Status != types.EnrollmentCompleted {
		return nil, nil
	}
	return enrollment, nil
}

func (cs *contentService) CourseStructure(ctx context.Context, courseID uuid.UUID) (*CourseContentView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	course, err := cs.courseRepo.GetWithContent(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		cs.log.Warn("CourseStructure: course fetch failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	if !course.IsPublished {
		return nil, apierr.NotFound("COURSE_NOT_FOUND")
	}

	enrollment, err := activeEnrollment(ctx, cs.enrollmentRepo, nil, identity.Auth0ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	enrolled := enrollment != nil

	view := &CourseContentView{Course: course}
	for i := range course.Modules {
		module := &course.Modules[i]
		if !module.IsPublished {
			continue
		}
		moduleView := buildModuleView(module, enrolled)
		view.Stats.TotalLessons += moduleView.LessonsCount
		view.Stats.TotalDurationSeconds += moduleView.CalculatedDuration
		view.Modules = append(view.Modules, moduleView)
	}
	view.Stats.TotalModules = len(view.Modules)
	view.Stats.UserEnrolled = enrolled

	// the serialized course carries only header fields
	course.Modules = nil
	return view, nil
}

func (cs *contentService) ModuleDetail(ctx context.Context, courseID, moduleID uuid.UUID) (*ModuleContentView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	course, err := cs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	if !course.IsPublished {
		return nil, apierr.NotFound("COURSE_NOT_FOUND")
	}

	module, err := cs.moduleRepo.GetWithLessons(ctx, nil, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("MODULE_NOT_FOUND")
		}
		cs.log.Warn("ModuleDetail: module fetch failed", "module_id", moduleID, "error", err)
		return nil, fmt.Errorf("fetch module: %w", err)
	}
	if module.CourseID != courseID || !module.IsPublished {
		return nil, apierr.NotFound("MODULE_NOT_FOUND")
	}

	enrollment, err := activeEnrollment(ctx, cs.enrollmentRepo, nil, identity.Auth0ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}

	view := buildModuleView(module, enrollment != nil)
	return &view, nil
}

func (cs *contentService) LessonDetail(ctx context.Context, lessonID uuid.UUID) (*LessonDetailView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	lesson, err := cs.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("LESSON_NOT_FOUND")
		}
		cs.log.Warn("LessonDetail: lesson fetch failed", "lesson_id", lessonID, "error", err)
		return nil, fmt.Errorf("fetch lesson: %w", err)
	}
	if !lesson.IsPublished {
		return nil, apierr.NotFound("LESSON_NOT_FOUND")
	}

	module, err := cs.moduleRepo.GetByID(ctx, nil, lesson.ModuleID)
	if err != nil {
		return nil, fmt.Errorf("fetch module: %w", err)
	}
	course, err := cs.courseRepo.GetByID(ctx, nil, module.CourseID)
	if err != nil {
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	if !course.IsPublished {
		return nil, apierr.NotFound("LESSON_NOT_FOUND")
	}

	enrollment, err := activeEnrollment(ctx, cs.enrollmentRepo, nil, identity.Auth0ID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if enrollment == nil && !lesson.IsPreview {
		return nil, apierr.Forbidden("ACCESS_DENIED")
	}

	if enrollment != nil {
		if err := cs.enrollmentRepo.TouchLastAccessed(ctx, nil, identity.Auth0ID, course.ID); err != nil {
			cs.log.Warn("LessonDetail: last_accessed update failed", "enrollment_id", enrollment.ID, "error", err)
		}
	}

	prev, next, err := cs.lessonRepo.Neighbors(ctx, nil, lesson)
	if err != nil {
		return nil, fmt.Errorf("fetch lesson neighbors: %w", err)
	}

	view := &LessonDetailView{Lesson: lesson, Module: module, Course: course}
	if prev != nil {
		view.Navigation.PreviousLesson = &LessonNeighbor{ID: prev.ID, Title: prev.Title}
	}
	if next != nil {
		view.Navigation.NextLesson = &LessonNeighbor{ID: next.ID, Title: next.Title}
	}
	return view, nil
}

func (cs *contentService) Announcements(ctx context.Context, courseID uuid.UUID) ([]*types.Announcement, error) {
	if err := cs.requireEnrollment(ctx, courseID); err != nil {
		return nil, err
	}
	announcements, err := cs.communityRepo.Announcements(ctx, nil, courseID)
	if err != nil {
		cs.log.Warn("Announcements: query failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

func (cs *contentService) Assignments(ctx context.Context, courseID uuid.UUID) ([]*types.Assignment, error) {
	if err := cs.requireEnrollment(ctx, courseID); err != nil {
		return nil, err
	}
	assignments, err := cs.communityRepo.Assignments(ctx, nil, courseID)
	if err != nil {
		cs.log.Warn("Assignments: query failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

func (cs *contentService) Forums(ctx context.Context, courseID uuid.UUID) ([]*types.Forum, error) {
	if err := cs.requireEnrollment(ctx, courseID); err != nil {
		return nil, err
	}
	forums, err := cs.communityRepo.Forums(ctx, nil, courseID)
	if err != nil {
		cs.log.Warn("Forums: query failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("list forums: %w", err)
	}
	return forums, nil
}

func (cs *contentService) requireEnrollment(ctx context.Context, courseID uuid.UUID) error {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return apierr.Unauthorized("UNAUTHORIZED")
	}
	enrollment, err := activeEnrollment(ctx, cs.enrollmentRepo, nil, identity.Auth0ID, courseID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if enrollment == nil {
		return apierr.Forbidden("ENROLLMENT_REQUIRED")
	}
	return nil
}

func buildModuleView(module *types.Module, enrolled bool) ModuleContentView {
	view := ModuleContentView{
		ID:                module.ID,
		Title:             module.Title,
		Description:       module.Description,
		Order:             module.Order,
		EstimatedDuration: module.EstimatedDuration,
		Lessons:           []LessonContentView{},
	}

	for i := range module.Lessons {
		lesson := &module.Lessons[i]
		// visitors only see preview lessons; enrolled users see the
		// published set plus previews
		if !enrolled && !lesson.IsPreview {
			continue
		}
		if enrolled && !lesson.IsPublished && !lesson.IsPreview {
			continue
		}

		canAccess := enrolled || lesson.IsPreview
		lessonView := LessonContentView{
			ID:             lesson.ID,
			Title:          lesson.Title,
			Description:    lesson.Description,
			Order:          lesson.Order,
			LessonType:     lesson.LessonType,
			VideoDuration:  lesson.VideoDuration,
			IsPreview:      lesson.IsPreview,
			CanAccess:      canAccess,
			ResourcesCount: len(lesson.Resources),
		}
		if canAccess {
			lessonView.Content = lesson.Content
			lessonView.VideoURL = lesson.VideoURL
			lessonView.Resources = lesson.Resources
		}

		view.Lessons = append(view.Lessons, lessonView)
		view.CalculatedDuration += lesson.VideoDuration
	}

	view.LessonsCount = len(view.Lessons)
	return view
}
