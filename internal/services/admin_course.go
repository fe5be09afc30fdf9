package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/data/repos/learning"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type LessonResourceInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
	FileType    string `json:"file_type"`
	FileSize    int    `json:"file_size"`
}

// LessonInput is one lesson in a nested course or module create.
// IsPublished defaults to true when omitted.
type LessonInput struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Content       string                `json:"content"`
	VideoURL      string                `json:"video_url"`
	VideoDuration int                   `json:"video_duration"`
	Order         int                   `json:"order"`
	LessonType    types.LessonType      `json:"lesson_type"`
	IsPublished   *bool                 `json:"is_published"`
	IsPreview     bool                  `json:"is_preview"`
	Resources     []LessonResourceInput `json:"resources"`
}

type ModuleInput struct {
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Order             int           `json:"order"`
	IsPublished       *bool         `json:"is_published"`
	EstimatedDuration int           `json:"estimated_duration"`
	Lessons           []LessonInput `json:"lessons"`
}

// CreateCourseInput carries a whole course tree in one request. The
// caller becomes both creator and instructor; the instructor can be
// reassigned later through an update.
type CreateCourseInput struct {
	Title              string                `json:"title"`
	ShortTitle         string                `json:"short_title"`
	Description        string                `json:"description"`
	Overview           string                `json:"overview"`
	LearningObjectives string                `json:"learning_objectives"`
	Prerequisites      string                `json:"prerequisites"`
	DifficultyLevel    types.DifficultyLevel `json:"difficulty_level"`
	EstimatedDuration  int                   `json:"estimated_duration"`
	Language           string                `json:"language"`
	Category           string                `json:"category"`
	Subcategory        string                `json:"subcategory"`
	ThumbnailURL       string                `json:"thumbnail_url"`
	VideoPreviewURL    string                `json:"video_preview_url"`
	Price              *float64              `json:"price"`
	IsFree             *bool                 `json:"is_free"`
	IsPublished        bool                  `json:"is_published"`
	IsFeatured         bool                  `json:"is_featured"`
	Modules            []ModuleInput         `json:"modules"`
}

type UpdateCourseInput struct {
	Title              *string                `json:"title"`
	ShortTitle         *string                `json:"short_title"`
	Description        *string                `json:"description"`
	Overview           *string                `json:"overview"`
	LearningObjectives *string                `json:"learning_objectives"`
	Prerequisites      *string                `json:"prerequisites"`
	DifficultyLevel    *types.DifficultyLevel `json:"difficulty_level"`
	EstimatedDuration  *int                   `json:"estimated_duration"`
	Language           *string                `json:"language"`
	Category           *string                `json:"category"`
	Subcategory        *string                `json:"subcategory"`
	ThumbnailURL       *string                `json:"thumbnail_url"`
	VideoPreviewURL    *string                `json:"video_preview_url"`
	Price              *float64               `json:"price"`
	IsFree             *bool                  `json:"is_free"`
	IsPublished        *bool                  `json:"is_published"`
	IsFeatured         *bool                  `json:"is_featured"`
}

type UpdateModuleInput struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	Order             *int    `json:"order"`
	IsPublished       *bool   `json:"is_published"`
	EstimatedDuration *int    `json:"estimated_duration"`
}

type AdminCourseQuery struct {
	Category    string
	Subcategory string
	IsPublished *bool
	Page        int
	PageSize    int
}

type AdminCourseStats struct {
	Enrollments int64 `json:"enrollments"`
	Modules     int64 `json:"modules"`
}

type AdminCourseItem struct {
	*types.Course
	Stats AdminCourseStats `json:"stats"`
}

type AdminCoursePage struct {
	Courses    []AdminCourseItem `json:"courses"`
	Page       int               `json:"page"`
	PageSize   int               `json:"per_page"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

type CourseEnrollmentStats struct {
	Total        int64 `json:"total"`
	Active       int64 `json:"active"`
	Completed    int64 `json:"completed"`
	Recent30Days int64 `json:"recent_30_days"`
}

type ModuleStat struct {
	ModuleID       uuid.UUID `json:"module_id"`
	ModuleTitle    string    `json:"module_title"`
	TotalAttempts  int64     `json:"total_attempts"`
	CompletedCount int64     `json:"completed_count"`
	CompletionRate float64   `json:"completion_rate"`
}

type CourseInfoRef struct {
	Title       string  `json:"title"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

type CourseAnalytics struct {
	Enrollments     CourseEnrollmentStats `json:"enrollments"`
	AverageProgress float64               `json:"average_progress_percentage"`
	Modules         []ModuleStat          `json:"modules"`
	CourseInfo      CourseInfoRef         `json:"course_info"`
}

type EnrolledUserRef struct {
	ID       string  `json:"id"`
	FullName string  `json:"full_name"`
	Email    *string `json:"email,omitempty"`
	Picture  string  `json:"picture,omitempty"`
}

type EnrollmentProgressRef struct {
	ProgressPercentage float64    `json:"progress_percentage"`
	TimeSpent          int        `json:"time_spent"`
	LastAccessedAt     *time.Time `json:"last_accessed_at,omitempty"`
}

type CourseEnrollmentDetail struct {
	ID                 uuid.UUID              `json:"id"`
	Status             types.EnrollmentStatus `json:"status"`
	EnrolledAt         time.Time              `json:"enrolled_at"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	LastAccessedAt     *time.Time             `json:"last_accessed_at,omitempty"`
	ProgressPercentage float64                `json:"progress_percentage"`
	User               *EnrolledUserRef       `json:"user,omitempty"`
	DetailedProgress   *EnrollmentProgressRef `json:"detailed_progress,omitempty"`
}

type CourseEnrollmentPage struct {
	Enrollments []CourseEnrollmentDetail `json:"enrollments"`
	Page        int                      `json:"page"`
	PageSize    int                      `json:"per_page"`
	Total       int64                    `json:"total"`
	TotalPages  int                      `json:"total_pages"`
}

// AdminCourseService manages course content. Access is ownership based
// rather than role based: whoever created a course, or teaches it, can
// change it.
type AdminCourseService interface {
	CreateCourse(ctx context.Context, input CreateCourseInput) (*types.Course, error)
	UpdateCourse(ctx context.Context, courseID uuid.UUID, input UpdateCourseInput) (*types.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	ListCourses(ctx context.Context, query AdminCourseQuery) (*AdminCoursePage, error)
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error
	SetPublished(ctx context.Context, courseID uuid.UUID, publish bool) (*types.Course, error)
	Analytics(ctx context.Context, courseID uuid.UUID) (*CourseAnalytics, error)
	CourseEnrollments(ctx context.Context, courseID uuid.UUID, status string, page, pageSize int) (*CourseEnrollmentPage, error)
	AddModule(ctx context.Context, courseID uuid.UUID, input ModuleInput) (*types.Module, error)
	UpdateModule(ctx context.Context, moduleID uuid.UUID, input UpdateModuleInput) (*types.Module, error)
	DeleteModule(ctx context.Context, moduleID uuid.UUID) error
}

type adminCourseService struct {
	db                 *gorm.DB
	log                *logger.Logger
	userRepo           repos.UserRepo
	courseRepo         repos.CourseRepo
	moduleRepo         repos.ModuleRepo
	enrollmentRepo     repos.EnrollmentRepo
	courseProgressRepo repos.CourseProgressRepo
	moduleProgressRepo repos.ModuleProgressRepo
}

func NewAdminCourseService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, courseRepo repos.CourseRepo, moduleRepo repos.ModuleRepo, enrollmentRepo repos.EnrollmentRepo, courseProgressRepo repos.CourseProgressRepo, moduleProgressRepo repos.ModuleProgressRepo) AdminCourseService {
	return &adminCourseService{
		db:                 db,
		log:                baseLog.With("service", "AdminCourseService"),
		userRepo:           userRepo,
		courseRepo:         courseRepo,
		moduleRepo:         moduleRepo,
		enrollmentRepo:     enrollmentRepo,
		courseProgressRepo: courseProgressRepo,
		moduleProgressRepo: moduleProgressRepo,
	}
}

// requireActiveUser resolves the calling identity to a live account.
func requireActiveUser(ctx context.Context, tx *gorm.DB, userRepo repos.UserRepo) (*types.User, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	user, err := userRepo.GetByAuth0ID(ctx, tx, identity.Auth0ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("USER_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch requesting user: %w", err)
	}
	if user.IsDeleted {
		return nil, apierr.NotFound("USER_NOT_FOUND")
	}
	return user, nil
}

func canManageCourse(course *types.Course, auth0ID string) bool {
	if course.CreatorID != nil && *course.CreatorID == auth0ID {
		return true
	}
	return course.InstructorID != nil && *course.InstructorID == auth0ID
}

func (s *adminCourseService) CreateCourse(ctx context.Context, input CreateCourseInput) (*types.Course, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierr.BadRequest("COURSE_TITLE_REQUIRED", fmt.Errorf("title must not be empty"))
	}

	difficulty := input.DifficultyLevel
	if difficulty == "" {
		difficulty = types.DifficultyBeginner
	}
	if !difficulty.Valid() {
		return nil, apierr.BadRequest("INVALID_DIFFICULTY_LEVEL", fmt.Errorf("unknown difficulty level %q", input.DifficultyLevel))
	}

	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = "en"
	}

	modules, err := buildModules(input.Modules)
	if err != nil {
		return nil, err
	}

	isFree := true
	if input.IsFree != nil {
		isFree = *input.IsFree
	}

	var out *types.Course
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := requireActiveUser(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		course := &types.Course{
			Title:              title,
			ShortTitle:         strings.TrimSpace(input.ShortTitle),
			Description:        input.Description,
			Overview:           input.Overview,
			LearningObjectives: input.LearningObjectives,
			Prerequisites:      input.Prerequisites,
			DifficultyLevel:    difficulty,
			EstimatedDuration:  input.EstimatedDuration,
			Language:           language,
			Category:           strings.TrimSpace(input.Category),
			Subcategory:        strings.TrimSpace(input.Subcategory),
			ThumbnailURL:       input.ThumbnailURL,
			VideoPreviewURL:    input.VideoPreviewURL,
			Price:              input.Price,
			IsFree:             isFree,
			IsPublished:        input.IsPublished,
			IsFeatured:         input.IsFeatured,
			CreatorID:          &user.Auth0ID,
			InstructorID:       &user.Auth0ID,
			Modules:            modules,
		}

		created, err := s.courseRepo.Create(ctx, tx, course)
		if err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		out = created
		s.log.Info("CreateCourse: course created", "creator", user.Auth0ID, "course_id", created.ID, "modules", len(modules))
		return nil
	}); err != nil {
		s.log.Warn("CreateCourse: transaction failed", "title", title, "error", err)
		return nil, err
	}
	return out, nil
}

// buildModules turns nested input into the association tree a single
// Create persists in one pass.
func buildModules(inputs []ModuleInput) ([]types.Module, error) {
	modules := make([]types.Module, 0, len(inputs))
	for _, m := range inputs {
		module, err := buildModule(m)
		if err != nil {
			return nil, err
		}
		modules = append(modules, *module)
	}
	return modules, nil
}

func buildModule(input ModuleInput) (*types.Module, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierr.BadRequest("MODULE_TITLE_REQUIRED", fmt.Errorf("module title must not be empty"))
	}

	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	lessons := make([]types.Lesson, 0, len(input.Lessons))
	for _, l := range input.Lessons {
		lessonTitle := strings.TrimSpace(l.Title)
		if lessonTitle == "" {
			return nil, apierr.BadRequest("LESSON_TITLE_REQUIRED", fmt.Errorf("lesson title must not be empty"))
		}
		lessonType := l.LessonType
		if lessonType == "" {
			lessonType = types.LessonTypeVideo
		}
		if !lessonType.Valid() {
			return nil, apierr.BadRequest("INVALID_LESSON_TYPE", fmt.Errorf("unknown lesson type %q", l.LessonType))
		}
		lessonPublished := true
		if l.IsPublished != nil {
			lessonPublished = *l.IsPublished
		}

		resources := make([]types.LessonResource, 0, len(l.Resources))
		for _, r := range l.Resources {
			resources = append(resources, types.LessonResource{
				Title:       strings.TrimSpace(r.Title),
				Description: r.Description,
				FileURL:     r.FileURL,
				FileType:    r.FileType,
				FileSize:    r.FileSize,
			})
		}

		lessons = append(lessons, types.Lesson{
			Title:         lessonTitle,
			Description:   l.Description,
			Content:       l.Content,
			VideoURL:      l.VideoURL,
			VideoDuration: l.VideoDuration,
			Order:         l.Order,
			LessonType:    lessonType,
			IsPublished:   lessonPublished,
			IsPreview:     l.IsPreview,
			Resources:     resources,
		})
	}

	return &types.Module{
		Title:             title,
		Description:       input.Description,
		Order:             input.Order,
		IsPublished:       published,
		EstimatedDuration: input.EstimatedDuration,
		Lessons:           lessons,
	}, nil
}

func (s *adminCourseService) UpdateCourse(ctx context.Context, courseID uuid.UUID, input UpdateCourseInput) (*types.Course, error) {
	if input.DifficultyLevel != nil && !input.DifficultyLevel.Valid() {
		return nil, apierr.BadRequest("INVALID_DIFFICULTY_LEVEL", fmt.Errorf("unknown difficulty level %q", *input.DifficultyLevel))
	}

	var out *types.Course
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := requireActiveUser(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		course, err := s.courseRepo.GetByID(ctx, tx, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("COURSE_NOT_FOUND")
			}
			return fmt.Errorf("fetch course: %w", err)
		}
		if !canManageCourse(course, user.Auth0ID) {
			return apierr.Forbidden("UNAUTHORIZED_TO_UPDATE_COURSE")
		}

		changed := false
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return apierr.BadRequest("COURSE_TITLE_REQUIRED", fmt.Errorf("title must not be empty"))
			}
			course.Title = title
			changed = true
		}
		if input.ShortTitle != nil {
			course.ShortTitle = strings.TrimSpace(*input.ShortTitle)
			changed = true
		}
		if input.Description != nil {
			course.Description = *input.Description
			changed = true
		}
		if input.Overview != nil {
			course.Overview = *input.Overview
			changed = true
		}
		if input.LearningObjectives != nil {
			course.LearningObjectives = *input.LearningObjectives
			changed = true
		}
		if input.Prerequisites != nil {
			course.Prerequisites = *input.Prerequisites
			changed = true
		}
		if input.DifficultyLevel != nil {
			course.DifficultyLevel = *input.DifficultyLevel
			changed = true
		}
		if input.EstimatedDuration != nil {
			course.EstimatedDuration = *input.EstimatedDuration
			changed = true
		}
		if input.Language != nil {
			if lang := strings.TrimSpace(*input.Language); lang != "" {
				course.Language = lang
				changed = true
			}
		}
		if input.Category != nil {
			course.Category = strings.TrimSpace(*input.Category)
			changed = true
		}
		if input.Subcategory != nil {
			course.Subcategory = strings.TrimSpace(*input.Subcategory)
			changed = true
		}
		if input.ThumbnailURL != nil {
			course.ThumbnailURL = *input.ThumbnailURL
			changed = true
		}
		if input.VideoPreviewURL != nil {
			course.VideoPreviewURL = *input.VideoPreviewURL
			changed = true
		}
		if input.Price != nil {
			course.Price = input.Price
			changed = true
		}
		if input.IsFree != nil {
			course.IsFree = *input.IsFree
			changed = true
		}
		if input.IsPublished != nil {
			course.IsPublished = *input.IsPublished
			changed = true
		}
		if input.IsFeatured != nil {
			course.IsFeatured = *input.IsFeatured
			changed = true
		}
		if !changed {
			return apierr.BadRequest("NO_UPDATE_DATA_PROVIDED", fmt.Errorf("no course fields provided"))
		}

		if err := s.courseRepo.Update(ctx, tx, course); err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		out = course
		s.log.Info("UpdateCourse: course updated", "user", user.Auth0ID, "course_id", courseID)
		return nil
	}); err != nil {
		s.log.Warn("UpdateCourse: transaction failed", "course_id", courseID, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *adminCourseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	course, err := s.courseRepo.GetFull(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		s.log.Warn("GetCourse: fetch failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	return course, nil
}

func (s *adminCourseService) ListCourses(ctx context.Context, query AdminCourseQuery) (*AdminCoursePage, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	filter := learning.AdminCourseFilter{
		Category:    strings.TrimSpace(query.Category),
		Subcategory: strings.TrimSpace(query.Subcategory),
		IsPublished: query.IsPublished,
		Page:        query.Page,
		PageSize:    query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 10
	}

	courses, total, err := s.courseRepo.AdminList(ctx, nil, filter)
	if err != nil {
		s.log.Warn("ListCourses: fetch failed", "error", err)
		return nil, fmt.Errorf("list courses: %w", err)
	}

	courseIDs := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
	}
	moduleCounts, err := s.moduleRepo.CountByCourses(ctx, nil, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("count modules: %w", err)
	}

	items := make([]AdminCourseItem, 0, len(courses))
	for _, c := range courses {
		items = append(items, AdminCourseItem{
			Course: c,
			Stats: AdminCourseStats{
				Enrollments: int64(c.EnrollmentCount),
				Modules:     moduleCounts[c.ID],
			},
		})
	}

	return &AdminCoursePage{
		Courses:    items,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		Total:      total,
		TotalPages: int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize)),
	}, nil
}

// DeleteCourse is restricted to the creator and refuses once anyone has
// enrolled; enrolled courses can only be unpublished.
func (s *adminCourseService) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := requireActiveUser(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		course, err := s.courseRepo.GetByID(ctx, tx, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("COURSE_NOT_FOUND")
			}
			return fmt.Errorf("fetch course: %w", err)
		}
		if course.CreatorID == nil || *course.CreatorID != user.Auth0ID {
			return apierr.Forbidden("UNAUTHORIZED_TO_DELETE_COURSE")
		}

		enrollments, err := s.enrollmentRepo.CountByCourse(ctx, tx, courseID, nil)
		if err != nil {
			return fmt.Errorf("count enrollments: %w", err)
		}
		if enrollments > 0 {
			return apierr.Conflict("CANNOT_DELETE_COURSE_WITH_ENROLLMENTS")
		}

		if err := s.courseRepo.Delete(ctx, tx, courseID); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		s.log.Info("DeleteCourse: course deleted", "user", user.Auth0ID, "course_id", courseID)
		return nil
	}); err != nil {
		s.log.Warn("DeleteCourse: transaction failed", "course_id", courseID, "error", err)
		return err
	}
	return nil
}

func (s *adminCourseService) SetPublished(ctx context.Context, courseID uuid.UUID, publish bool) (*types.Course, error) {
	var out *types.Course
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := requireActiveUser(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		course, err := s.courseRepo.GetByID(ctx, tx, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("COURSE_NOT_FOUND")
			}
			return fmt.Errorf("fetch course: %w", err)
		}
		if !canManageCourse(course, user.Auth0ID) {
			return apierr.Forbidden("UNAUTHORIZED_TO_UPDATE_COURSE")
		}

		if err := s.courseRepo.SetPublished(ctx, tx, courseID, publish); err != nil {
			return fmt.Errorf("set published: %w", err)
		}
		course.IsPublished = publish
		out = course
		s.log.Info("SetPublished: publication toggled", "user", user.Auth0ID, "course_id", courseID, "published", publish)
		return nil
	}); err != nil {
		s.log.Warn("SetPublished: transaction failed", "course_id", courseID, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *adminCourseService) Analytics(ctx context.Context, courseID uuid.UUID) (*CourseAnalytics, error) {
	user, err := requireActiveUser(ctx, nil, s.userRepo)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	if !canManageCourse(course, user.Auth0ID) {
		return nil, apierr.Forbidden("UNAUTHORIZED_TO_VIEW_ANALYTICS")
	}

	total, err := s.enrollmentRepo.CountByCourse(ctx, nil, courseID, nil)
	if err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	active := types.EnrollmentActive
	activeCount, err := s.enrollmentRepo.CountByCourse(ctx, nil, courseID, &active)
	if err != nil {
		return nil, fmt.Errorf("count active enrollments: %w", err)
	}
	completed := types.EnrollmentCompleted
	completedCount, err := s.enrollmentRepo.CountByCourse(ctx, nil, courseID, &completed)
	if err != nil {
		return nil, fmt.Errorf("count completed enrollments: %w", err)
	}
	since := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -30)
	recent, err := s.enrollmentRepo.CountRecentByCourse(ctx, nil, courseID, since)
	if err != nil {
		return nil, fmt.Errorf("count recent enrollments: %w", err)
	}

	_, avgProgress, err := s.courseProgressRepo.AverageByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("average progress: %w", err)
	}

	modules, err := s.moduleRepo.ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	completion, err := s.moduleProgressRepo.CompletionByModules(ctx, nil, moduleIDs)
	if err != nil {
		return nil, fmt.Errorf("module completion: %w", err)
	}

	moduleStats := make([]ModuleStat, 0, len(modules))
	for _, m := range modules {
		stat := ModuleStat{ModuleID: m.ID, ModuleTitle: m.Title}
		if c, ok := completion[m.ID]; ok {
			stat.TotalAttempts = c.Total
			stat.CompletedCount = c.Completed
			if c.Total > 0 {
				stat.CompletionRate = round2(float64(c.Completed) / float64(c.Total) * 100)
			}
		}
		moduleStats = append(moduleStats, stat)
	}

	return &CourseAnalytics{
		Enrollments: CourseEnrollmentStats{
			Total:        total,
			Active:       activeCount,
			Completed:    completedCount,
			Recent30Days: recent,
		},
		AverageProgress: round2(avgProgress),
		Modules:         moduleStats,
		CourseInfo: CourseInfoRef{
			Title:       course.Title,
			Rating:      course.Rating,
			RatingCount: course.RatingCount,
		},
	}, nil
}

func (s *adminCourseService) CourseEnrollments(ctx context.Context, courseID uuid.UUID, status string, page, pageSize int) (*CourseEnrollmentPage, error) {
	user, err := requireActiveUser(ctx, nil, s.userRepo)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	if !canManageCourse(course, user.Auth0ID) {
		return nil, apierr.Forbidden("UNAUTHORIZED_TO_VIEW_ENROLLMENTS")
	}

	var statusFilter *types.EnrollmentStatus
	if status != "" {
		parsed := types.EnrollmentStatus(strings.ToUpper(status))
		if !parsed.Valid() {
			return nil, apierr.BadRequest("INVALID_ENROLLMENT_STATUS", fmt.Errorf("unknown enrollment status %q", status))
		}
		statusFilter = &parsed
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	enrollments, total, err := s.enrollmentRepo.ListByCourse(ctx, nil, courseID, statusFilter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	userIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		userIDs = append(userIDs, e.UserID)
	}
	progressRows, err := s.courseProgressRepo.ListByCourseForUsers(ctx, nil, courseID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch progress: %w", err)
	}
	progressByUser := make(map[string]*types.CourseProgress, len(progressRows))
	for _, p := range progressRows {
		progressByUser[p.UserID] = p
	}

	details := make([]CourseEnrollmentDetail, 0, len(enrollments))
	for _, e := range enrollments {
		detail := CourseEnrollmentDetail{
			ID:                 e.ID,
			Status:             e.Status,
			EnrolledAt:         e.EnrolledAt,
			CompletedAt:        e.CompletedAt,
			LastAccessedAt:     e.LastAccessedAt,
			ProgressPercentage: e.ProgressPercentage,
		}
		if e.User != nil {
			detail.User = &EnrolledUserRef{
				ID:       e.User.Auth0ID,
				FullName: e.User.FullName,
				Email:    e.User.Email,
				Picture:  e.User.Picture,
			}
		}
		if p, ok := progressByUser[e.UserID]; ok {
			detail.DetailedProgress = &EnrollmentProgressRef{
				ProgressPercentage: p.ProgressPercentage,
				TimeSpent:          p.TimeSpent,
				LastAccessedAt:     p.LastAccessedAt,
			}
		}
		details = append(details, detail)
	}

	return &CourseEnrollmentPage{
		Enrollments: details,
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *adminCourseService) AddModule(ctx context.Context, courseID uuid.UUID, input ModuleInput) (*types.Module, error) {
	module, err := buildModule(input)
	if err != nil {
		return nil, err
	}

	var out *types.Module
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := requireActiveUser(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		course, err := s.courseRepo.GetByID(ctx, tx, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("COURSE_NOT_FOUND")
			}
			return fmt.Errorf("fetch course: %w", err)
		}
		if !canManageCourse(course, user.Auth0ID) {
			return apierr.Forbidden("UNAUTHORIZED_TO_MODIFY_COURSE")
		}

		module.CourseID = courseID
		created, err := s.moduleRepo.Create(ctx, tx, module)
		if err != nil {
			return fmt.Errorf("create module: %w", err)
		}
		out = created
		s.log.Info("AddModule: module added", "user", user.Auth0ID, "course_id", courseID, "module_id", created.ID)
		return nil
	}); err != nil {
		s.log.Warn("AddModule: transaction failed", "course_id", courseID, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *adminCourseService) UpdateModule(ctx context.Context, moduleID uuid.UUID, input UpdateModuleInput) (*types.Module, error) {
	var out *types.Module
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := requireActiveUser(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		module, err := s.moduleRepo.GetByID(ctx, tx, moduleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("MODULE_NOT_FOUND")
			}
			return fmt.Errorf("fetch module: %w", err)
		}
		course, err := s.courseRepo.GetByID(ctx, tx, module.CourseID)
		if err != nil {
			return fmt.Errorf("fetch course: %w", err)
		}
		if !canManageCourse(course, user.Auth0ID) {
			return apierr.Forbidden("UNAUTHORIZED_TO_MODIFY_MODULE")
		}

		changed := false
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return apierr.BadRequest("MODULE_TITLE_REQUIRED", fmt.Errorf("module title must not be empty"))
			}
			module.Title = title
			changed = true
		}
		if input.Description != nil {
			module.Description = *input.Description
			changed = true
		}
		if input.Order != nil {
			module.Order = *input.Order
			changed = true
		}
		if input.IsPublished != nil {
			module.IsPublished = *input.IsPublished
			changed = true
		}
		if input.EstimatedDuration != nil {
			module.EstimatedDuration = *input.EstimatedDuration
			changed = true
		}
		if !changed {
			return apierr.BadRequest("NO_UPDATE_DATA_PROVIDED", fmt.Errorf("no module fields provided"))
		}

		if err := s.moduleRepo.Update(ctx, tx, module); err != nil {
			return fmt.Errorf("update module: %w", err)
		}
		out = module
		s.log.Info("UpdateModule: module updated", "user", user.Auth0ID, "module_id", moduleID)
		return nil
	}); err != nil {
		s.log.Warn("UpdateModule: transaction failed", "module_id", moduleID, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *adminCourseService) DeleteModule(ctx context.Context, moduleID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := requireActiveUser(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		module, err := s.moduleRepo.GetByID(ctx, tx, moduleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("MODULE_NOT_FOUND")
			}
			return fmt.Errorf("fetch module: %w", err)
		}
		course, err := s.courseRepo.GetByID(ctx, tx, module.CourseID)
		if err != nil {
			return fmt.Errorf("fetch course: %w", err)
		}
		if !canManageCourse(course, user.Auth0ID) {
			return apierr.Forbidden("UNAUTHORIZED_TO_DELETE_MODULE")
		}

		if err := s.moduleRepo.Delete(ctx, tx, moduleID); err != nil {
			return fmt.Errorf("delete module: %w", err)
		}
		s.log.Info("DeleteModule: module deleted", "user", user.Auth0ID, "module_id", moduleID)
		return nil
	}); err != nil {
		s.log.Warn("DeleteModule: transaction failed", "module_id", moduleID, "error", err)
		return err
	}
	return nil
}
