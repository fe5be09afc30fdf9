package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
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

const recentActivityLimit = 10

// LessonProgressInput is the client progress beacon for one lesson.
// Times are cumulative seconds, not deltas; the stored row is replaced
// with whatever the client last reported.
type LessonProgressInput struct {
	LessonID    uuid.UUID `json:"lesson_id"`
	TimeSpent   int       `json:"time_spent"`
	WatchTime   int       `json:"watch_time"`
	IsCompleted bool      `json:"is_completed"`
}

type LessonProgressView struct {
	ID            uuid.UUID        `json:"id"`
	LessonID      uuid.UUID        `json:"lesson_id"`
	LessonTitle   string           `json:"lesson_title"`
	LessonOrder   int              `json:"lesson_order"`
	LessonType    types.LessonType `json:"lesson_type"`
	VideoDuration int              `json:"video_duration"`
	IsCompleted   bool             `json:"is_completed"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	TimeSpent     int              `json:"time_spent"`
	WatchTime     int              `json:"watch_time"`
}

type ModuleProgressView struct {
	ID                 uuid.UUID             `json:"id"`
	ModuleID           uuid.UUID             `json:"module_id"`
	ModuleTitle        string                `json:"module_title"`
	ModuleOrder        int                   `json:"module_order"`
	IsCompleted        bool                  `json:"is_completed"`
	CompletedAt        *time.Time            `json:"completed_at,omitempty"`
	ProgressPercentage float64               `json:"progress_percentage"`
	TimeSpent          int                   `json:"time_spent"`
	Lessons            []*LessonProgressView `json:"lessons_progress"`
}

type CourseProgressView struct {
	CourseID           uuid.UUID             `json:"course_id"`
	CourseTitle        string                `json:"course_title"`
	ProgressPercentage float64               `json:"progress_percentage"`
	TimeSpent          int                   `json:"time_spent"`
	LastAccessedAt     *time.Time            `json:"last_accessed_at,omitempty"`
	Modules            []*ModuleProgressView `json:"modules_progress"`
}

type ProgressOverview struct {
	TotalCourses     int     `json:"total_courses"`
	CompletedCourses int     `json:"completed_courses"`
	AverageProgress  float64 `json:"average_progress"`
	TotalTimeSpent   int     `json:"total_time_spent"`
	CompletionRate   float64 `json:"completion_rate"`
}

type CategoryProgress struct {
	Category        string  `json:"category"`
	CourseCount     int     `json:"course_count"`
	AverageProgress float64 `json:"average_progress"`
	TimeSpent       int     `json:"time_spent"`
}

type TimeBreakdown struct {
	TotalHours       float64 `json:"total_hours"`
	AveragePerCourse float64 `json:"average_per_course"`
}

type ProgressStats struct {
	Timeframe      string                   `json:"timeframe"`
	Overview       ProgressOverview         `json:"overview"`
	Categories     []*CategoryProgress      `json:"categories"`
	RecentActivity []*learning.RecentLesson `json:"recent_activity"`
	TimeBreakdown  TimeBreakdown            `json:"time_breakdown"`
}

type LearningPathCourse struct {
	CourseID           uuid.UUID             `json:"course_id"`
	CourseTitle        string                `json:"course_title"`
	Subcategory        string                `json:"subcategory,omitempty"`
	DifficultyLevel    types.DifficultyLevel `json:"difficulty_level"`
	EstimatedDuration  int                   `json:"estimated_duration"`
	ThumbnailURL       string                `json:"thumbnail_url,omitempty"`
	ProgressPercentage float64               `json:"progress_percentage"`
	TimeSpent          int                   `json:"time_spent"`
	LastAccessedAt     *time.Time            `json:"last_accessed_at,omitempty"`
	CompletedModules   int                   `json:"completed_modules"`
	TotalModules       int                   `json:"total_modules"`
	IsCompleted        bool                  `json:"is_completed"`
}

type LearningPathView struct {
	Category         string                `json:"category"`
	Courses          []*LearningPathCourse `json:"courses"`
	CourseCount      int                   `json:"course_count"`
	AverageProgress  float64               `json:"average_progress"`
	CompletedCourses int                   `json:"completed_courses"`
	TotalTimeSpent   int                   `json:"total_time_spent"`
}

// ProgressService tracks lesson completion and rolls it up through
// module and course progress onto the enrollment row.
type ProgressService interface {
	UpdateLessonProgress(ctx context.Context, input *LessonProgressInput) (*types.LessonProgress, error)
	CourseProgress(ctx context.Context, courseID uuid.UUID) (*CourseProgressView, error)
	Stats(ctx context.Context, timeframe string) (*ProgressStats, error)
	LearningPath(ctx context.Context, category string) ([]*LearningPathView, error)
}

type progressService struct {
	db                 *gorm.DB
	log                *logger.Logger
	courseRepo         repos.CourseRepo
	moduleRepo         repos.ModuleRepo
	lessonRepo         repos.LessonRepo
	enrollmentRepo     repos.EnrollmentRepo
	courseProgressRepo repos.CourseProgressRepo
	moduleProgressRepo repos.ModuleProgressRepo
	lessonProgressRepo repos.LessonProgressRepo
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.ModuleRepo,
	lessonRepo repos.LessonRepo,
	enrollmentRepo repos.EnrollmentRepo,
	courseProgressRepo repos.CourseProgressRepo,
	moduleProgressRepo repos.ModuleProgressRepo,
	lessonProgressRepo repos.LessonProgressRepo,
) ProgressService {
	return &progressService{
		db:                 db,
		log:                baseLog.With("service", "ProgressService"),
		courseRepo:         courseRepo,
		moduleRepo:         moduleRepo,
		lessonRepo:         lessonRepo,
		enrollmentRepo:     enrollmentRepo,
		courseProgressRepo: courseProgressRepo,
		moduleProgressRepo: moduleProgressRepo,
		lessonProgressRepo: lessonProgressRepo,
	}
}

// round1 keeps rollup percentages at one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (ps *progressService) UpdateLessonProgress(ctx context.Context, input *LessonProgressInput) (*types.LessonProgress, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if input.LessonID == uuid.Nil {
		return nil, apierr.BadRequest("LESSON_NOT_FOUND", fmt.Errorf("lesson_id is required"))
	}
	if input.TimeSpent < 0 {
		return nil, apierr.BadRequest("INVALID_TIME_SPENT", fmt.Errorf("time_spent must be non-negative"))
	}
	if input.WatchTime < 0 {
		return nil, apierr.BadRequest("INVALID_WATCH_TIME", fmt.Errorf("watch_time must be non-negative"))
	}

	var out *types.LessonProgress
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := ps.lessonRepo.GetByID(ctx, tx, input.LessonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("LESSON_NOT_FOUND")
			}
			return fmt.Errorf("fetch lesson: %w", err)
		}
		if !lesson.IsPublished {
			return apierr.NotFound("LESSON_NOT_FOUND")
		}
		module, err := ps.moduleRepo.GetByID(ctx, tx, lesson.ModuleID)
		if err != nil {
			return fmt.Errorf("fetch module: %w", err)
		}
		course, err := ps.courseRepo.GetByID(ctx, tx, module.CourseID)
		if err != nil {
			return fmt.Errorf("fetch course: %w", err)
		}
		if !course.IsPublished {
			return apierr.NotFound("LESSON_NOT_FOUND")
		}

		enrollment, err := activeEnrollment(ctx, ps.enrollmentRepo, tx, identity.Auth0ID, course.ID)
		if err != nil {
			return fmt.Errorf("check enrollment: %w", err)
		}
		if enrollment == nil {
			return apierr.Forbidden("ENROLLMENT_REQUIRED")
		}

		courseProgress, err := ps.ensureCourseProgress(ctx, tx, identity.Auth0ID, course.ID)
		if err != nil {
			return err
		}
		moduleProgress, err := ps.ensureModuleProgress(ctx, tx, courseProgress.ID, module.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		lessonProgress, err := ps.lessonProgressRepo.GetByParentAndLesson(ctx, tx, moduleProgress.ID, lesson.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("fetch lesson progress: %w", err)
		}
		if lessonProgress == nil {
			lessonProgress = &types.LessonProgress{
				ModuleProgressID: moduleProgress.ID,
				LessonID:         lesson.ID,
			}
		}
		lessonProgress.TimeSpent = input.TimeSpent
		lessonProgress.WatchTime = input.WatchTime
		lessonProgress.IsCompleted = input.IsCompleted
		if input.IsCompleted {
			lessonProgress.CompletedAt = &now
		}

		if lessonProgress.ID == uuid.Nil {
			if lessonProgress, err = ps.lessonProgressRepo.Create(ctx, tx, lessonProgress); err != nil {
				return fmt.Errorf("create lesson progress: %w", err)
			}
		} else if err := ps.lessonProgressRepo.Update(ctx, tx, lessonProgress); err != nil {
			return fmt.Errorf("update lesson progress: %w", err)
		}

		if err := ps.recalcModuleProgress(ctx, tx, moduleProgress); err != nil {
			return err
		}
		if err := ps.recalcCourseProgress(ctx, tx, courseProgress); err != nil {
			return err
		}
		if err := ps.enrollmentRepo.TouchLastAccessed(ctx, tx, identity.Auth0ID, course.ID); err != nil {
			return fmt.Errorf("touch enrollment: %w", err)
		}

		out = lessonProgress
		return nil
	}); err != nil {
		ps.log.Warn("UpdateLessonProgress: transaction failed", "lesson_id", input.LessonID, "error", err)
		return nil, err
	}
	return out, nil
}

func (ps *progressService) ensureCourseProgress(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.CourseProgress, error) {
	progress, err := ps.courseProgressRepo.GetByUserAndCourse(ctx, tx, userID, courseID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fetch course progress: %w", err)
	}

	now := time.Now().UTC()
	created, err := ps.courseProgressRepo.Create(ctx, tx, &types.CourseProgress{
		UserID:         userID,
		CourseID:       courseID,
		LastAccessedAt: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("create course progress: %w", err)
	}
	return created, nil
}

func (ps *progressService) ensureModuleProgress(ctx context.Context, tx *gorm.DB, courseProgressID, moduleID uuid.UUID) (*types.ModuleProgress, error) {
	progress, err := ps.moduleProgressRepo.GetByParentAndModule(ctx, tx, courseProgressID, moduleID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fetch module progress: %w", err)
	}

	created, err := ps.moduleProgressRepo.Create(ctx, tx, &types.ModuleProgress{
		CourseProgressID: courseProgressID,
		ModuleID:         moduleID,
	})
	if err != nil {
		return nil, fmt.Errorf("create module progress: %w", err)
	}
	return created, nil
}

// recalcModuleProgress recomputes a module rollup from its tracked
// lesson rows. Lessons the user never opened are not in the
// denominator; completion means every tracked lesson is complete.
func (ps *progressService) recalcModuleProgress(ctx context.Context, tx *gorm.DB, moduleProgress *types.ModuleProgress) error {
	lessons, err := ps.lessonProgressRepo.ListByParent(ctx, tx, moduleProgress.ID)
	if err != nil {
		return fmt.Errorf("list lesson progress: %w", err)
	}
	if len(lessons) == 0 {
		return nil
	}

	completed := 0
	timeSpent := 0
	for _, lp := range lessons {
		if lp.IsCompleted {
			completed++
		}
		timeSpent += lp.TimeSpent
	}

	moduleProgress.ProgressPercentage = round1(float64(completed) / float64(len(lessons)) * 100)
	moduleProgress.TimeSpent = timeSpent
	moduleProgress.IsCompleted = moduleProgress.ProgressPercentage == 100
	if moduleProgress.IsCompleted {
		now := time.Now().UTC()
		moduleProgress.CompletedAt = &now
	} else {
		moduleProgress.CompletedAt = nil
	}

	if err := ps.moduleProgressRepo.Update(ctx, tx, moduleProgress); err != nil {
		return fmt.Errorf("update module progress: %w", err)
	}
	return nil
}

// recalcCourseProgress averages the module percentages and mirrors the
// result onto the enrollment row.
func (ps *progressService) recalcCourseProgress(ctx context.Context, tx *gorm.DB, courseProgress *types.CourseProgress) error {
	modules, err := ps.moduleProgressRepo.ListByParent(ctx, tx, courseProgress.ID)
	if err != nil {
		return fmt.Errorf("list module progress: %w", err)
	}
	if len(modules) == 0 {
		return nil
	}

	totalProgress := 0.0
	timeSpent := 0
	for _, mp := range modules {
		totalProgress += mp.ProgressPercentage
		timeSpent += mp.TimeSpent
	}

	now := time.Now().UTC()
	courseProgress.ProgressPercentage = round1(totalProgress / float64(len(modules)))
	courseProgress.TimeSpent = timeSpent
	courseProgress.LastAccessedAt = &now

	if err := ps.courseProgressRepo.Update(ctx, tx, courseProgress); err != nil {
		return fmt.Errorf("update course progress: %w", err)
	}
	if err := ps.enrollmentRepo.SyncProgress(ctx, tx, courseProgress.UserID, courseProgress.CourseID, courseProgress.ProgressPercentage); err != nil {
		return fmt.Errorf("sync enrollment progress: %w", err)
	}
	return nil
}

func (ps *progressService) CourseProgress(ctx context.Context, courseID uuid.UUID) (*CourseProgressView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	enrollment, err := activeEnrollment(ctx, ps.enrollmentRepo, nil, identity.Auth0ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, apierr.Forbidden("ENROLLMENT_REQUIRED")
	}

	course, err := ps.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch course: %w", err)
	}

	tree, err := ps.courseProgressRepo.GetTree(ctx, nil, identity.Auth0ID, courseID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("fetch course progress: %w", err)
		}
		// first visit: materialize an empty progress row
		if tree, err = ps.ensureCourseProgress(ctx, nil, identity.Auth0ID, courseID); err != nil {
			return nil, err
		}
	}

	return buildCourseProgressView(course, tree), nil
}

func buildCourseProgressView(course *types.Course, progress *types.CourseProgress) *CourseProgressView {
	view := &CourseProgressView{
		CourseID:           progress.CourseID,
		CourseTitle:        course.Title,
		ProgressPercentage: progress.ProgressPercentage,
		TimeSpent:          progress.TimeSpent,
		LastAccessedAt:     progress.LastAccessedAt,
		Modules:            make([]*ModuleProgressView, 0, len(progress.Modules)),
	}

	for i := range progress.Modules {
		mp := &progress.Modules[i]
		moduleView := &ModuleProgressView{
			ID:                 mp.ID,
			ModuleID:           mp.ModuleID,
			IsCompleted:        mp.IsCompleted,
			CompletedAt:        mp.CompletedAt,
			ProgressPercentage: mp.ProgressPercentage,
			TimeSpent:          mp.TimeSpent,
			Lessons:            make([]*LessonProgressView, 0, len(mp.Lessons)),
		}
		if mp.Module != nil {
			moduleView.ModuleTitle = mp.Module.Title
			moduleView.ModuleOrder = mp.Module.Order
		}
		for j := range mp.Lessons {
			lp := &mp.Lessons[j]
			lessonView := &LessonProgressView{
				ID:          lp.ID,
				LessonID:    lp.LessonID,
				IsCompleted: lp.IsCompleted,
				CompletedAt: lp.CompletedAt,
				TimeSpent:   lp.TimeSpent,
				WatchTime:   lp.WatchTime,
			}
			if lp.Lesson != nil {
				lessonView.LessonTitle = lp.Lesson.Title
				lessonView.LessonOrder = lp.Lesson.Order
				lessonView.LessonType = lp.Lesson.LessonType
				lessonView.VideoDuration = lp.Lesson.VideoDuration
			}
			moduleView.Lessons = append(moduleView.Lessons, lessonView)
		}
		sort.Slice(moduleView.Lessons, func(a, b int) bool {
			return moduleView.Lessons[a].LessonOrder < moduleView.Lessons[b].LessonOrder
		})
		view.Modules = append(view.Modules, moduleView)
	}
	sort.Slice(view.Modules, func(a, b int) bool {
		return view.Modules[a].ModuleOrder < view.Modules[b].ModuleOrder
	})
	return view
}

func (ps *progressService) Stats(ctx context.Context, timeframe string) (*ProgressStats, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	if timeframe == "" {
		timeframe = "all"
	}
	now := time.Now().UTC()
	var since *time.Time
	switch timeframe {
	case "all":
	case "week":
		t := now.AddDate(0, 0, -7)
		since = &t
	case "month":
		t := now.AddDate(0, 0, -30)
		since = &t
	case "year":
		t := now.AddDate(0, 0, -365)
		since = &t
	default:
		return nil, apierr.BadRequest("INVALID_TIMEFRAME", fmt.Errorf("timeframe must be week, month, year or all"))
	}

	progresses, err := ps.courseProgressRepo.ListByUser(ctx, nil, identity.Auth0ID, since)
	if err != nil {
		ps.log.Warn("Stats: query failed", "error", err)
		return nil, fmt.Errorf("list course progress: %w", err)
	}

	stats := &ProgressStats{
		Timeframe:      timeframe,
		Categories:     []*CategoryProgress{},
		RecentActivity: []*learning.RecentLesson{},
	}

	byCategory := map[string]*CategoryProgress{}
	progressByCategory := map[string]float64{}
	totalProgress := 0.0
	for _, cp := range progresses {
		stats.Overview.TotalCourses++
		stats.Overview.TotalTimeSpent += cp.TimeSpent
		totalProgress += cp.ProgressPercentage
		if cp.ProgressPercentage == 100 {
			stats.Overview.CompletedCourses++
		}

		category := "Uncategorized"
		if cp.Course != nil && cp.Course.Category != "" {
			category = cp.Course.Category
		}
		entry := byCategory[category]
		if entry == nil {
			entry = &CategoryProgress{Category: category}
			byCategory[category] = entry
			stats.Categories = append(stats.Categories, entry)
		}
		entry.CourseCount++
		entry.TimeSpent += cp.TimeSpent
		progressByCategory[category] += cp.ProgressPercentage
	}

	if stats.Overview.TotalCourses > 0 {
		total := float64(stats.Overview.TotalCourses)
		stats.Overview.AverageProgress = round1(totalProgress / total)
		stats.Overview.CompletionRate = round1(float64(stats.Overview.CompletedCourses) / total * 100)
		stats.TimeBreakdown.AveragePerCourse = round1(float64(stats.Overview.TotalTimeSpent) / total / 3600)
	}
	stats.TimeBreakdown.TotalHours = round1(float64(stats.Overview.TotalTimeSpent) / 3600)

	for _, entry := range stats.Categories {
		entry.AverageProgress = round1(progressByCategory[entry.Category] / float64(entry.CourseCount))
	}
	sort.Slice(stats.Categories, func(i, j int) bool {
		return stats.Categories[i].TimeSpent > stats.Categories[j].TimeSpent
	})

	if since != nil {
		recent, err := ps.lessonProgressRepo.RecentCompleted(ctx, nil, identity.Auth0ID, *since, recentActivityLimit)
		if err != nil {
			ps.log.Warn("Stats: recent activity query failed", "error", err)
			return nil, fmt.Errorf("list recent lessons: %w", err)
		}
		stats.RecentActivity = recent
	}

	return stats, nil
}

func (ps *progressService) LearningPath(ctx context.Context, category string) ([]*LearningPathView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	progresses, err := ps.courseProgressRepo.ListByUser(ctx, nil, identity.Auth0ID, nil)
	if err != nil {
		ps.log.Warn("LearningPath: query failed", "error", err)
		return nil, fmt.Errorf("list course progress: %w", err)
	}

	paths := map[string]*LearningPathView{}
	progressByPath := map[string]float64{}
	ordered := []*LearningPathView{}
	for _, cp := range progresses {
		if cp.Course == nil {
			continue
		}
		if category != "" && cp.Course.Category != category {
			continue
		}
		cat := cp.Course.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		path := paths[cat]
		if path == nil {
			path = &LearningPathView{Category: cat}
			paths[cat] = path
			ordered = append(ordered, path)
		}

		completedModules := 0
		for _, mp := range cp.Modules {
			if mp.IsCompleted {
				completedModules++
			}
		}

		path.Courses = append(path.Courses, &LearningPathCourse{
			CourseID:           cp.CourseID,
			CourseTitle:        cp.Course.Title,
			Subcategory:        cp.Course.Subcategory,
			DifficultyLevel:    cp.Course.DifficultyLevel,
			EstimatedDuration:  cp.Course.EstimatedDuration,
			ThumbnailURL:       cp.Course.ThumbnailURL,
			ProgressPercentage: cp.ProgressPercentage,
			TimeSpent:          cp.TimeSpent,
			LastAccessedAt:     cp.LastAccessedAt,
			CompletedModules:   completedModules,
			TotalModules:       len(cp.Modules),
			IsCompleted:        cp.ProgressPercentage == 100,
		})
		path.TotalTimeSpent += cp.TimeSpent
		progressByPath[cat] += cp.ProgressPercentage
		if cp.ProgressPercentage == 100 {
			path.CompletedCourses++
		}
	}

	for _, path := range ordered {
		path.CourseCount = len(path.Courses)
		if path.CourseCount > 0 {
			path.AverageProgress = round1(progressByPath[path.Category] / float64(path.CourseCount))
		}
		sort.Slice(path.Courses, func(i, j int) bool {
			a, b := path.Courses[i], path.Courses[j]
			if a.ProgressPercentage != b.ProgressPercentage {
				return a.ProgressPercentage > b.ProgressPercentage
			}
			return laterAccess(a.LastAccessedAt, b.LastAccessedAt)
		})
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].TotalTimeSpent > ordered[j].TotalTimeSpent
	})
	return ordered, nil
}

// laterAccess orders nil timestamps last so never-opened courses sink.
func laterAccess(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
