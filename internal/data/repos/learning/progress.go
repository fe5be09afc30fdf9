package learning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type CourseProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, progress *types.CourseProgress) (*types.CourseProgress, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.CourseProgress, error)
	GetTree(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.CourseProgress, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, accessedSince *time.Time) ([]*types.CourseProgress, error)
	ListByCourseForUsers(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, userIDs []string) ([]*types.CourseProgress, error)
	AverageByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, float64, error)
	Update(ctx context.Context, tx *gorm.DB, progress *types.CourseProgress) error
}

type courseProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	repoLog := baseLog.With("repo", "CourseProgressRepo")
	return &courseProgressRepo{db: db, log: repoLog}
}

func (r *courseProgressRepo) Create(ctx context.Context, tx *gorm.DB, progress *types.CourseProgress) (*types.CourseProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *courseProgressRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.CourseProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CourseProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTree loads the progress row with its module and lesson children,
// the shape the rollup recomputation walks.
func (r *courseProgressRepo) GetTree(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.CourseProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CourseProgress
	if err := transaction.WithContext(ctx).
		Preload("Modules").
		Preload("Modules.Module").
		Preload("Modules.Lessons").
		Preload("Modules.Lessons.Lesson").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *courseProgressRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string, accessedSince *time.Time) ([]*types.CourseProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Preload("Course").
		Preload("Modules").
		Where("user_id = ?", userID)
	if accessedSince != nil {
		query = query.Where("last_accessed_at >= ?", *accessedSince)
	}

	var results []*types.CourseProgress
	if err := query.Order("last_accessed_at DESC NULLS LAST").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListByCourseForUsers fetches the course progress rows for a batch of
// learners, the roster view's one-query replacement for per-row lookups.
func (r *courseProgressRepo) ListByCourseForUsers(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, userIDs []string) ([]*types.CourseProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseProgress
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_id = ? AND user_id IN ?", courseID, userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// AverageByCourse returns how many learners have a progress row for the
// course and their mean completion percentage.
func (r *courseProgressRepo) AverageByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row struct {
		Count   int64   `gorm:"column:count"`
		Average float64 `gorm:"column:average"`
	}
	if err := transaction.WithContext(ctx).
		Model(&types.CourseProgress{}).
		Select("COUNT(*) AS count, COALESCE(AVG(progress_percentage), 0) AS average").
		Where("course_id = ?", courseID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Count, row.Average, nil
}

func (r *courseProgressRepo) Update(ctx context.Context, tx *gorm.DB, progress *types.CourseProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(progress).Error
}

// ModuleCompletion is one module's progress rollup across every
// learner: how many started it and how many finished.
type ModuleCompletion struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
}

type ModuleProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, progress *types.ModuleProgress) (*types.ModuleProgress, error)
	GetByParentAndModule(ctx context.Context, tx *gorm.DB, courseProgressID, moduleID uuid.UUID) (*types.ModuleProgress, error)
	ListByParent(ctx context.Context, tx *gorm.DB, courseProgressID uuid.UUID) ([]*types.ModuleProgress, error)
	CompletionByModules(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) (map[uuid.UUID]ModuleCompletion, error)
	Update(ctx context.Context, tx *gorm.DB, progress *types.ModuleProgress) error
}

type moduleProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleProgressRepo(db *gorm.DB, baseLog *logger.Logger) ModuleProgressRepo {
	repoLog := baseLog.With("repo", "ModuleProgressRepo")
	return &moduleProgressRepo{db: db, log: repoLog}
}

func (r *moduleProgressRepo) Create(ctx context.Context, tx *gorm.DB, progress *types.ModuleProgress) (*types.ModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *moduleProgressRepo) GetByParentAndModule(ctx context.Context, tx *gorm.DB, courseProgressID, moduleID uuid.UUID) (*types.ModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ModuleProgress
	if err := transaction.WithContext(ctx).
		Where("course_progress_id = ? AND module_id = ?", courseProgressID, moduleID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *moduleProgressRepo) ListByParent(ctx context.Context, tx *gorm.DB, courseProgressID uuid.UUID) ([]*types.ModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ModuleProgress
	if err := transaction.WithContext(ctx).
		Where("course_progress_id = ?", courseProgressID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleProgressRepo) CompletionByModules(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) (map[uuid.UUID]ModuleCompletion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	stats := make(map[uuid.UUID]ModuleCompletion, len(moduleIDs))
	if len(moduleIDs) == 0 {
		return stats, nil
	}

	var rows []struct {
		ModuleID  uuid.UUID `gorm:"column:module_id"`
		Total     int64     `gorm:"column:total"`
		Completed int64     `gorm:"column:completed"`
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ModuleProgress{}).
		Select("module_id, COUNT(*) AS total, SUM(CASE WHEN is_completed THEN 1 ELSE 0 END) AS completed").
		Where("module_id IN ?", moduleIDs).
		Group("module_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats[row.ModuleID] = ModuleCompletion{Total: row.Total, Completed: row.Completed}
	}
	return stats, nil
}

func (r *moduleProgressRepo) Update(ctx context.Context, tx *gorm.DB, progress *types.ModuleProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(progress).Error
}

// RecentLesson is a completed lesson joined up through the content
// hierarchy, shaped for the recent-activity feed in learning stats.
type RecentLesson struct {
	LessonID    uuid.UUID  `gorm:"column:lesson_id" json:"lesson_id"`
	LessonTitle string     `gorm:"column:lesson_title" json:"lesson_title"`
	ModuleTitle string     `gorm:"column:module_title" json:"module_title"`
	CourseID    uuid.UUID  `gorm:"column:course_id" json:"course_id"`
	CourseTitle string     `gorm:"column:course_title" json:"course_title"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	TimeSpent   int        `gorm:"column:time_spent" json:"time_spent"`
}

type LessonProgressRepo interface {
	GetByParentAndLesson(ctx context.Context, tx *gorm.DB, moduleProgressID, lessonID uuid.UUID) (*types.LessonProgress, error)
	Create(ctx context.Context, tx *gorm.DB, progress *types.LessonProgress) (*types.LessonProgress, error)
	Update(ctx context.Context, tx *gorm.DB, progress *types.LessonProgress) error
	ListByParent(ctx context.Context, tx *gorm.DB, moduleProgressID uuid.UUID) ([]*types.LessonProgress, error)
	RecentCompleted(ctx context.Context, tx *gorm.DB, userID string, since time.Time, limit int) ([]*RecentLesson, error)
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	repoLog := baseLog.With("repo", "LessonProgressRepo")
	return &lessonProgressRepo{db: db, log: repoLog}
}

func (r *lessonProgressRepo) GetByParentAndLesson(ctx context.Context, tx *gorm.DB, moduleProgressID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.LessonProgress
	if err := transaction.WithContext(ctx).
		Where("module_progress_id = ? AND lesson_id = ?", moduleProgressID, lessonID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *lessonProgressRepo) Create(ctx context.Context, tx *gorm.DB, progress *types.LessonProgress) (*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *lessonProgressRepo) Update(ctx context.Context, tx *gorm.DB, progress *types.LessonProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(progress).Error
}

func (r *lessonProgressRepo) ListByParent(ctx context.Context, tx *gorm.DB, moduleProgressID uuid.UUID) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LessonProgress
	if err := transaction.WithContext(ctx).
		Where("module_progress_id = ?", moduleProgressID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// RecentCompleted lists the newest completed lessons for a user within
// a window, joined through the progress tree for display titles.
func (r *lessonProgressRepo) RecentCompleted(ctx context.Context, tx *gorm.DB, userID string, since time.Time, limit int) ([]*RecentLesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*RecentLesson
	if err := transaction.WithContext(ctx).
		Table("t_lesson_progress").
		Select("t_lesson_progress.lesson_id, t_lesson.title AS lesson_title, t_module.title AS module_title, t_course.id AS course_id, t_course.title AS course_title, t_lesson_progress.completed_at, t_lesson_progress.time_spent").
		Joins("JOIN t_module_progress ON t_module_progress.id = t_lesson_progress.module_progress_id").
		Joins("JOIN t_course_progress ON t_course_progress.id = t_module_progress.course_progress_id").
		Joins("JOIN t_lesson ON t_lesson.id = t_lesson_progress.lesson_id").
		Joins("JOIN t_module ON t_module.id = t_lesson.module_id").
		Joins("JOIN t_course ON t_course.id = t_module.course_id").
		Where("t_course_progress.user_id = ?", userID).
		Where("t_lesson_progress.is_completed = ? AND t_lesson_progress.completed_at >= ?", true, since).
		Order("t_lesson_progress.completed_at DESC").
		Limit(limit).
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
