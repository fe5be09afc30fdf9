package learning

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) (*types.Lesson, error)
	GetByID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error)
	ListByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.Lesson, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error)
	Neighbors(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) (prev, next *types.Lesson, err error)
	Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error
	Delete(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	repoLog := baseLog.With("repo", "LessonRepo")
	return &lessonRepo{db: db, log: repoLog}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) (*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(lesson).Error; err != nil {
		return nil, err
	}
	return lesson, nil
}

func (r *lessonRepo) GetByID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Lesson
	if err := transaction.WithContext(ctx).
		Preload("Resources").
		Where("id = ?", lessonID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *lessonRepo) ListByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
	if err := transaction.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order(`"order"`).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Joins("JOIN t_module ON t_module.id = t_lesson.module_id").
		Where("t_module.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// Neighbors finds the published lessons before and after the given one
// within its module by order position. A nil result means the lesson
// sits at the module boundary.
func (r *lessonRepo) Neighbors(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) (*types.Lesson, *types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var prev types.Lesson
	err := transaction.WithContext(ctx).
		Where(`module_id = ? AND "order" < ? AND is_published = true`, lesson.ModuleID, lesson.Order).
		Order(`"order" DESC`).
		First(&prev).Error
	prevPtr := &prev
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		prevPtr = nil
	}

	var next types.Lesson
	err = transaction.WithContext(ctx).
		Where(`module_id = ? AND "order" > ? AND is_published = true`, lesson.ModuleID, lesson.Order).
		Order(`"order" ASC`).
		First(&next).Error
	nextPtr := &next
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		nextPtr = nil
	}

	return prevPtr, nextPtr, nil
}

func (r *lessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(lesson).Error
}

func (r *lessonRepo) Delete(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", lessonID).
		Delete(&types.Lesson{}).Error
}
