package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type ModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error)
	GetByID(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (*types.Module, error)
	GetWithLessons(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (*types.Module, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Module, error)
	CountByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Update(ctx context.Context, tx *gorm.DB, module *types.Module) error
	Delete(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	repoLog := baseLog.With("repo", "ModuleRepo")
	return &moduleRepo{db: db, log: repoLog}
}

func (r *moduleRepo) Create(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(module).Error; err != nil {
		return nil, err
	}
	return module, nil
}

func (r *moduleRepo) GetByID(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Module
	if err := transaction.WithContext(ctx).
		Where("id = ?", moduleID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *moduleRepo) GetWithLessons(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Module
	if err := transaction.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Preload("Lessons.Resources").
		Where("id = ?", moduleID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *moduleRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Module
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order(`"order"`).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) CountByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	counts := make(map[uuid.UUID]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uuid.UUID `gorm:"column:course_id"`
		Count    int64     `gorm:"column:count"`
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Module{}).
		Select("course_id, COUNT(*) AS count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Count
	}
	return counts, nil
}

func (r *moduleRepo) Update(ctx context.Context, tx *gorm.DB, module *types.Module) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(module).Error
}

func (r *moduleRepo) Delete(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", moduleID).
		Delete(&types.Module{}).Error
}
