package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type SchoolRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.School, error)
	GetClassByID(ctx context.Context, tx *gorm.DB, classID uuid.UUID) (*types.SchoolClass, error)
}

type schoolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSchoolRepo(db *gorm.DB, baseLog *logger.Logger) SchoolRepo {
	repoLog := baseLog.With("repo", "SchoolRepo")
	return &schoolRepo{db: db, log: repoLog}
}

func (sr *schoolRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.School
	if err := transaction.WithContext(ctx).
		Preload("Classes", func(db *gorm.DB) *gorm.DB {
			return db.Order("grade, name")
		}).
		Order("name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *schoolRepo) GetClassByID(ctx context.Context, tx *gorm.DB, classID uuid.UUID) (*types.SchoolClass, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.SchoolClass
	if err := transaction.WithContext(ctx).
		Preload("School").
		Where("id = ?", classID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
