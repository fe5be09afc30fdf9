package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type CertificateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, certificate *types.Certificate) (*types.Certificate, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.Certificate, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Certificate, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	repoLog := baseLog.With("repo", "CertificateRepo")
	return &certificateRepo{db: db, log: repoLog}
}

func (r *certificateRepo) Create(ctx context.Context, tx *gorm.DB, certificate *types.Certificate) (*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(certificate).Error; err != nil {
		return nil, err
	}
	return certificate, nil
}

func (r *certificateRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Certificate
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *certificateRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Certificate
	if err := transaction.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
