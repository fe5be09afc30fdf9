package ielts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type AttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt) (*types.IeltsTestAttempt, error)
	GetByID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.IeltsTestAttempt, error)
	GetWithResponses(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.IeltsTestAttempt, error)
	GetActiveByUserAndTest(ctx context.Context, tx *gorm.DB, userID string, testID uuid.UUID) (*types.IeltsTestAttempt, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.IeltsTestAttempt, error)
	Update(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt) error
	UpdateFields(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, fields map[string]interface{}) error
	ListExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.IeltsTestAttempt, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	repoLog := baseLog.With("repo", "IeltsAttemptRepo")
	return &attemptRepo{db: db, log: repoLog}
}

func (r *attemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt) (*types.IeltsTestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *attemptRepo) GetByID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.IeltsTestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.IeltsTestAttempt
	if err := transaction.WithContext(ctx).
		Where("id = ?", attemptID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *attemptRepo) GetWithResponses(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.IeltsTestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.IeltsTestAttempt
	if err := transaction.WithContext(ctx).
		Preload("IeltsTest").
		Preload("ListeningResponses").
		Preload("ReadingResponses").
		Preload("WritingResponses").
		Preload("SpeakingResponses").
		Where("id = ?", attemptID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetActiveByUserAndTest returns the newest attempt on the test that
// has not reached a terminal status yet.
func (r *attemptRepo) GetActiveByUserAndTest(ctx context.Context, tx *gorm.DB, userID string, testID uuid.UUID) (*types.IeltsTestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	active := []types.IeltsAttemptStatus{
		types.IeltsAttemptNotStarted,
		types.IeltsAttemptInProgress,
		types.IeltsAttemptListeningCompleted,
		types.IeltsAttemptReadingCompleted,
		types.IeltsAttemptWritingCompleted,
	}

	var result types.IeltsTestAttempt
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND ielts_test_id = ? AND status IN ?", userID, testID, active).
		Order("started_at DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *attemptRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.IeltsTestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.IeltsTestAttempt
	if err := transaction.WithContext(ctx).
		Preload("IeltsTest").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) Update(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(attempt).Error
}

func (r *attemptRepo) UpdateFields(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.IeltsTestAttempt{}).
		Where("id = ?", attemptID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListExpiredBefore finds attempts still in an active status whose
// expiry deadline has passed, for the background sweeper.
func (r *attemptRepo) ListExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.IeltsTestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	active := []types.IeltsAttemptStatus{
		types.IeltsAttemptNotStarted,
		types.IeltsAttemptInProgress,
		types.IeltsAttemptListeningCompleted,
		types.IeltsAttemptReadingCompleted,
		types.IeltsAttemptWritingCompleted,
	}

	var results []*types.IeltsTestAttempt
	if err := transaction.WithContext(ctx).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?", active, cutoff).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
