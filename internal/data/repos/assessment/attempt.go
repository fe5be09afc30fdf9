package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type AttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.TestAttempt) (*types.TestAttempt, error)
	GetByID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.TestAttempt, error)
	GetWithResponses(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.TestAttempt, error)
	GetActiveByUserAndTest(ctx context.Context, tx *gorm.DB, userID string, testID uuid.UUID) (*types.TestAttempt, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, page, pageSize int) ([]*types.TestAttempt, int64, error)
	ListByTest(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.TestAttempt, error)
	Finish(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, status types.TestAttemptStatus, finishID string, submittedAt *time.Time) error
	SetScore(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, score float64, status types.TestAttemptStatus) error
	ListDueBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.TestAttempt, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	repoLog := baseLog.With("repo", "AttemptRepo")
	return &attemptRepo{db: db, log: repoLog}
}

func (r *attemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.TestAttempt) (*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *attemptRepo) GetByID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.TestAttempt
	if err := transaction.WithContext(ctx).
		Where("id = ?", attemptID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *attemptRepo) GetWithResponses(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.TestAttempt
	if err := transaction.WithContext(ctx).
		Preload("Test").
		Preload("Responses").
		Preload("Responses.Question").
		Preload("Responses.Question.Options").
		Where("id = ?", attemptID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetActiveByUserAndTest returns the newest attempt still IN_PROGRESS
// for the user on the test. gorm.ErrRecordNotFound when there is none.
func (r *attemptRepo) GetActiveByUserAndTest(ctx context.Context, tx *gorm.DB, userID string, testID uuid.UUID) (*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.TestAttempt
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, types.TestAttemptInProgress).
		Order("started_at DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *attemptRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string, page, pageSize int) ([]*types.TestAttempt, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.TestAttempt{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var results []*types.TestAttempt
	if err := transaction.WithContext(ctx).
		Preload("Test").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *attemptRepo) ListByTest(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TestAttempt
	if err := transaction.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Finish transitions the attempt out of IN_PROGRESS. The WHERE clause
// doubles as a guard so a finished attempt is never finished twice.
func (r *attemptRepo) Finish(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, status types.TestAttemptStatus, finishID string, submittedAt *time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updates := map[string]interface{}{
		"status":    status,
		"finish_id": finishID,
	}
	if submittedAt != nil {
		updates["submitted_at"] = *submittedAt
	}

	result := transaction.WithContext(ctx).
		Model(&types.TestAttempt{}).
		Where("id = ? AND status = ?", attemptID, types.TestAttemptInProgress).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attemptRepo) SetScore(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, score float64, status types.TestAttemptStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.TestAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"score":  score,
			"status": status,
		}).Error
}

// ListDueBefore finds IN_PROGRESS attempts whose deadline has passed.
// The scheduler sweeps these when redis has lost its expiry entries.
func (r *attemptRepo) ListDueBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TestAttempt
	if err := transaction.WithContext(ctx).
		Where("status = ? AND due_at IS NOT NULL AND due_at < ?", types.TestAttemptInProgress, cutoff).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
