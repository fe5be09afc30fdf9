package assessment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type ResponseRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, response *types.Response) (*types.Response, error)
	BatchUpsert(ctx context.Context, tx *gorm.DB, responses []*types.Response) error
	ListByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.Response, error)
	UpdateGrading(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, isCorrect *bool, pointsAwarded float64) error
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	repoLog := baseLog.With("repo", "ResponseRepo")
	return &responseRepo{db: db, log: repoLog}
}

// Upsert keys on (attempt_id, question_id) so re-answering a question
// replaces the earlier response instead of accumulating rows.
func (r *responseRepo) Upsert(ctx context.Context, tx *gorm.DB, response *types.Response) (*types.Response, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option", "additional_data", "updated_at",
			}),
		}).
		Create(response).Error; err != nil {
		return nil, err
	}
	return response, nil
}

func (r *responseRepo) BatchUpsert(ctx context.Context, tx *gorm.DB, responses []*types.Response) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(responses) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option", "additional_data", "updated_at",
			}),
		}).
		Create(&responses).Error
}

func (r *responseRepo) ListByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.Response, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Response
	if err := transaction.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateGrading records the auto-grading verdict. isCorrect nil leaves
// the column NULL for question types the grader does not score.
func (r *responseRepo) UpdateGrading(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, isCorrect *bool, pointsAwarded float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Response{}).
		Where("id = ?", responseID).
		Updates(map[string]interface{}{
			"is_correct":     isCorrect,
			"points_awarded": pointsAwarded,
		}).Error
}
