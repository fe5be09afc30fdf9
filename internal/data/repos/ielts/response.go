package ielts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type ResponseRepo interface {
	UpsertListening(ctx context.Context, tx *gorm.DB, response *types.IeltsListeningResponse) error
	UpsertReading(ctx context.Context, tx *gorm.DB, response *types.IeltsReadingResponse) error
	UpsertWriting(ctx context.Context, tx *gorm.DB, response *types.IeltsWritingResponse) error
	UpsertSpeaking(ctx context.Context, tx *gorm.DB, response *types.IeltsSpeakingResponse) error
	ListeningByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.IeltsListeningResponse, error)
	ReadingByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.IeltsReadingResponse, error)
	WritingByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.IeltsWritingResponse, error)
	SpeakingByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.IeltsSpeakingResponse, error)
	WritingByID(ctx context.Context, tx *gorm.DB, responseID uuid.UUID) (*types.IeltsWritingResponse, error)
	SpeakingByID(ctx context.Context, tx *gorm.DB, responseID uuid.UUID) (*types.IeltsSpeakingResponse, error)
	GradeListening(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, isCorrect bool) error
	GradeReading(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, isCorrect bool) error
	GradeWriting(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, bandScore float64, feedback string) error
	GradeSpeaking(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, bandScore float64, feedback string) error
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	repoLog := baseLog.With("repo", "IeltsResponseRepo")
	return &responseRepo{db: db, log: repoLog}
}

func (r *responseRepo) UpsertListening(ctx context.Context, tx *gorm.DB, response *types.IeltsListeningResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"answer_text", "selected_option_id", "updated_at",
			}),
		}).
		Create(response).Error
}

func (r *responseRepo) UpsertReading(ctx context.Context, tx *gorm.DB, response *types.IeltsReadingResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"answer_text", "selected_option_id", "updated_at",
			}),
		}).
		Create(response).Error
}

func (r *responseRepo) UpsertWriting(ctx context.Context, tx *gorm.DB, response *types.IeltsWritingResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "task_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"essay_text", "word_count", "updated_at",
			}),
		}).
		Create(response).Error
}

func (r *responseRepo) UpsertSpeaking(ctx context.Context, tx *gorm.DB, response *types.IeltsSpeakingResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "part_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"audio_url", "transcript", "duration_seconds", "updated_at",
			}),
		}).
		Create(response).Error
}

func (r *responseRepo) ListeningByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.IeltsListeningResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.IeltsListeningResponse
	if err := transaction.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *responseRepo) ReadingByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.IeltsReadingResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.IeltsReadingResponse
	if err := transaction.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *responseRepo) WritingByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.IeltsWritingResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.IeltsWritingResponse
	if err := transaction.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *responseRepo) SpeakingByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.IeltsSpeakingResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.IeltsSpeakingResponse
	if err := transaction.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *responseRepo) WritingByID(ctx context.Context, tx *gorm.DB, responseID uuid.UUID) (*types.IeltsWritingResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.IeltsWritingResponse
	if err := transaction.WithContext(ctx).
		Where("id = ?", responseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *responseRepo) SpeakingByID(ctx context.Context, tx *gorm.DB, responseID uuid.UUID) (*types.IeltsSpeakingResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.IeltsSpeakingResponse
	if err := transaction.WithContext(ctx).
		Where("id = ?", responseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *responseRepo) GradeListening(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, isCorrect bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.IeltsListeningResponse{}).
		Where("id = ?", responseID).
		Update("is_correct", isCorrect).Error
}

func (r *responseRepo) GradeReading(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, isCorrect bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.IeltsReadingResponse{}).
		Where("id = ?", responseID).
		Update("is_correct", isCorrect).Error
}

func (r *responseRepo) GradeWriting(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, bandScore float64, feedback string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.IeltsWritingResponse{}).
		Where("id = ?", responseID).
		Updates(map[string]interface{}{
			"band_score":        bandScore,
			"examiner_feedback": feedback,
		}).Error
}

func (r *responseRepo) GradeSpeaking(ctx context.Context, tx *gorm.DB, responseID uuid.UUID, bandScore float64, feedback string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.IeltsSpeakingResponse{}).
		Where("id = ?", responseID).
		Updates(map[string]interface{}{
			"band_score":        bandScore,
			"examiner_feedback": feedback,
		}).Error
}
