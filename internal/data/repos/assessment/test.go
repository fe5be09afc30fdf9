package assessment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type TestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, test *types.Test) (*types.Test, error)
	GetByID(ctx context.Context, tx *gorm.DB, testID uuid.UUID) (*types.Test, error)
	GetFull(ctx context.Context, tx *gorm.DB, testID uuid.UUID) (*types.Test, error)
	List(ctx context.Context, tx *gorm.DB, page, pageSize int) ([]*types.Test, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, testID uuid.UUID) error
	GetQuestion(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error)
	QuestionsByTest(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.Question, error)
}

type testRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestRepo(db *gorm.DB, baseLog *logger.Logger) TestRepo {
	repoLog := baseLog.With("repo", "TestRepo")
	return &testRepo{db: db, log: repoLog}
}

// Create persists the test with its nested sections, tasks, questions
// and options in one pass through the association writer.
func (r *testRepo) Create(ctx context.Context, tx *gorm.DB, test *types.Test) (*types.Test, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(test).Error; err != nil {
		return nil, err
	}
	return test, nil
}

func (r *testRepo) GetByID(ctx context.Context, tx *gorm.DB, testID uuid.UUID) (*types.Test, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Test
	if err := transaction.WithContext(ctx).
		Where("id = ?", testID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testRepo) GetFull(ctx context.Context, tx *gorm.DB, testID uuid.UUID) (*types.Test, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Test
	if err := transaction.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"questionNumber"`)
		}).
		Preload("Sections.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Preload("Sections.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Preload("Sections.Tasks.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"questionNumber"`)
		}).
		Preload("Sections.Tasks.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Where("id = ?", testID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testRepo) List(ctx context.Context, tx *gorm.DB, page, pageSize int) ([]*types.Test, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.Test{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var results []*types.Test
	if err := transaction.WithContext(ctx).
		Order(`"createdAt" DESC`).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *testRepo) Delete(ctx context.Context, tx *gorm.DB, testID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", testID).
		Delete(&types.Test{}).Error
}

func (r *testRepo) GetQuestion(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Question
	if err := transaction.WithContext(ctx).
		Preload("Options").
		Where("id = ?", questionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// QuestionsByTest flattens every question under the test, whether it
// hangs off a section directly or through a task. Options ride along
// for grading.
func (r *testRepo) QuestionsByTest(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Question
	if err := transaction.WithContext(ctx).
		Preload("Options").
		Joins(`LEFT JOIN t_section sq ON sq.id = t_question."sectionId"`).
		Joins(`LEFT JOIN t_task tk ON tk.id = t_question."taskId"`).
		Joins(`LEFT JOIN t_section ts ON ts.id = tk."sectionId"`).
		Where(`sq."testId" = ? OR ts."testId" = ?`, testID, testID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
