package ielts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type ListFilter struct {
	Status   types.IeltsTestStatus
	TestType types.IeltsTestType
	Page     int
	PageSize int
}

type TestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, test *types.IeltsTest) (*types.IeltsTest, error)
	GetByID(ctx context.Context, tx *gorm.DB, testID uuid.UUID) (*types.IeltsTest, error)
	GetFull(ctx context.Context, tx *gorm.DB, testID uuid.UUID) (*types.IeltsTest, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.IeltsTest, int64, error)
	Update(ctx context.Context, tx *gorm.DB, test *types.IeltsTest) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, testID uuid.UUID, status types.IeltsTestStatus, markPublished bool) error
	Delete(ctx context.Context, tx *gorm.DB, testID uuid.UUID) error
	ListeningQuestions(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.IeltsListeningQuestion, error)
	ReadingQuestions(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.IeltsReadingQuestion, error)
	WritingTasks(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.IeltsWritingTask, error)
}

type testRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestRepo(db *gorm.DB, baseLog *logger.Logger) TestRepo {
	repoLog := baseLog.With("repo", "IeltsTestRepo")
	return &testRepo{db: db, log: repoLog}
}

// Create persists the test together with whichever module subtests are
// attached, cascading down to sections, questions and options.
func (r *testRepo) Create(ctx context.Context, tx *gorm.DB, test *types.IeltsTest) (*types.IeltsTest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(test).Error; err != nil {
		return nil, err
	}
	return test, nil
}

func (r *testRepo) GetByID(ctx context.Context, tx *gorm.DB, testID uuid.UUID) (*types.IeltsTest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.IeltsTest
	if err := transaction.WithContext(ctx).
		Where("id = ?", testID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testRepo) GetFull(ctx context.Context, tx *gorm.DB, testID uuid.UUID) (*types.IeltsTest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.IeltsTest
	if err := transaction.WithContext(ctx).
		Preload("Listening.Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("section_number")
		}).
		Preload("Listening.Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number")
		}).
		Preload("Listening.Sections.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("label")
		}).
		Preload("Reading.Passages", func(db *gorm.DB) *gorm.DB {
			return db.Order("passage_number")
		}).
		Preload("Reading.Passages.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number")
		}).
		Preload("Reading.Passages.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("label")
		}).
		Preload("Writing.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_number")
		}).
		Preload("Speaking.Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("part_number")
		}).
		Where("id = ?", testID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testRepo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.IeltsTest, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.IeltsTest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TestType != "" {
		query = query.Where("test_type = ?", filter.TestType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var results []*types.IeltsTest
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *testRepo) Update(ctx context.Context, tx *gorm.DB, test *types.IeltsTest) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(test).Error
}

// UpdateStatus moves the test through its lifecycle. markPublished
// stamps published_at, which the caller sets only on the first
// transition to ACTIVE so the original publish date survives later
// deactivate/activate cycles.
func (r *testRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, testID uuid.UUID, status types.IeltsTestStatus, markPublished bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updates := map[string]interface{}{"status": status}
	if markPublished {
		updates["published_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}

	result := transaction.WithContext(ctx).
		Model(&types.IeltsTest{}).
		Where("id = ?", testID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *testRepo) Delete(ctx context.Context, tx *gorm.DB, testID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", testID).
		Delete(&types.IeltsTest{}).Error
}

func (r *testRepo) ListeningQuestions(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.IeltsListeningQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.IeltsListeningQuestion
	if err := transaction.WithContext(ctx).
		Preload("Options").
		Joins("JOIN t_ielts_listening_section s ON s.id = t_ielts_listening_question.section_id").
		Joins("JOIN t_ielts_listening_test lt ON lt.id = s.listening_test_id").
		Where("lt.ielts_test_id = ?", testID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *testRepo) ReadingQuestions(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.IeltsReadingQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.IeltsReadingQuestion
	if err := transaction.WithContext(ctx).
		Preload("Options").
		Joins("JOIN t_ielts_reading_passage p ON p.id = t_ielts_reading_question.passage_id").
		Joins("JOIN t_ielts_reading_test rt ON rt.id = p.reading_test_id").
		Where("rt.ielts_test_id = ?", testID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *testRepo) WritingTasks(ctx context.Context, tx *gorm.DB, testID uuid.UUID) ([]*types.IeltsWritingTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.IeltsWritingTask
	if err := transaction.WithContext(ctx).
		Joins("JOIN t_ielts_writing_test wt ON wt.id = t_ielts_writing_task.writing_test_id").
		Where("wt.ielts_test_id = ?", testID).
		Order("task_number").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
