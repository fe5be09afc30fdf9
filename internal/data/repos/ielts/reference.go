package ielts

import (
	"context"

	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// ReferenceRepo serves the static study content: band conversion rows,
// vocabulary lists, grammar points and study materials.
type ReferenceRepo interface {
	BandScores(ctx context.Context, tx *gorm.DB, module types.IeltsModule) ([]*types.IeltsBandScore, error)
	Vocabulary(ctx context.Context, tx *gorm.DB, topic, level string) ([]*types.IeltsVocabulary, error)
	GrammarPoints(ctx context.Context, tx *gorm.DB, level string) ([]*types.IeltsGrammarPoint, error)
	StudyMaterials(ctx context.Context, tx *gorm.DB, module types.IeltsModule) ([]*types.IeltsStudyMaterial, error)
}

type referenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	repoLog := baseLog.With("repo", "IeltsReferenceRepo")
	return &referenceRepo{db: db, log: repoLog}
}

func (r *referenceRepo) BandScores(ctx context.Context, tx *gorm.DB, module types.IeltsModule) ([]*types.IeltsBandScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.IeltsBandScore{})
	if module != "" {
		query = query.Where("module = ?", module)
	}

	var results []*types.IeltsBandScore
	if err := query.
		Order("module, min_raw_score DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *referenceRepo) Vocabulary(ctx context.Context, tx *gorm.DB, topic, level string) ([]*types.IeltsVocabulary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.IeltsVocabulary{})
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	if level != "" {
		query = query.Where("level = ?", level)
	}

	var results []*types.IeltsVocabulary
	if err := query.
		Order("word").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *referenceRepo) GrammarPoints(ctx context.Context, tx *gorm.DB, level string) ([]*types.IeltsGrammarPoint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.IeltsGrammarPoint{})
	if level != "" {
		query = query.Where("level = ?", level)
	}

	var results []*types.IeltsGrammarPoint
	if err := query.
		Order("title").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *referenceRepo) StudyMaterials(ctx context.Context, tx *gorm.DB, module types.IeltsModule) ([]*types.IeltsStudyMaterial, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.IeltsStudyMaterial{})
	if module != "" {
		query = query.Where("module = ?", module)
	}

	var results []*types.IeltsStudyMaterial
	if err := query.
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
