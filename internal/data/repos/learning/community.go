package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// CommunityRepo serves the read side of a course's announcements,
// forums and assignments.
type CommunityRepo interface {
	Announcements(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Announcement, error)
	Forums(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Forum, error)
	Assignments(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Assignment, error)
}

type communityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunityRepo(db *gorm.DB, baseLog *logger.Logger) CommunityRepo {
	repoLog := baseLog.With("repo", "CommunityRepo")
	return &communityRepo{db: db, log: repoLog}
}

func (r *communityRepo) Announcements(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Announcement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Announcement
	if err := transaction.WithContext(ctx).
		Preload("Author").
		Where("course_id = ?", courseID).
		Order("is_pinned DESC, created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *communityRepo) Forums(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Forum, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Forum
	if err := transaction.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_post_id IS NULL").Order("created_at DESC")
		}).
		Preload("Posts.Author").
		Preload("Posts.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("course_id = ?", courseID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *communityRepo) Assignments(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Assignment
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date ASC NULLS LAST, created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
