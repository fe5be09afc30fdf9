package learning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// RatingSummary aggregates a course's reviews: the average plus a
// per-star histogram.
type RatingSummary struct {
	Average      float64       `json:"average"`
	Count        int64         `json:"count"`
	Distribution map[int]int64 `json:"distribution"`
}

// ReviewFilter narrows and orders a course's review listing. Rating 0
// means no star filter; SortBy accepts created_at or rating.
type ReviewFilter struct {
	Page      int
	PageSize  int
	Rating    int
	SortBy    string
	SortOrder string
}

type ReviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, review *types.CourseReview) (*types.CourseReview, error)
	GetByID(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) (*types.CourseReview, error)
	GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, userID string) (*types.CourseReview, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, filter ReviewFilter) ([]*types.CourseReview, int64, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, page, pageSize int) ([]*types.CourseReview, int64, error)
	UserRatingSummary(ctx context.Context, tx *gorm.DB, userID string) (int64, float64, error)
	RecentAcrossCourses(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.CourseReview, error)
	Update(ctx context.Context, tx *gorm.DB, review *types.CourseReview) error
	Delete(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) error
	Summary(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*RatingSummary, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	repoLog := baseLog.With("repo", "ReviewRepo")
	return &reviewRepo{db: db, log: repoLog}
}

func (r *reviewRepo) Create(ctx context.Context, tx *gorm.DB, review *types.CourseReview) (*types.CourseReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *reviewRepo) GetByID(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) (*types.CourseReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CourseReview
	if err := transaction.WithContext(ctx).
		Preload("Course").
		Where("id = ?", reviewID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reviewRepo) GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, userID string) (*types.CourseReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CourseReview
	if err := transaction.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reviewRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, filter ReviewFilter) ([]*types.CourseReview, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.CourseReview{}).
		Where("course_id = ?", courseID)
	if filter.Rating >= 1 && filter.Rating <= 5 {
		query = query.Where("rating = ?", filter.Rating)
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
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	sortBy := filter.SortBy
	if sortBy != "created_at" && sortBy != "rating" {
		sortBy = "created_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	var results []*types.CourseReview
	if err := query.
		Preload("User").
		Order(sortBy + " " + direction).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *reviewRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string, page, pageSize int) ([]*types.CourseReview, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.CourseReview{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	var results []*types.CourseReview
	if err := query.
		Preload("Course").
		Preload("Course.Instructor").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// UserRatingSummary returns how many reviews a user has written and the
// average rating they hand out. Average is 0 when they have none.
func (r *reviewRepo) UserRatingSummary(ctx context.Context, tx *gorm.DB, userID string) (int64, float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row struct {
		Count   int64   `gorm:"column:count"`
		Average float64 `gorm:"column:average"`
	}
	if err := transaction.WithContext(ctx).
		Model(&types.CourseReview{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("user_id = ?", userID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Count, row.Average, nil
}

// RecentAcrossCourses feeds the public recent-reviews feed; rows from
// unpublished courses are excluded.
func (r *reviewRepo) RecentAcrossCourses(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.CourseReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseReview
	if err := transaction.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Joins("JOIN t_course ON t_course.id = t_course_review.course_id").
		Where("t_course.is_published = ?", true).
		Where("t_course_review.created_at >= ?", since).
		Order("t_course_review.created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewRepo) Update(ctx context.Context, tx *gorm.DB, review *types.CourseReview) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(review).Error
}

func (r *reviewRepo) Delete(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Where("id = ?", reviewID).
		Delete(&types.CourseReview{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepo) Summary(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*RatingSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []struct {
		Rating int
		Count  int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.CourseReview{}).
		Select("rating, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &RatingSummary{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var weighted int64
	for _, row := range rows {
		summary.Distribution[row.Rating] = row.Count
		summary.Count += row.Count
		weighted += int64(row.Rating) * row.Count
	}
	if summary.Count > 0 {
		summary.Average = float64(weighted) / float64(summary.Count)
	}
	return summary, nil
}
