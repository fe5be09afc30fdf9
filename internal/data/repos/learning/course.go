package learning

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// CatalogFilter narrows the public catalog. Only published courses are
// ever returned; Sort accepts newest, popular, rating, price_low,
// price_high and title.
type CatalogFilter struct {
	Category        string
	Subcategory     string
	DifficultyLevel string
	IsFree          *bool
	Search          string
	Sort            string
	Page            int
	PageSize        int
}

type CategoryCount struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Count       int64  `json:"count"`
}

type CatalogStats struct {
	TotalCourses     int64   `json:"total_courses"`
	TotalEnrollments int64   `json:"total_enrollments"`
	AverageRating    float64 `json:"average_rating"`
}

// AdminCourseFilter lists courses for management screens. Unlike the
// catalog it can see unpublished rows.
type AdminCourseFilter struct {
	Category    string
	Subcategory string
	IsPublished *bool
	Page        int
	PageSize    int
}

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.Course, error)
	GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	GetWithContent(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	GetFull(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	Catalog(ctx context.Context, tx *gorm.DB, filter CatalogFilter) ([]*types.Course, int64, error)
	AdminList(ctx context.Context, tx *gorm.DB, filter AdminCourseFilter) ([]*types.Course, int64, error)
	Categories(ctx context.Context, tx *gorm.DB) ([]CategoryCount, error)
	Featured(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Course, error)
	Trending(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Course, error)
	TopRated(ctx context.Context, tx *gorm.DB, category string, minReviews, limit int) ([]*types.Course, error)
	Similar(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, limit int) ([]*types.Course, error)
	Stats(ctx context.Context, tx *gorm.DB) (*CatalogStats, error)
	ListByInstructor(ctx context.Context, tx *gorm.DB, auth0ID string) ([]*types.Course, error)
	ListByCreator(ctx context.Context, tx *gorm.DB, auth0ID string) ([]*types.Course, error)
	CountByInstructors(ctx context.Context, tx *gorm.DB, auth0IDs []string) (map[string]int64, error)
	Update(ctx context.Context, tx *gorm.DB, course *types.Course) error
	SetPublished(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, published bool) error
	Delete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	IncrementEnrollmentCount(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, delta int) error
	SetRating(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, rating float64, ratingCount int) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Course
	if err := transaction.WithContext(ctx).
		Where("id = ?", courseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *courseRepo) GetWithContent(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Course
	if err := transaction.WithContext(ctx).
		Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Preload("Modules.Lessons.Resources").
		Where("id = ?", courseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFull loads the whole content tree plus both owner accounts, the
// shape the management screens edit.
func (r *courseRepo) GetFull(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Course
	if err := transaction.WithContext(ctx).
		Preload("Creator").
		Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`)
		}).
		Preload("Modules.Lessons.Resources").
		Where("id = ?", courseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *courseRepo) AdminList(ctx context.Context, tx *gorm.DB, filter AdminCourseFilter) ([]*types.Course, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.Course{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Subcategory != "" {
		query = query.Where("subcategory = ?", filter.Subcategory)
	}
	if filter.IsPublished != nil {
		query = query.Where("is_published = ?", *filter.IsPublished)
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
		pageSize = 10
	}

	var results []*types.Course
	if err := query.
		Preload("Instructor").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *courseRepo) Catalog(ctx context.Context, tx *gorm.DB, filter CatalogFilter) ([]*types.Course, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("is_published = ?", true)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Subcategory != "" {
		query = query.Where("subcategory = ?", filter.Subcategory)
	}
	if filter.DifficultyLevel != "" {
		query = query.Where("difficulty_level = ?", filter.DifficultyLevel)
	}
	if filter.IsFree != nil {
		query = query.Where("is_free = ?", *filter.IsFree)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "popular":
		query = query.Order("enrollment_count DESC")
	case "rating":
		query = query.Order("rating DESC, rating_count DESC")
	case "price_low":
		query = query.Order("is_free DESC, price ASC NULLS FIRST")
	case "price_high":
		query = query.Order("price DESC NULLS LAST")
	case "title":
		query = query.Order("title ASC")
	default:
		query = query.Order("created_at DESC")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var results []*types.Course
	if err := query.
		Preload("Instructor").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *courseRepo) Categories(ctx context.Context, tx *gorm.DB) ([]CategoryCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []CategoryCount
	if err := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Select("category, subcategory, COUNT(*) AS count").
		Where("is_published = ? AND category <> ''", true).
		Group("category, subcategory").
		Order("category, subcategory").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) Featured(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit < 1 {
		limit = 10
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Preload("Instructor").
		Where("is_published = ? AND is_featured = ?", true, true).
		Order("rating DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// TopRated keeps a minimum review threshold so one five-star review
// cannot outrank an established course.
func (r *courseRepo) TopRated(ctx context.Context, tx *gorm.DB, category string, minReviews, limit int) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if minReviews < 1 {
		minReviews = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := transaction.WithContext(ctx).
		Preload("Instructor").
		Where("is_published = ? AND rating_count >= ?", true, minReviews)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var results []*types.Course
	if err := query.
		Order("rating DESC, rating_count DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) Trending(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit < 1 {
		limit = 10
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Preload("Instructor").
		Where("is_published = ?", true).
		Order("enrollment_count DESC, rating DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) Similar(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, limit int) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	course, err := r.GetByID(ctx, transaction, courseID)
	if err != nil {
		return nil, err
	}

	if limit < 1 {
		limit = 6
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Preload("Instructor").
		Where("is_published = ? AND id <> ?", true, courseID).
		Where("category = ? OR difficulty_level = ?", course.Category, course.DifficultyLevel).
		Order("enrollment_count DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) Stats(ctx context.Context, tx *gorm.DB) (*CatalogStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var stats CatalogStats
	if err := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Select("COUNT(*) AS total_courses, COALESCE(SUM(enrollment_count), 0) AS total_enrollments, COALESCE(AVG(NULLIF(rating, 0)), 0) AS average_rating").
		Where("is_published = ?", true).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *courseRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, auth0ID string) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Where("instructor_id = ?", auth0ID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) ListByCreator(ctx context.Context, tx *gorm.DB, auth0ID string) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Where("creator_id = ?", auth0ID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) CountByInstructors(ctx context.Context, tx *gorm.DB, auth0IDs []string) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	counts := make(map[string]int64, len(auth0IDs))
	if len(auth0IDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		InstructorID string `gorm:"column:instructor_id"`
		Count        int64  `gorm:"column:count"`
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Select("instructor_id, COUNT(*) AS count").
		Where("instructor_id IN ?", auth0IDs).
		Group("instructor_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.InstructorID] = row.Count
	}
	return counts, nil
}

func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(course).Error
}

func (r *courseRepo) SetPublished(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, published bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Update("is_published", published).Error
}

func (r *courseRepo) Delete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", courseID).
		Delete(&types.Course{}).Error
}

func (r *courseRepo) IncrementEnrollmentCount(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, delta int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + ?", delta)).Error
}

func (r *courseRepo) SetRating(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, rating float64, ratingCount int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{"rating": rating, "rating_count": ratingCount}).Error
}
