package learning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) (*types.Enrollment, error)
	GetByID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) (*types.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.Enrollment, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Enrollment, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, status *types.EnrollmentStatus, page, pageSize int) ([]*types.Enrollment, int64, error)
	CountByUsers(ctx context.Context, tx *gorm.DB, userIDs []string) (map[string]int64, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, status *types.EnrollmentStatus) (int64, error)
	CountRecentByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, since time.Time) (int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, status types.EnrollmentStatus) error
	SyncProgress(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID, percentage float64) error
	TouchLastAccessed(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) (*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(enrollment).Error; err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (r *enrollmentRepo) GetByID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) (*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Enrollment
	if err := transaction.WithContext(ctx).
		Where("id = ?", enrollmentID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) (*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Enrollment
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Enrollment
	if err := transaction.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListByCourse pages through a course's roster newest first, with the
// student account attached.
func (r *enrollmentRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, status *types.EnrollmentStatus, page, pageSize int) ([]*types.Enrollment, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("course_id = ?", courseID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var results []*types.Enrollment
	if err := query.
		Preload("User").
		Order("enrolled_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// CountByUsers returns enrollment totals keyed by user id for the
// given users. Users without enrollments are simply absent from the map.
func (r *enrollmentRepo) CountByUsers(ctx context.Context, tx *gorm.DB, userIDs []string) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	counts := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		UserID string `gorm:"column:user_id"`
		Count  int64  `gorm:"column:count"`
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Select("user_id, COUNT(*) AS count").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}

func (r *enrollmentRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, status *types.EnrollmentStatus) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("course_id = ?", courseID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *enrollmentRepo) CountRecentByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("course_id = ? AND enrolled_at >= ?", courseID, since).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *enrollmentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, status types.EnrollmentStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updates := map[string]interface{}{"status": status}
	if status == types.EnrollmentCompleted {
		updates["completed_at"] = gorm.Expr("CURRENT_TIMESTAMP")
		updates["progress_percentage"] = 100.0
	}

	return transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("id = ?", enrollmentID).
		Updates(updates).Error
}

// SyncProgress mirrors the course progress rollup onto the enrollment
// row and flips it to COMPLETED at 100 percent.
func (r *enrollmentRepo) SyncProgress(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID, percentage float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updates := map[string]interface{}{"progress_percentage": percentage}
	if percentage >= 100 {
		updates["status"] = types.EnrollmentCompleted
		updates["completed_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}

	return transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(updates).Error
}

func (r *enrollmentRepo) TouchLastAccessed(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("last_accessed_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
