package hr

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type AttendanceFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type AttendanceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *types.AttendanceEvent) (*types.AttendanceEvent, error)
	LastByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*types.AttendanceEvent, error)
	ListByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, filter AttendanceFilter) ([]*types.AttendanceEvent, int64, error)
}

type attendanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttendanceRepo(db *gorm.DB, baseLog *logger.Logger) AttendanceRepo {
	repoLog := baseLog.With("repo", "AttendanceRepo")
	return &attendanceRepo{db: db, log: repoLog}
}

func (r *attendanceRepo) Create(ctx context.Context, tx *gorm.DB, event *types.AttendanceEvent) (*types.AttendanceEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// LastByEmployee returns the employee's most recent event, which
// decides whether the next one must be a CHECK_IN or a CHECK_OUT.
func (r *attendanceRepo) LastByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*types.AttendanceEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AttendanceEvent
	if err := transaction.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("event_time DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *attendanceRepo) ListByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, filter AttendanceFilter) ([]*types.AttendanceEvent, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.AttendanceEvent{}).
		Where("employee_id = ?", employeeID)
	if filter.From != nil {
		query = query.Where("event_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("event_time < ?", *filter.To)
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
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var results []*types.AttendanceEvent
	if err := query.
		Order("event_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}
