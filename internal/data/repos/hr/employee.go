package hr

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// EmployeeFilter narrows the admin employee listing. Deleted rows are
// always excluded.
type EmployeeFilter struct {
	Search   string
	Types    []types.UserType
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
}

type EmployeeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, employee *types.Employee) (*types.Employee, error)
	GetByID(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*types.Employee, error)
	GetByAuth0ID(ctx context.Context, tx *gorm.DB, auth0ID string) (*types.Employee, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Employee, error)
	GetByAuth0IDOrEmail(ctx context.Context, tx *gorm.DB, auth0ID, email string) (*types.Employee, error)
	List(ctx context.Context, tx *gorm.DB, filter EmployeeFilter) ([]*types.Employee, int64, error)
	Update(ctx context.Context, tx *gorm.DB, employee *types.Employee) error
	Relink(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, auth0ID string) error
	SoftDelete(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) error
}

type employeeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmployeeRepo(db *gorm.DB, baseLog *logger.Logger) EmployeeRepo {
	repoLog := baseLog.With("repo", "EmployeeRepo")
	return &employeeRepo{db: db, log: repoLog}
}

func (r *employeeRepo) Create(ctx context.Context, tx *gorm.DB, employee *types.Employee) (*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *employeeRepo) GetByID(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Employee
	if err := transaction.WithContext(ctx).
		Where("id = ?", employeeID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *employeeRepo) GetByAuth0ID(ctx context.Context, tx *gorm.DB, auth0ID string) (*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Employee
	if err := transaction.WithContext(ctx).
		Where("auth0_id = ? AND is_deleted = false", auth0ID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *employeeRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Employee
	if err := transaction.WithContext(ctx).
		Where("email = ? AND is_deleted = false", email).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByAuth0IDOrEmail does not filter on is_deleted. The login hook
// needs to see disabled rows so it can refuse them instead of creating
// a duplicate.
func (r *employeeRepo) GetByAuth0IDOrEmail(ctx context.Context, tx *gorm.DB, auth0ID, email string) (*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Employee
	if err := transaction.WithContext(ctx).
		Where("auth0_id = ? OR email = ?", auth0ID, email).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *employeeRepo) List(ctx context.Context, tx *gorm.DB, filter EmployeeFilter) ([]*types.Employee, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.Employee{}).
		Where("is_deleted = ?", false)

	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortColumn := "created_at"
	switch filter.SortBy {
	case "name":
		sortColumn = "full_name"
	case "email":
		sortColumn = "email"
	case "", "created_at":
	default:
		sortColumn = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var results []*types.Employee
	if err := query.
		Order(sortColumn + " " + direction).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *employeeRepo) Update(ctx context.Context, tx *gorm.DB, employee *types.Employee) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(employee).Error
}

// Relink points an existing employee row at a new external identity.
func (r *employeeRepo) Relink(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, auth0ID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Employee{}).
		Where("id = ?", employeeID).
		Update("auth0_id", auth0ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete flags the row instead of removing it so attendance history
// keeps its foreign key.
func (r *employeeRepo) SoftDelete(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Employee{}).
		Where("id = ? AND is_deleted = false", employeeID).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
