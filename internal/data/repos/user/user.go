package user

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// ListFilter narrows the admin user listing. Search matches name and
// email, Types filters on role, and deleted accounts are always
// excluded.
type ListFilter struct {
	Search   string
	Types    []types.UserType
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
}

type RoleStats struct {
	Type  types.UserType `json:"type"`
	Count int64          `json:"count"`
}

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
	GetByAuth0ID(ctx context.Context, tx *gorm.DB, auth0ID string) (*types.User, error)
	GetByAuth0IDs(ctx context.Context, tx *gorm.DB, auth0IDs []string) ([]*types.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *types.User) error
	UpdateProfile(ctx context.Context, tx *gorm.DB, auth0ID string, fields map[string]interface{}) error
	IncrementLoginCount(ctx context.Context, tx *gorm.DB, auth0ID string) error
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.User, int64, error)
	SetType(ctx context.Context, tx *gorm.DB, auth0ID string, userType types.UserType) error
	SetTypeBulk(ctx context.Context, tx *gorm.DB, auth0IDs []string, userType types.UserType) (int64, error)
	CountByType(ctx context.Context, tx *gorm.DB) ([]RoleStats, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if err := transaction.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ur *userRepo) GetByAuth0ID(ctx context.Context, tx *gorm.DB, auth0ID string) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var result types.User
	if err := transaction.WithContext(ctx).
		Preload("SchoolClass").
		Preload("SchoolClass.School").
		Where("auth0_id = ?", auth0ID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ur *userRepo) GetByAuth0IDs(ctx context.Context, tx *gorm.DB, auth0IDs []string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User
	if len(auth0IDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("auth0_id IN ?", auth0IDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) Update(ctx context.Context, tx *gorm.DB, user *types.User) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	return transaction.WithContext(ctx).Save(user).Error
}

func (ur *userRepo) UpdateProfile(ctx context.Context, tx *gorm.DB, auth0ID string, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("auth0_id = ?", auth0ID).
		Updates(fields).Error
}

func (ur *userRepo) IncrementLoginCount(ctx context.Context, tx *gorm.DB, auth0ID string) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	return transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("auth0_id = ?", auth0ID).
		UpdateColumn("login_count", gorm.Expr("login_count + 1")).Error
}

func (ur *userRepo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.User, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.User{}).
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
	case "login_count":
		sortColumn = "login_count"
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

	var results []*types.User
	if err := query.
		Preload("SchoolClass").
		Preload("SchoolClass.School").
		Order(sortColumn + " " + direction).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (ur *userRepo) SetType(ctx context.Context, tx *gorm.DB, auth0ID string, userType types.UserType) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	return transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("auth0_id = ?", auth0ID).
		Update("type", userType).Error
}

func (ur *userRepo) SetTypeBulk(ctx context.Context, tx *gorm.DB, auth0IDs []string, userType types.UserType) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(auth0IDs) == 0 {
		return 0, nil
	}

	result := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("auth0_id IN ?", auth0IDs).
		Update("type", userType)
	return result.RowsAffected, result.Error
}

func (ur *userRepo) CountByType(ctx context.Context, tx *gorm.DB) ([]RoleStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var stats []RoleStats
	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Select("type, COUNT(*) AS count").
		Where("is_deleted = ?", false).
		Group("type").
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
