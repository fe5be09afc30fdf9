package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/data/repos/hr"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type AdminEmployeeQuery struct {
	Search    string
	Type      string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

type AdminEmployeePage struct {
	Employees   []*types.Employee `json:"employees"`
	Page        int               `json:"page"`
	PageSize    int               `json:"per_page"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"total_pages"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
}

// CreateEmployeeInput registers a staff member ahead of their first
// login. Auth0ID may be empty; the login hook relinks the row by email
// once the person signs in.
type CreateEmployeeInput struct {
	FullName   string          `json:"full_name"`
	Email      string          `json:"email"`
	Auth0ID    string          `json:"auth0_id"`
	Type       *types.UserType `json:"type"`
	Position   string          `json:"position"`
	Department string          `json:"department"`
}

type UpdateEmployeeInput struct {
	FullName   *string         `json:"full_name"`
	Email      *string         `json:"email"`
	Type       *types.UserType `json:"type"`
	Position   *string         `json:"position"`
	Department *string         `json:"department"`
}

type AdminEmployeeService interface {
	ListEmployees(ctx context.Context, query AdminEmployeeQuery) (*AdminEmployeePage, error)
	GetEmployee(ctx context.Context, employeeID uuid.UUID) (*types.Employee, error)
	CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*types.Employee, error)
	UpdateEmployee(ctx context.Context, employeeID uuid.UUID, input UpdateEmployeeInput) (*types.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID uuid.UUID) error
}

type adminEmployeeService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	employeeRepo repos.EmployeeRepo
}

func NewAdminEmployeeService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, employeeRepo repos.EmployeeRepo) AdminEmployeeService {
	return &adminEmployeeService{
		db:           db,
		log:          baseLog.With("service", "AdminEmployeeService"),
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
	}
}

func (s *adminEmployeeService) ListEmployees(ctx context.Context, query AdminEmployeeQuery) (*AdminEmployeePage, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}

	filter := hr.EmployeeFilter{
		Search:   strings.TrimSpace(query.Search),
		SortBy:   query.SortBy,
		SortDesc: true,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	switch strings.ToLower(query.SortOrder) {
	case "asc":
		filter.SortDesc = false
	case "", "desc":
	default:
		return nil, apierr.BadRequest("INVALID_SORT_ORDER", fmt.Errorf("sort_order must be asc or desc"))
	}
	if query.Type != "" {
		employeeType := types.UserType(strings.ToUpper(query.Type))
		if !employeeType.Valid() {
			return nil, apierr.BadRequest("INVALID_USER_TYPE", fmt.Errorf("unknown employee type %q", query.Type))
		}
		filter.Types = []types.UserType{employeeType}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	employees, total, err := s.employeeRepo.List(ctx, nil, filter)
	if err != nil {
		s.log.Warn("ListEmployees: fetch failed", "error", err)
		return nil, fmt.Errorf("list employees: %w", err)
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return &AdminEmployeePage{
		Employees:   employees,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     int64(filter.Page)*int64(filter.PageSize) < total,
		HasPrevious: filter.Page > 1,
	}, nil
}

func (s *adminEmployeeService) GetEmployee(ctx context.Context, employeeID uuid.UUID) (*types.Employee, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}

	employee, err := s.employeeRepo.GetByID(ctx, nil, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("EMPLOYEE_NOT_FOUND")
		}
		s.log.Warn("GetEmployee: fetch failed", "employee_id", employeeID, "error", err)
		return nil, fmt.Errorf("fetch employee: %w", err)
	}
	if employee.IsDeleted {
		return nil, apierr.NotFound("EMPLOYEE_NOT_FOUND")
	}
	return employee, nil
}

func (s *adminEmployeeService) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*types.Employee, error) {
	fullName := strings.TrimSpace(input.FullName)
	if len(fullName) < 2 {
		return nil, apierr.BadRequest("INVALID_FULL_NAME", fmt.Errorf("full_name must be at least 2 characters"))
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.BadRequest("INVALID_EMAIL", fmt.Errorf("a valid email is required"))
	}

	employeeType := types.UserTypeAdmin
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, apierr.BadRequest("INVALID_USER_TYPE", fmt.Errorf("unknown employee type %q", *input.Type))
		}
		employeeType = *input.Type
	}

	var out *types.Employee
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		existing, err := s.employeeRepo.GetByAuth0IDOrEmail(ctx, tx, input.Auth0ID, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup employee: %w", err)
		}

		if existing != nil {
			if !existing.IsDeleted {
				return apierr.Conflict("EMPLOYEE_ALREADY_EXISTS")
			}
			// A disabled row with the same email or identity is revived
			// in place so the unique indexes stay satisfied.
			existing.FullName = fullName
			existing.Email = email
			existing.Type = employeeType
			existing.Position = input.Position
			existing.Department = input.Department
			existing.IsDeleted = false
			if input.Auth0ID != "" {
				existing.Auth0ID = input.Auth0ID
			}
			if err := s.employeeRepo.Update(ctx, tx, existing); err != nil {
				return fmt.Errorf("revive employee: %w", err)
			}
			out = existing
			s.log.Info("CreateEmployee: revived employee", "admin", admin.Auth0ID, "employee_id", existing.ID)
			return nil
		}

		auth0ID := strings.TrimSpace(input.Auth0ID)
		if auth0ID == "" {
			// Placeholder until the first login relinks the row to the
			// real identity.
			auth0ID = "pending:" + uuid.NewString()
		}

		created, err := s.employeeRepo.Create(ctx, tx, &types.Employee{
			Auth0ID:    auth0ID,
			Email:      email,
			FullName:   fullName,
			Position:   input.Position,
			Department: input.Department,
			Type:       employeeType,
		})
		if err != nil {
			return fmt.Errorf("create employee: %w", err)
		}
		out = created
		s.log.Info("CreateEmployee: employee created", "admin", admin.Auth0ID, "employee_id", created.ID)
		return nil
	}); err != nil {
		s.log.Warn("CreateEmployee: transaction failed", "email", email, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *adminEmployeeService) UpdateEmployee(ctx context.Context, employeeID uuid.UUID, input UpdateEmployeeInput) (*types.Employee, error) {
	if input.Type != nil && !input.Type.Valid() {
		return nil, apierr.BadRequest("INVALID_USER_TYPE", fmt.Errorf("unknown employee type %q", *input.Type))
	}

	var out *types.Employee
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		employee, err := s.employeeRepo.GetByID(ctx, tx, employeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("EMPLOYEE_NOT_FOUND")
			}
			return fmt.Errorf("fetch employee: %w", err)
		}
		if employee.IsDeleted {
			return apierr.NotFound("EMPLOYEE_NOT_FOUND")
		}

		if input.FullName != nil {
			name := strings.TrimSpace(*input.FullName)
			if len(name) < 2 {
				return apierr.BadRequest("INVALID_FULL_NAME", fmt.Errorf("full_name must be at least 2 characters"))
			}
			employee.FullName = name
		}
		if input.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*input.Email))
			if email == "" || !strings.Contains(email, "@") {
				return apierr.BadRequest("INVALID_EMAIL", fmt.Errorf("a valid email is required"))
			}
			if email != employee.Email {
				other, err := s.employeeRepo.GetByEmail(ctx, tx, email)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("lookup email: %w", err)
				}
				if other != nil && other.ID != employee.ID {
					return apierr.Conflict("EMPLOYEE_ALREADY_EXISTS")
				}
				employee.Email = email
			}
		}
		if input.Type != nil {
			employee.Type = *input.Type
		}
		if input.Position != nil {
			employee.Position = strings.TrimSpace(*input.Position)
		}
		if input.Department != nil {
			employee.Department = strings.TrimSpace(*input.Department)
		}

		if err := s.employeeRepo.Update(ctx, tx, employee); err != nil {
			return fmt.Errorf("update employee: %w", err)
		}
		out = employee
		s.log.Info("UpdateEmployee: employee updated", "admin", admin.Auth0ID, "employee_id", employeeID)
		return nil
	}); err != nil {
		s.log.Warn("UpdateEmployee: transaction failed", "employee_id", employeeID, "error", err)
		return nil, err
	}
	return out, nil
}

// DeleteEmployee soft-deletes so attendance history keeps its employee
// reference. Deleting an already-deleted or unknown id succeeds.
func (s *adminEmployeeService) DeleteEmployee(ctx context.Context, employeeID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		if err := s.employeeRepo.SoftDelete(ctx, tx, employeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.log.Info("DeleteEmployee: already deleted", "admin", admin.Auth0ID, "employee_id", employeeID)
				return nil
			}
			return fmt.Errorf("delete employee: %w", err)
		}
		s.log.Info("DeleteEmployee: employee deleted", "admin", admin.Auth0ID, "employee_id", employeeID)
		return nil
	}); err != nil {
		s.log.Warn("DeleteEmployee: transaction failed", "employee_id", employeeID, "error", err)
		return err
	}
	return nil
}
