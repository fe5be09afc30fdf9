package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/envutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

const (
	employeeDomainEnv    = "EMPLOYEE_EMAIL_DOMAIN"
	employeeAllowlistEnv = "EMPLOYEE_ALLOWED_EMAILS"
)

// LoginHookInput mirrors the identity-provider webhook payload.
type LoginHookInput struct {
	UserID    string  `json:"user_id"`
	Email     *string `json:"email"`
	GivenName string  `json:"given_name"`
	LastName  string  `json:"last_name"`
	Picture   string  `json:"picture"`
}

// LoginHookService provisions platform users on first login and keeps
// login counters fresh afterwards. Employee rows are auto-provisioned
// for allowlisted company emails so attendance works without an admin
// touching every hire.
type LoginHookService interface {
	ProcessLogin(ctx context.Context, input LoginHookInput) (*types.User, error)
}

type loginHookService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	employeeRepo repos.EmployeeRepo
}

func NewLoginHookService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, employeeRepo repos.EmployeeRepo) LoginHookService {
	return &loginHookService{
		db:           db,
		log:          baseLog.With("service", "LoginHookService"),
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
	}
}

func (ls *loginHookService) ProcessLogin(ctx context.Context, input LoginHookInput) (*types.User, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apierr.BadRequest("NO_USER_ID", fmt.Errorf("user_id required"))
	}

	fullName := strings.TrimSpace(strings.TrimSpace(input.GivenName) + " " + strings.TrimSpace(input.LastName))

	var out *types.User
	if err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ls.userRepo.GetByAuth0ID(ctx, tx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup user: %w", err)
		}

		if existing == nil {
			created, err := ls.userRepo.Create(ctx, tx, &types.User{
				Auth0ID:  userID,
				Email:    input.Email,
				FullName: fullName,
				Picture:  input.Picture,
			})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			out = created
			return nil
		}

		if existing.IsDeleted {
			return apierr.Forbidden("INVALID_USER")
		}
		if err := ls.userRepo.IncrementLoginCount(ctx, tx, userID); err != nil {
			return fmt.Errorf("increment login count: %w", err)
		}
		existing.LoginCount++
		out = existing
		return nil
	}); err != nil {
		ls.log.Warn("ProcessLogin: transaction failed", "user_id", userID, "error", err)
		return nil, err
	}

	// Employee provisioning must never fail the login itself.
	if err := ls.provisionEmployee(ctx, userID, input.Email, fullName); err != nil {
		ls.log.Warn("ProcessLogin: employee provisioning failed", "user_id", userID, "error", err)
	}

	return out, nil
}

func (ls *loginHookService) provisionEmployee(ctx context.Context, userID string, email *string, fullName string) error {
	if email == nil {
		return nil
	}
	addr := strings.ToLower(strings.TrimSpace(*email))
	if addr == "" || !employeeEmailAllowed(addr) {
		return nil
	}

	return ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ls.employeeRepo.GetByAuth0IDOrEmail(ctx, tx, userID, addr)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup employee: %w", err)
		}

		if existing != nil {
			if existing.IsDeleted {
				return fmt.Errorf("employee record for %s is disabled", addr)
			}
			if existing.Auth0ID != userID {
				return ls.employeeRepo.Relink(ctx, tx, existing.ID, userID)
			}
			return nil
		}

		name := fullName
		if name == "" {
			name = addr
		}
		_, err = ls.employeeRepo.Create(ctx, tx, &types.Employee{
			Auth0ID:  userID,
			Email:    addr,
			FullName: name,
		})
		return err
	})
}

func employeeEmailAllowed(addr string) bool {
	if domain := strings.ToLower(envutil.String(employeeDomainEnv, "")); domain != "" {
		if strings.HasSuffix(addr, "@"+domain) {
			return true
		}
	}
	for _, raw := range strings.Split(envutil.String(employeeAllowlistEnv, ""), ",") {
		if allowed := strings.ToLower(strings.TrimSpace(raw)); allowed != "" && allowed == addr {
			return true
		}
	}
	return false
}
