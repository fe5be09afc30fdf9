package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// UpdateProfileInput carries the self-service profile fields. Nil
// pointers leave the stored value untouched.
type UpdateProfileInput struct {
	FullName      *string    `json:"full_name"`
	Picture       *string    `json:"picture"`
	SchoolClassID *uuid.UUID `json:"school_class_id"`
}

type UserService interface {
	Me(ctx context.Context) (*types.User, error)
	UpdateMe(ctx context.Context, input UpdateProfileInput) (*types.User, error)
	SchoolOptions(ctx context.Context) ([]*types.School, error)
}

type userService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	schoolRepo repos.SchoolRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, schoolRepo repos.SchoolRepo) UserService {
	return &userService{
		db:         db,
		log:        baseLog.With("service", "UserService"),
		userRepo:   userRepo,
		schoolRepo: schoolRepo,
	}
}

func (us *userService) Me(ctx context.Context) (*types.User, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	user, err := us.userRepo.GetByAuth0ID(ctx, nil, identity.Auth0ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("USER_NOT_FOUND")
		}
		us.log.Warn("Me: user fetch failed", "error", err)
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if user.IsDeleted {
		return nil, apierr.Forbidden("INVALID_USER")
	}
	return user, nil
}

func (us *userService) UpdateMe(ctx context.Context, input UpdateProfileInput) (*types.User, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	fields := map[string]interface{}{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, apierr.BadRequest("INVALID_FULL_NAME", fmt.Errorf("full_name must not be empty"))
		}
		fields["full_name"] = name
	}
	if input.Picture != nil {
		fields["picture"] = strings.TrimSpace(*input.Picture)
	}
	if len(fields) == 0 && input.SchoolClassID == nil {
		return nil, apierr.BadRequest("NO_PROFILE_UPDATES", fmt.Errorf("no profile updates provided"))
	}

	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := us.userRepo.GetByAuth0ID(ctx, tx, identity.Auth0ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("USER_NOT_FOUND")
			}
			return err
		}
		if current.IsDeleted {
			return apierr.Forbidden("INVALID_USER")
		}

		if input.SchoolClassID != nil {
			if _, err := us.schoolRepo.GetClassByID(ctx, tx, *input.SchoolClassID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierr.BadRequest("INVALID_SCHOOL_CLASS", fmt.Errorf("school class %s does not exist", input.SchoolClassID))
				}
				return err
			}
			fields["school_class_id"] = *input.SchoolClassID
		}

		if err := us.userRepo.UpdateProfile(ctx, tx, identity.Auth0ID, fields); err != nil {
			return err
		}

		updated, err := us.userRepo.GetByAuth0ID(ctx, tx, identity.Auth0ID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		out = updated
		return nil
	}); err != nil {
		us.log.Warn("UpdateMe: transaction failed", "error", err)
		return nil, err
	}
	return out, nil
}

func (us *userService) SchoolOptions(ctx context.Context) ([]*types.School, error) {
	schools, err := us.schoolRepo.List(ctx, nil)
	if err != nil {
		us.log.Warn("SchoolOptions: fetch failed", "error", err)
		return nil, fmt.Errorf("fetch schools: %w", err)
	}
	return schools, nil
}
