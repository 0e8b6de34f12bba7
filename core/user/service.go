package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Provision returns the user owning email, creating an active STUDENT on first sight.
func (svc *Service) Provision(ctx context.Context, email, name string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "email", Error: "this field is required"})
	}

	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: email})
	if err == nil {
		return usr, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "getting user by email")
	}

	now := NowFunc().UTC()
	usr, err = svc.repo.CreateUser(ctx, User{
		Name:      core.CleanString(name),
		Email:     email,
		Role:      RoleStudent,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Cause(err) == ErrEmailExists { // provisioned concurrently
		return svc.repo.GetUser(ctx, GetFilter{Email: email})
	}
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.logger.Info("user provisioned", map[string]interface{}{"email": email})
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter)
}

// Save updates the user owning uu.Email or creates it. uu must be validated.
func (svc *Service) Save(ctx context.Context, uu UpsertUser) (User, error) {
	now := NowFunc().UTC()

	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: uu.Email})
	switch {
	case err == nil:
		if uu.Name != "" {
			usr.Name = uu.Name
		}
		usr.Role = uu.Role
		usr.ClassGroup = uu.ClassGroup
		if uu.IsActive != nil {
			usr.IsActive = *uu.IsActive
		}
		usr.UpdatedAt = now
		return svc.repo.UpdateUser(ctx, usr)
	case errors.Cause(err) == ErrNotFound:
		isActive := true
		if uu.IsActive != nil {
			isActive = *uu.IsActive
		}
		return svc.repo.CreateUser(ctx, User{
			Name:       uu.Name,
			Email:      uu.Email,
			Role:       uu.Role,
			ClassGroup: uu.ClassGroup,
			IsActive:   isActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	default:
		return User{}, errors.Wrap(err, "getting user by email")
	}
}

// Deactivate marks a user inactive; users are never deleted.
func (svc *Service) Deactivate(ctx context.Context, id string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}
	usr.IsActive = false
	usr.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}
