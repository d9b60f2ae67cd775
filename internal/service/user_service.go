package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/martialcamp/enrollment-api/internal/models"
	appErrors "github.com/martialcamp/enrollment-api/pkg/errors"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
}

// RegisterUserRequest describes the idempotent first-sign-in payload.
type RegisterUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name"`
	PhotoURL *string `json:"photo_url"`
}

// SetRoleRequest assigns a role to a user.
type SetRoleRequest struct {
	Role models.UserRole `validate:"required,oneof=admin instructor student"`
}

// RoleResult is the self-only role lookup response. Role stays null when the
// caller asked about somebody else or no user record exists.
type RoleResult struct {
	Role *models.UserRole `json:"role"`
}

// UserService provides user management use cases.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// Register creates the user on first sign-in. Registration is idempotent by
// email: when the user already exists no insert happens and created is false.
func (s *UserService) Register(ctx context.Context, req RegisterUserRequest) (*models.User, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up user")
	}
	if existing != nil {
		return existing, false, nil
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user registered", zap.String("email", user.Email))
	return user, true, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx, models.UserFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// ListInstructors returns users holding the instructor role. A non-nil limit
// is applied literally.
func (s *UserService) ListInstructors(ctx context.Context, limit *int) ([]models.User, error) {
	role := models.RoleInstructor
	users, err := s.repo.List(ctx, models.UserFilter{Role: &role, Limit: limit})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return users, nil
}

// RoleFor resolves the stored role for the given email, but only when the
// caller asks about themselves. Any other query answers with a null role so
// one user cannot probe another's privileges.
func (s *UserService) RoleFor(ctx context.Context, claims *models.TokenClaims, email string) (*RoleResult, error) {
	if claims == nil || claims.Email != email {
		return &RoleResult{}, nil
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &RoleResult{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up role")
	}

	role := user.Role
	return &RoleResult{Role: &role}, nil
}

// SetRole assigns the given role to the user.
func (s *UserService) SetRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	if err := s.validator.Struct(SetRoleRequest{Role: role}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}

	s.logger.Info("user role updated", zap.String("email", user.Email), zap.String("role", string(role)))
	user.Role = role
	return user, nil
}
