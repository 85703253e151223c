package service

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
	"github.com/SatishMhobiya/e-commerce-backend/internal/validation"
)

// dobLayouts are the accepted date-of-birth formats
var dobLayouts = []string{"2006-01-02", time.RFC3339}

// NewUserInput is the body of a sign-up. ID is issued by the identity
// provider.
type NewUserInput struct {
	ID     string `json:"_id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Photo  string `json:"photo" validate:"required"`
	Gender string `json:"gender" validate:"required,gender"`
	DOB    string `json:"dob" validate:"required"`
}

// UserService manages user accounts and answers role checks
type UserService struct {
	users     store.UserStore
	validator *validation.Validator
	clock     clockwork.Clock
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users store.UserStore, clock clockwork.Clock, logger *zap.Logger) *UserService {
	return &UserService{
		users:     users,
		validator: validation.Default(),
		clock:     clock,
		logger:    logger,
	}
}

// RegisterUser signs a user in, creating the account on first sight. created
// is false when the id was already registered; the stored user is returned
// unchanged in that case.
func (s *UserService) RegisterUser(ctx context.Context, in NewUserInput) (user *model.User, created bool, err error) {
	if in.ID != "" {
		existing, err := s.users.GetUser(ctx, in.ID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, false, apperrors.Upstream("failed to get user", err)
		}
	}

	if err := s.validator.Struct(in); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.Message = "Please enter all fields"
			return nil, false, appErr
		}
		return nil, false, apperrors.Validation("Please enter all fields")
	}

	dob, err := parseDOB(in.DOB)
	if err != nil {
		return nil, false, apperrors.Validation("dob must be a date").WithDetail("dob", in.DOB)
	}

	now := s.clock.Now()
	user = &model.User{
		ID:        in.ID,
		Name:      in.Name,
		Email:     in.Email,
		Photo:     in.Photo,
		Gender:    in.Gender,
		Role:      model.RoleUser,
		DOB:       dob,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, false, apperrors.Conflict("User already exists", err)
		}
		return nil, false, apperrors.Upstream("failed to create user", err)
	}

	s.logger.Info("Registered user",
		zap.String("user_id", user.ID),
		zap.String("gender", user.Gender))

	return user, true, nil
}

func parseDOB(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dobLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ListUsers returns every user
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.Upstream("failed to list users", err)
	}
	return users, nil
}

// GetUser returns one user
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fromStore(err, "get user", "User not found")
	}
	return user, nil
}

// DeleteUser removes a user
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return fromStore(err, "delete user", "User not found")
	}
	s.logger.Info("Deleted user", zap.String("user_id", id))
	return nil
}

// IsAdmin implements RoleChecker. An unknown user is reported as NotFound.
func (s *UserService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Role == model.RoleAdmin, nil
}
