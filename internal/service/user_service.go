// Package service holds the marketplace business rules.
package service

import (
	"context"
	"strings"

	"tradepost/internal/models"
	"tradepost/internal/repository"
	"tradepost/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

type RegisterInput struct {
	Username string
	Language string
	Bio      string
}

type UpdateProfileInput struct {
	UserID   uint
	Language *string
	Bio      *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a new member. Usernames are unique and trimmed.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	lang, err := validation.NormalizeLanguage(in.Language)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	bio := strings.TrimSpace(in.Bio)
	if err := validation.ValidateBio(bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("User already exists")
	}

	user := &models.User{Username: username, Language: lang, Bio: bio}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login resolves a username to its member; there are no passwords.
func (s *UserService) Login(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("username is required")
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("User not found")
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile changes the fields that were provided.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Language != nil {
		lang, err := validation.NormalizeLanguage(*in.Language)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Language = lang
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validation.ValidateBio(bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Bio = bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
