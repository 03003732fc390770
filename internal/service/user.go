package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"travel/internal/domain"
	"travel/internal/repository"
)

// UserService handles user registration and lookup.
type UserService struct {
	userRepo repository.UserRepository
	validate *validator.Validate
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		validate: validator.New(),
	}
}

// RegisterUserRequest contains the parameters for registering a user.
type RegisterUserRequest struct {
	Username  string `validate:"required,max=150"`
	Email     string `validate:"required,email"`
	FirstName string `validate:"max=150"`
	LastName  string `validate:"max=150"`
}

// Register creates a new user.
func (s *UserService) Register(ctx context.Context, req RegisterUserRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrInvalidUser
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List retrieves all users.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.GetAll(ctx)
}
