package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"travel/internal/domain"
	"travel/internal/repository"
)

// UserService handles user registration and lookup.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterUserRequest contains the parameters for registering a user.
type RegisterUserRequest struct {
	Email     string
	FirstName string
	LastName  string
}

// RegisterUser creates a user. Returns repository.ErrConflict if the email
// is already registered.
func (s *UserService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}

	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, ErrInvalidName
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, repository.ErrConflict
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     email,
		FirstName: firstName,
		LastName:  strings.TrimSpace(req.LastName),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	return s.userRepo.GetByID(ctx, userID)
}

// ListUsers retrieves all users.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.GetAll(ctx)
}
