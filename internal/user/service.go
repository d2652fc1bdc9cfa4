package user

import (
	"context"
	"errors"
	"strings"

	"github.com/fkhayef/duesledger/pkg/validate"
)

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
)

type store interface {
	Create(ctx context.Context, in *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	ListStaff(ctx context.Context, limit, offset int) ([]*User, int, error)
}

// Service handles user business logic
type Service struct {
	repo store
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateStaff creates an admin or head of department account
func (s *Service) CreateStaff(ctx context.Context, req *CreateStaffRequest) (*User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &User{Name: req.Name, Email: req.Email, Role: req.Role})
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListStaff retrieves staff accounts with pagination
func (s *Service) ListStaff(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListStaff(ctx, perPage, offset)
}

// RoleOf returns the user's role, or "" if there is no such user.
// It lets the authentication middleware resolve test identities.
func (s *Service) RoleOf(ctx context.Context, id int64) (string, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil || user == nil {
		return "", err
	}
	return user.Role, nil
}
