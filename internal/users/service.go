package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campus-finance/finance/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, name, role string) (*User, error)
	CreateWithID(ctx context.Context, id int64, name, role string) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int64, name, role string) (*User, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name, role string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errNotValid()
	}
	u, err := s.repo.Create(ctx, name, strings.TrimSpace(role))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapLookupError(id, err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

// Replace overwrites name and role of user id, creating it under that id when
// it does not exist yet.
func (s *Service) Replace(ctx context.Context, id int64, name, role string) (*User, error) {
	name = strings.TrimSpace(name)
	if id <= 0 || name == "" {
		return nil, errNotValid()
	}
	role = strings.TrimSpace(role)
	u, err := s.repo.Update(ctx, id, name, role)
	if errors.Is(err, ErrNotFound) {
		u, err = s.repo.CreateWithID(ctx, id, name, role)
	}
	if err != nil {
		return nil, fmt.Errorf("replace user: %w", err)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupError(id, err)
	}
	return nil
}

func mapLookupError(id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return httpx.NotFound("Could not find user %d", id)
	}
	return fmt.Errorf("user %d: %w", id, err)
}

func errNotValid() error {
	return httpx.Invalid("Not a valid user.")
}
