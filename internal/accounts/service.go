package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/campus-finance/finance/internal/platform/httpx"
)

// balanceFanOut bounds concurrent outstanding-balance queries while listing.
const balanceFanOut = 4

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	Create(ctx context.Context, studentID string) (*Account, error)
	CreateWithID(ctx context.Context, id int64, studentID string) (*Account, error)
	Get(ctx context.Context, id int64) (*Account, error)
	GetByStudentID(ctx context.Context, studentID string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	UpdateStudentID(ctx context.Context, id int64, studentID string) (*Account, error)
	Delete(ctx context.Context, id int64) error
}

// BalanceReader counts an account's invoices that are still awaiting payment.
type BalanceReader interface {
	CountOutstanding(ctx context.Context, accountID int64) (int, error)
}

// Service aggregates accounts with their derived balance flag.
type Service struct {
	repo     RepositoryPort
	balances BalanceReader
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, balances BalanceReader) *Service {
	return &Service{repo: repo, balances: balances}
}

// Create opens an account for studentID.
func (s *Service) Create(ctx context.Context, studentID string) (*Account, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, errNotValid()
	}
	account, err := s.repo.Create(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrStudentIDTaken) {
			return nil, errAlreadyExists(studentID)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	account.HasOutstandingBalance = false
	return account, nil
}

// Get returns the account with id.
func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errNotFoundByID(id)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if err := s.populateBalance(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetByStudentID returns the account owned by studentID.
func (s *Service) GetByStudentID(ctx context.Context, studentID string) (*Account, error) {
	account, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errNotFoundByStudent(studentID)
		}
		return nil, fmt.Errorf("get account by student: %w", err)
	}
	if err := s.populateBalance(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// List returns every account in id order with balances populated.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(balanceFanOut)
	for i := range list {
		account := &list[i]
		g.Go(func() error {
			return s.populateBalance(gctx, account)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateOrCreate changes the student id of account id, or creates the account
// under id when it does not exist yet.
func (s *Service) UpdateOrCreate(ctx context.Context, id int64, studentID string) (*Account, error) {
	studentID = strings.TrimSpace(studentID)
	if id <= 0 || studentID == "" {
		return nil, errNotValid()
	}
	account, err := s.repo.UpdateStudentID(ctx, id, studentID)
	if errors.Is(err, ErrNotFound) {
		account, err = s.repo.CreateWithID(ctx, id, studentID)
	}
	if err != nil {
		if errors.Is(err, ErrStudentIDTaken) {
			return nil, errAlreadyExists(studentID)
		}
		return nil, fmt.Errorf("update or create account: %w", err)
	}
	if err := s.populateBalance(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes account id. Owned invoices go with it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errNotFoundByID(id)
		}
		return fmt.Errorf("get account: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errNotFoundByID(id)
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *Service) populateBalance(ctx context.Context, account *Account) error {
	if s.balances == nil {
		return nil
	}
	n, err := s.balances.CountOutstanding(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("count outstanding invoices for account %d: %w", account.ID, err)
	}
	account.HasOutstandingBalance = n > 0
	return nil
}

func errNotValid() error {
	return httpx.Invalid("Not a valid account.")
}

func errAlreadyExists(studentID string) error {
	return httpx.Duplicate("An account already exists for student ID %s.", studentID)
}

func errNotFoundByID(id int64) error {
	return httpx.NotFound("Could not find account %d", id)
}

func errNotFoundByStudent(studentID string) error {
	return httpx.NotFound("Could not find account for student ID %s", studentID)
}
