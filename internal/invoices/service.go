package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campus-finance/finance/internal/accounts"
	"github.com/campus-finance/finance/internal/platform/httpx"
)

const (
	defaultReferenceAttempts = 5
	maxTransitionAttempts    = 3
)

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	Create(ctx context.Context, input NewInvoice) (*Invoice, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetByReference(ctx context.Context, reference string) (*Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	ListByAccount(ctx context.Context, accountID int64) ([]Invoice, error)
	// UpdateStatus moves invoice id from one status to another only if it is
	// still at the given version; otherwise it returns ErrConflict.
	UpdateStatus(ctx context.Context, id int64, from, to Status, version int) (*Invoice, error)
	CountOutstanding(ctx context.Context, accountID int64) (int, error)
}

// AccountLookup resolves owning accounts.
type AccountLookup interface {
	Get(ctx context.Context, id int64) (*accounts.Account, error)
	GetByStudentID(ctx context.Context, studentID string) (*accounts.Account, error)
}

// ServiceConfig tunes the lifecycle engine.
type ServiceConfig struct {
	// MaxReferenceAttempts bounds regeneration when a reference collides.
	MaxReferenceAttempts int
	Generate             ReferenceGenerator
	Metrics              *Metrics
}

// CreateInput carries the caller-supplied fields of a new invoice.
type CreateInput struct {
	Amount    decimal.Decimal
	DueDate   time.Time
	Type      Type
	StudentID string
}

// Service is the invoice lifecycle engine.
type Service struct {
	repo     RepositoryPort
	accounts AccountLookup
	cfg      ServiceConfig
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, accountLookup AccountLookup, cfg ServiceConfig) *Service {
	if cfg.MaxReferenceAttempts <= 0 {
		cfg.MaxReferenceAttempts = defaultReferenceAttempts
	}
	if cfg.Generate == nil {
		cfg.Generate = RandomReference
	}
	return &Service{repo: repo, accounts: accountLookup, cfg: cfg}
}

// Create issues a new OUTSTANDING invoice against the account of input.StudentID.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Invoice, error) {
	studentID := strings.TrimSpace(input.StudentID)
	if studentID == "" {
		return nil, httpx.Invalid("You can't create an invoice without a valid student ID.")
	}
	amount := input.Amount.Round(2)
	if !amount.IsPositive() || input.DueDate.IsZero() || strings.TrimSpace(string(input.Type)) == "" {
		return nil, errNotValid()
	}
	account, err := s.accounts.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, httpx.NotFound("Could not find account for student ID %s", studentID)
		}
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	dueDate := time.Date(input.DueDate.Year(), input.DueDate.Month(), input.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	for attempt := 1; attempt <= s.cfg.MaxReferenceAttempts; attempt++ {
		reference, err := s.cfg.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate reference: %w", err)
		}
		created, err := s.repo.Create(ctx, NewInvoice{
			Reference: reference,
			Amount:    amount,
			DueDate:   dueDate,
			Type:      Type(strings.TrimSpace(string(input.Type))),
			Status:    StatusOutstanding,
			AccountID: account.ID,
		})
		if errors.Is(err, ErrReferenceTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create invoice: %w", err)
		}
		created.StudentID = account.StudentID
		s.cfg.Metrics.observeCreated()
		return created, nil
	}
	return nil, fmt.Errorf("create invoice: no unique reference after %d attempts", s.cfg.MaxReferenceAttempts)
}

// Pay moves an OUTSTANDING invoice to PAID.
func (s *Service) Pay(ctx context.Context, reference string) (*Invoice, error) {
	return s.transition(ctx, reference, StatusPaid, "pay")
}

// Cancel moves an OUTSTANDING invoice to CANCELLED.
func (s *Service) Cancel(ctx context.Context, reference string) (*Invoice, error) {
	return s.transition(ctx, reference, StatusCancelled, "cancel")
}

func (s *Service) transition(ctx context.Context, reference string, to Status, action string) (*Invoice, error) {
	inv, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		if !CanTransition(inv.Status, to) {
			s.cfg.Metrics.observeTransition(action, "rejected")
			return nil, httpx.InvalidTransition("You can't %s an invoice that is in the %s status", action, inv.Status)
		}
		updated, err := s.repo.UpdateStatus(ctx, inv.ID, inv.Status, to, inv.Version)
		if errors.Is(err, ErrConflict) {
			// Another request moved the invoice first; re-evaluate against its state.
			if inv, err = s.GetByReference(ctx, reference); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s invoice: %w", action, err)
		}
		s.cfg.Metrics.observeTransition(action, "applied")
		return updated, nil
	}
	return nil, fmt.Errorf("%s invoice %s: too many concurrent modifications", action, reference)
}

// Get returns the invoice with internal id.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound("Could not find invoice %d", id)
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByReference returns the invoice with the external reference.
func (s *Service) GetByReference(ctx context.Context, reference string) (*Invoice, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, httpx.NotFound("Could not find invoice.")
	}
	inv, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound("Could not find invoice for reference %s", reference)
		}
		return nil, fmt.Errorf("get invoice by reference: %w", err)
	}
	return inv, nil
}

// List returns all invoices in insertion order.
func (s *Service) List(ctx context.Context) ([]Invoice, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return list, nil
}

// ListForAccount returns the invoices owned by account id.
func (s *Service) ListForAccount(ctx context.Context, accountID int64) ([]Invoice, error) {
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, httpx.NotFound("Could not find account %d", accountID)
		}
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	list, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account invoices: %w", err)
	}
	return list, nil
}

func errNotValid() error {
	return httpx.Invalid("Not a valid invoice.")
}
