package invoices

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates invoice statuses.
type Status string

const (
	StatusOutstanding Status = "OUTSTANDING"
	StatusPaid        Status = "PAID"
	StatusCancelled   Status = "CANCELLED"
)

// transitions lists the legal moves out of each state. Terminal states have none.
var transitions = map[Status][]Status{
	StatusOutstanding: {StatusPaid, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOutstanding, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether an invoice may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Type is an open categorical tag for what an invoice charges for.
type Type string

// Known invoice types. Other values are accepted as-is.
const (
	TypeTuitionFees Type = "TUITION_FEES"
	TypeLibraryFine Type = "LIBRARY_FINE"
)

// Invoice is a single billable charge owned by an account.
type Invoice struct {
	ID        int64
	Reference string
	Amount    decimal.Decimal
	DueDate   time.Time
	Type      Type
	Status    Status
	AccountID int64
	StudentID string
	// Version increments on every status change and guards concurrent transitions.
	Version int
}

// NewInvoice is the store input for an invoice insert.
type NewInvoice struct {
	Reference string
	Amount    decimal.Decimal
	DueDate   time.Time
	Type      Type
	Status    Status
	AccountID int64
}

// Store-level errors returned by repository implementations.
var (
	ErrNotFound       = errors.New("invoices: not found")
	ErrReferenceTaken = errors.New("invoices: reference already exists")
	ErrConflict       = errors.New("invoices: concurrent modification")
)
