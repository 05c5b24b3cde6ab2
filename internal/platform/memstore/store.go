// Package memstore keeps accounts, invoices and users in process memory. It
// enforces the same uniqueness, ordering and cascade rules as the PostgreSQL
// schema and backs STORE_DRIVER=memory as well as handler tests.
package memstore

import (
	"context"
	"sync"

	"github.com/campus-finance/finance/internal/accounts"
	"github.com/campus-finance/finance/internal/invoices"
	"github.com/campus-finance/finance/internal/users"
)

// Store is the shared state behind the per-entity views.
type Store struct {
	mu sync.RWMutex

	accounts     map[int64]accounts.Account
	accountSeq   int64
	invoices     map[int64]invoices.Invoice
	invoiceOrder []int64
	invoiceSeq   int64
	users        map[int64]users.User
	userSeq      int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		accounts: make(map[int64]accounts.Account),
		invoices: make(map[int64]invoices.Invoice),
		users:    make(map[int64]users.User),
	}
}

// Accounts exposes the account repository view.
func (s *Store) Accounts() *Accounts { return &Accounts{s: s} }

// Invoices exposes the invoice repository view.
func (s *Store) Invoices() *Invoices { return &Invoices{s: s} }

// Users exposes the user repository view.
func (s *Store) Users() *Users { return &Users{s: s} }

var (
	_ accounts.RepositoryPort = (*Accounts)(nil)
	_ accounts.BalanceReader  = (*Invoices)(nil)
	_ invoices.RepositoryPort = (*Invoices)(nil)
	_ invoices.AccountLookup  = (*Accounts)(nil)
	_ users.RepositoryPort    = (*Users)(nil)
)

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
