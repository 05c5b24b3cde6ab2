package memstore

import (
	"context"
	"errors"

	"github.com/campus-finance/finance/internal/invoices"
)

// Invoices implements the invoice store over Store.
type Invoices struct {
	s *Store
}

func (v *Invoices) Create(ctx context.Context, input invoices.NewInvoice) (*invoices.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	acc, ok := v.s.accounts[input.AccountID]
	if !ok {
		return nil, errors.New("memstore: invoice references unknown account")
	}
	for _, inv := range v.s.invoices {
		if inv.Reference == input.Reference {
			return nil, invoices.ErrReferenceTaken
		}
	}
	v.s.invoiceSeq++
	inv := invoices.Invoice{
		ID:        v.s.invoiceSeq,
		Reference: input.Reference,
		Amount:    input.Amount,
		DueDate:   input.DueDate,
		Type:      input.Type,
		Status:    input.Status,
		AccountID: acc.ID,
		StudentID: acc.StudentID,
		Version:   1,
	}
	v.s.invoices[inv.ID] = inv
	v.s.invoiceOrder = append(v.s.invoiceOrder, inv.ID)
	return &inv, nil
}

func (v *Invoices) Get(ctx context.Context, id int64) (*invoices.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	inv, ok := v.s.invoices[id]
	if !ok {
		return nil, invoices.ErrNotFound
	}
	return &inv, nil
}

func (v *Invoices) GetByReference(ctx context.Context, reference string) (*invoices.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, inv := range v.s.invoices {
		if inv.Reference == reference {
			inv := inv
			return &inv, nil
		}
	}
	return nil, invoices.ErrNotFound
}

func (v *Invoices) List(ctx context.Context) ([]invoices.Invoice, error) {
	return v.filter(ctx, func(invoices.Invoice) bool { return true })
}

func (v *Invoices) ListByAccount(ctx context.Context, accountID int64) ([]invoices.Invoice, error) {
	return v.filter(ctx, func(inv invoices.Invoice) bool { return inv.AccountID == accountID })
}

// UpdateStatus is a compare-and-swap on status and version.
func (v *Invoices) UpdateStatus(ctx context.Context, id int64, from, to invoices.Status, version int) (*invoices.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	inv, ok := v.s.invoices[id]
	if !ok || inv.Status != from || inv.Version != version {
		return nil, invoices.ErrConflict
	}
	inv.Status = to
	inv.Version++
	v.s.invoices[id] = inv
	return &inv, nil
}

func (v *Invoices) CountOutstanding(ctx context.Context, accountID int64) (int, error) {
	list, err := v.filter(ctx, func(inv invoices.Invoice) bool {
		return inv.AccountID == accountID && inv.Status == invoices.StatusOutstanding
	})
	return len(list), err
}

func (v *Invoices) filter(ctx context.Context, keep func(invoices.Invoice) bool) ([]invoices.Invoice, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []invoices.Invoice
	for _, id := range v.s.invoiceOrder {
		if inv := v.s.invoices[id]; keep(inv) {
			out = append(out, inv)
		}
	}
	return out, nil
}
