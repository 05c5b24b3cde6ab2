package memstore

import (
	"context"
	"sort"

	"github.com/campus-finance/finance/internal/accounts"
)

// Accounts implements the account store over Store.
type Accounts struct {
	s *Store
}

func (a *Accounts) Create(ctx context.Context, studentID string) (*accounts.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, taken := a.studentOwner(studentID); taken {
		return nil, accounts.ErrStudentIDTaken
	}
	a.s.accountSeq++
	acc := accounts.Account{ID: a.s.accountSeq, StudentID: studentID}
	a.s.accounts[acc.ID] = acc
	return &acc, nil
}

func (a *Accounts) CreateWithID(ctx context.Context, id int64, studentID string) (*accounts.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, taken := a.studentOwner(studentID); taken {
		return nil, accounts.ErrStudentIDTaken
	}
	if _, ok := a.s.accounts[id]; ok {
		return nil, accounts.ErrStudentIDTaken
	}
	acc := accounts.Account{ID: id, StudentID: studentID}
	a.s.accounts[id] = acc
	if id > a.s.accountSeq {
		a.s.accountSeq = id
	}
	return &acc, nil
}

func (a *Accounts) Get(ctx context.Context, id int64) (*accounts.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	acc, ok := a.s.accounts[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return &acc, nil
}

func (a *Accounts) GetByStudentID(ctx context.Context, studentID string) (*accounts.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	for _, acc := range a.s.accounts {
		if acc.StudentID == studentID {
			acc := acc
			return &acc, nil
		}
	}
	return nil, accounts.ErrNotFound
}

func (a *Accounts) List(ctx context.Context) ([]accounts.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	out := make([]accounts.Account, 0, len(a.s.accounts))
	for _, acc := range a.s.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *Accounts) UpdateStudentID(ctx context.Context, id int64, studentID string) (*accounts.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	acc, ok := a.s.accounts[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	if owner, taken := a.studentOwner(studentID); taken && owner != id {
		return nil, accounts.ErrStudentIDTaken
	}
	acc.StudentID = studentID
	a.s.accounts[id] = acc
	for invID, inv := range a.s.invoices {
		if inv.AccountID == id {
			inv.StudentID = studentID
			a.s.invoices[invID] = inv
		}
	}
	return &acc, nil
}

// Delete removes the account and every invoice it owns.
func (a *Accounts) Delete(ctx context.Context, id int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.accounts[id]; !ok {
		return accounts.ErrNotFound
	}
	delete(a.s.accounts, id)
	kept := a.s.invoiceOrder[:0]
	for _, invID := range a.s.invoiceOrder {
		if a.s.invoices[invID].AccountID == id {
			delete(a.s.invoices, invID)
			continue
		}
		kept = append(kept, invID)
	}
	a.s.invoiceOrder = kept
	return nil
}

// studentOwner must be called with the lock held.
func (a *Accounts) studentOwner(studentID string) (int64, bool) {
	for id, acc := range a.s.accounts {
		if acc.StudentID == studentID {
			return id, true
		}
	}
	return 0, false
}
