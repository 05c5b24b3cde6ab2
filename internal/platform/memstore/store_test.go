package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-finance/finance/internal/accounts"
	"github.com/campus-finance/finance/internal/invoices"
)

func seedInvoice(t *testing.T, s *Store, accountID int64, reference string) *invoices.Invoice {
	t.Helper()
	inv, err := s.Invoices().Create(context.Background(), invoices.NewInvoice{
		Reference: reference,
		Amount:    decimal.RequireFromString("15.00"),
		DueDate:   time.Date(2021, 11, 6, 0, 0, 0, 0, time.UTC),
		Type:      invoices.TypeLibraryFine,
		Status:    invoices.StatusOutstanding,
		AccountID: accountID,
	})
	require.NoError(t, err)
	return inv
}

func TestAccountsRejectDuplicateStudentID(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.Accounts().Create(ctx, "c3429928")
	require.NoError(t, err)

	_, err = s.Accounts().Create(ctx, "c3429928")
	require.ErrorIs(t, err, accounts.ErrStudentIDTaken)

	other, err := s.Accounts().Create(ctx, "c7000000")
	require.NoError(t, err)
	_, err = s.Accounts().UpdateStudentID(ctx, other.ID, "c3429928")
	require.ErrorIs(t, err, accounts.ErrStudentIDTaken)

	got, err := s.Accounts().Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "c3429928", got.StudentID)
}

func TestStudentIDUniqueEvenForZeroID(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Accounts().CreateWithID(ctx, 0, "ghost")
	require.NoError(t, err)
	_, err = s.Accounts().Create(ctx, "ghost")
	require.ErrorIs(t, err, accounts.ErrStudentIDTaken)
	_, err = s.Accounts().CreateWithID(ctx, 4, "ghost")
	require.ErrorIs(t, err, accounts.ErrStudentIDTaken)
}

func TestCreateWithIDAdvancesSequence(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Accounts().CreateWithID(ctx, 10, "c1")
	require.NoError(t, err)
	next, err := s.Accounts().Create(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(11), next.ID)
}

func TestDeleteAccountCascadesInvoices(t *testing.T) {
	ctx := context.Background()
	s := New()
	keep, err := s.Accounts().Create(ctx, "keep")
	require.NoError(t, err)
	drop, err := s.Accounts().Create(ctx, "drop")
	require.NoError(t, err)

	seedInvoice(t, s, keep.ID, "AAAA0001")
	dropped := seedInvoice(t, s, drop.ID, "AAAA0002")
	seedInvoice(t, s, keep.ID, "AAAA0003")

	require.NoError(t, s.Accounts().Delete(ctx, drop.ID))

	_, err = s.Invoices().Get(ctx, dropped.ID)
	require.ErrorIs(t, err, invoices.ErrNotFound)

	list, err := s.Invoices().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AAAA0001", list[0].Reference)
	assert.Equal(t, "AAAA0003", list[1].Reference)

	require.ErrorIs(t, s.Accounts().Delete(ctx, drop.ID), accounts.ErrNotFound)
}

func TestInvoiceReferenceUnique(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc, err := s.Accounts().Create(ctx, "c1")
	require.NoError(t, err)
	seedInvoice(t, s, acc.ID, "DUPLICAT")

	_, err = s.Invoices().Create(ctx, invoices.NewInvoice{
		Reference: "DUPLICAT",
		Amount:    decimal.NewFromInt(1),
		DueDate:   time.Now(),
		Type:      invoices.TypeTuitionFees,
		Status:    invoices.StatusOutstanding,
		AccountID: acc.ID,
	})
	require.ErrorIs(t, err, invoices.ErrReferenceTaken)
}

func TestUpdateStatusComparesVersion(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc, err := s.Accounts().Create(ctx, "c1")
	require.NoError(t, err)
	inv := seedInvoice(t, s, acc.ID, "VERSION1")

	paid, err := s.Invoices().UpdateStatus(ctx, inv.ID, invoices.StatusOutstanding, invoices.StatusPaid, inv.Version)
	require.NoError(t, err)
	assert.Equal(t, invoices.StatusPaid, paid.Status)
	assert.Equal(t, inv.Version+1, paid.Version)

	_, err = s.Invoices().UpdateStatus(ctx, inv.ID, invoices.StatusOutstanding, invoices.StatusCancelled, inv.Version)
	require.ErrorIs(t, err, invoices.ErrConflict)

	n, err := s.Invoices().CountOutstanding(ctx, acc.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateStudentIDFollowsInvoices(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc, err := s.Accounts().Create(ctx, "before")
	require.NoError(t, err)
	inv := seedInvoice(t, s, acc.ID, "FOLLOW01")
	assert.Equal(t, "before", inv.StudentID)

	_, err = s.Accounts().UpdateStudentID(ctx, acc.ID, "after")
	require.NoError(t, err)

	got, err := s.Invoices().GetByReference(ctx, "FOLLOW01")
	require.NoError(t, err)
	assert.Equal(t, "after", got.StudentID)
}

func TestCanceledContextStopsReads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Accounts().List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
