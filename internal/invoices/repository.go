package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/campus-finance/finance/internal/platform/db"
)

const referenceConstraint = "invoices_reference_key"

const selectInvoice = `SELECT i.id, i.reference, i.amount::text, i.due_date, i.type, i.status,
	i.account_id, a.student_id, i.version
FROM invoices i
JOIN accounts a ON a.id = i.account_id`

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an invoice. A reference collision yields ErrReferenceTaken.
func (r *Repository) Create(ctx context.Context, input NewInvoice) (*Invoice, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO invoices (reference, amount, due_date, type, status, account_id)
VALUES ($1, $2::numeric, $3, $4, $5, $6)
RETURNING id`,
		input.Reference, input.Amount.StringFixed(2), input.DueDate, string(input.Type), string(input.Status), input.AccountID,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, referenceConstraint) {
			return nil, ErrReferenceTaken
		}
		return nil, fmt.Errorf("invoices: insert: %w", err)
	}
	return r.Get(ctx, id)
}

// Get retrieves an invoice by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	return scanOne(r.pool.QueryRow(ctx, selectInvoice+` WHERE i.id = $1`, id))
}

// GetByReference retrieves an invoice by its external reference.
func (r *Repository) GetByReference(ctx context.Context, reference string) (*Invoice, error) {
	return scanOne(r.pool.QueryRow(ctx, selectInvoice+` WHERE i.reference = $1`, reference))
}

// List returns every invoice in insertion order.
func (r *Repository) List(ctx context.Context) ([]Invoice, error) {
	return r.query(ctx, selectInvoice+` ORDER BY i.id`)
}

// ListByAccount returns the invoices owned by accountID in insertion order.
func (r *Repository) ListByAccount(ctx context.Context, accountID int64) ([]Invoice, error) {
	return r.query(ctx, selectInvoice+` WHERE i.account_id = $1 ORDER BY i.id`, accountID)
}

// UpdateStatus applies a guarded status change. The row must still hold the
// expected status and version.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status, version int) (*Invoice, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices
SET status = $2, version = version + 1, updated_at = NOW()
WHERE id = $1 AND status = $3 AND version = $4`,
		id, string(to), string(from), version,
	)
	if err != nil {
		return nil, fmt.Errorf("invoices: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConflict
	}
	return r.Get(ctx, id)
}

// CountOutstanding counts OUTSTANDING invoices for accountID.
func (r *Repository) CountOutstanding(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE account_id = $1 AND status = $2`,
		accountID, string(StatusOutstanding),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("invoices: count outstanding: %w", err)
	}
	return n, nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func scanOne(row pgx.Row) (*Invoice, error) {
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv    Invoice
		amount string
		typ    string
		status string
	)
	if err := row.Scan(&inv.ID, &inv.Reference, &amount, &inv.DueDate, &typ, &status,
		&inv.AccountID, &inv.StudentID, &inv.Version); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invoices: parse amount %q: %w", amount, err)
	}
	inv.Amount = parsed
	inv.Type = Type(typ)
	inv.Status = Status(status)
	return &inv, nil
}
