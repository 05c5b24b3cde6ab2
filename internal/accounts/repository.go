package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-finance/finance/internal/platform/db"
)

const studentIDConstraint = "accounts_student_id_key"

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new account and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, studentID string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (student_id) VALUES ($1) RETURNING id, student_id`,
		studentID,
	).Scan(&acc.ID, &acc.StudentID)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return &acc, nil
}

// CreateWithID inserts an account under a caller-chosen id and moves the id
// sequence past it so later inserts do not collide.
func (r *Repository) CreateWithID(ctx context.Context, id int64, studentID string) (*Account, error) {
	var acc Account
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO accounts (id, student_id) VALUES ($1, $2) RETURNING id, student_id`,
			id, studentID,
		).Scan(&acc.ID, &acc.StudentID); err != nil {
			return mapWriteError(err)
		}
		_, err := tx.Exec(ctx,
			`SELECT setval(pg_get_serial_sequence('accounts', 'id'), (SELECT MAX(id) FROM accounts))`)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Get retrieves an account by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Account, error) {
	return r.scanOne(ctx, `SELECT id, student_id FROM accounts WHERE id = $1`, id)
}

// GetByStudentID retrieves an account by its external student id.
func (r *Repository) GetByStudentID(ctx context.Context, studentID string) (*Account, error) {
	return r.scanOne(ctx, `SELECT id, student_id FROM accounts WHERE student_id = $1`, studentID)
}

// List returns all accounts ordered by id.
func (r *Repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, student_id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var acc Account
		if err := rows.Scan(&acc.ID, &acc.StudentID); err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

// UpdateStudentID replaces the student id of an existing account.
func (r *Repository) UpdateStudentID(ctx context.Context, id int64, studentID string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx,
		`UPDATE accounts SET student_id = $2, updated_at = NOW() WHERE id = $1 RETURNING id, student_id`,
		id, studentID,
	).Scan(&acc.ID, &acc.StudentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapWriteError(err)
	}
	return &acc, nil
}

// Delete removes an account; invoices cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) scanOne(ctx context.Context, query string, arg any) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(&acc.ID, &acc.StudentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err, studentIDConstraint) {
		return ErrStudentIDTaken
	}
	return fmt.Errorf("accounts: write: %w", err)
}
