package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-finance/finance/internal/platform/db"
)

// Repository persists users in finance_users.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, name, role string) (*User, error) {
	return scanOne(r.pool.QueryRow(ctx,
		`INSERT INTO finance_users (name, role) VALUES ($1, $2) RETURNING id, name, role`,
		name, role))
}

func (r *Repository) CreateWithID(ctx context.Context, id int64, name, role string) (*User, error) {
	var u *User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		u, err = scanOne(tx.QueryRow(ctx,
			`INSERT INTO finance_users (id, name, role) VALUES ($1, $2, $3) RETURNING id, name, role`,
			id, name, role))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`SELECT setval(pg_get_serial_sequence('finance_users', 'id'), (SELECT MAX(id) FROM finance_users))`)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	return scanOne(r.pool.QueryRow(ctx, `SELECT id, name, role FROM finance_users WHERE id = $1`, id))
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, role FROM finance_users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByPos[User])
}

func (r *Repository) Update(ctx context.Context, id int64, name, role string) (*User, error) {
	return scanOne(r.pool.QueryRow(ctx,
		`UPDATE finance_users SET name = $2, role = $3, updated_at = NOW() WHERE id = $1 RETURNING id, name, role`,
		id, name, role))
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM finance_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOne(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
