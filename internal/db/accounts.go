package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"yuvai/internal/models"
)

// GetAccount retrieves an account by username.
func (d *DB) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT username, password_hash, email, role, created_at
		FROM accounts WHERE username = $1
	`

	var acct models.Account
	err := d.Pool.QueryRow(ctx, query, username).Scan(
		&acct.Username,
		&acct.PasswordHash,
		&acct.Email,
		&acct.Role,
		&acct.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return &acct, nil
}

// PutAccount inserts a new account. Existing usernames are never overwritten.
func (d *DB) PutAccount(ctx context.Context, acct *models.Account) error {
	stampTime(&acct.CreatedAt)
	if acct.Role == "" {
		acct.Role = models.RoleUser
	}

	tag, err := d.Pool.Exec(ctx, `
		INSERT INTO accounts (username, password_hash, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING
	`, acct.Username, acct.PasswordHash, acct.Email, acct.Role, acct.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateUsername
	}
	return nil
}

// CountAccounts returns the number of registered accounts.
func (d *DB) CountAccounts(ctx context.Context) (int, error) {
	var n int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}
