package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/flashdeck/pkg/pg"
)

// PostgresStore implements Store backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a Postgres-backed account store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const accountColumns = `id, username, password_hash, first_name, last_name, email, role, mfa_secret, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var acc Account
	err := row.Scan(
		&acc.ID,
		&acc.Username,
		&acc.PasswordHash,
		&acc.FirstName,
		&acc.LastName,
		&acc.Email,
		&acc.Role,
		&acc.MFASecret,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &acc, nil
}

// Create inserts the account and, for standard accounts, its student row in
// one transaction. Student records cascade away when the account is deleted.
func (s *PostgresStore) Create(ctx context.Context, acc *Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `INSERT INTO users (id, username, password_hash, first_name, last_name, email, role)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		acc.ID, acc.Username, acc.PasswordHash, acc.FirstName, acc.LastName, acc.Email, acc.Role,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create account: %w", err)
	}

	if acc.Role == RoleStandard {
		_, err = tx.Exec(ctx,
			`INSERT INTO students (student_id, user_id) VALUES ($1, $2)`,
			uuid.New(), acc.ID,
		)
		if err != nil {
			return fmt.Errorf("create student record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE username = $1`
	return scanAccount(s.pool.QueryRow(ctx, query, username))
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`
	return scanAccount(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) MFASecret(ctx context.Context, id uuid.UUID) (*string, error) {
	var secret *string
	err := s.pool.QueryRow(ctx, `SELECT mfa_secret FROM users WHERE id = $1`, id).Scan(&secret)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mfa secret lookup: %w", err)
	}
	return secret, nil
}

// SetMFASecretIfAbsent writes the secret with a compare-and-set so two
// concurrent first logins cannot provision divergent secrets. The losing
// writer reads back whatever the winner stored.
func (s *PostgresStore) SetMFASecretIfAbsent(ctx context.Context, id uuid.UUID, secret string) (string, error) {
	query := `UPDATE users SET mfa_secret = $2, updated_at = now()
	          WHERE id = $1 AND mfa_secret IS NULL
	          RETURNING mfa_secret`

	var stored string
	err := s.pool.QueryRow(ctx, query, id, secret).Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("set mfa secret: %w", err)
	}

	// Nothing updated: either the account is gone or a secret already exists.
	existing, err := s.MFASecret(ctx, id)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", ErrNotFound
	}
	return *existing, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
