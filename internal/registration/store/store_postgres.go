package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evidgate/internal/registration/models"
	"evidgate/pkg/platform/sentinel"
)

// Schema creates the table backing the Postgres tier. Applied on startup;
// idempotent so repeated boots are safe.
const Schema = `
CREATE TABLE IF NOT EXISTS wallet_users (
    wallet_address    TEXT PRIMARY KEY,
    full_name         TEXT NOT NULL,
    role              TEXT NOT NULL,
    department        TEXT NOT NULL DEFAULT '',
    jurisdiction      TEXT NOT NULL DEFAULT '',
    badge_number      TEXT NOT NULL DEFAULT '',
    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
    registration_date TIMESTAMPTZ NOT NULL
)`

// PostgresStore is the authoritative remote tier. The wallet address is the
// primary key; Put is an upsert so re-registration overwrites rather than
// duplicates.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema applies the table definition.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure wallet_users schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, address string) (*models.UserRecord, error) {
	const query = `
		SELECT wallet_address, full_name, role, department, jurisdiction,
		       badge_number, is_active, registration_date
		FROM wallet_users
		WHERE wallet_address = $1`

	var record models.UserRecord
	var role string
	err := s.pool.QueryRow(ctx, query, address).Scan(
		&record.WalletAddress,
		&record.FullName,
		&role,
		&record.Department,
		&record.Jurisdiction,
		&record.BadgeNumber,
		&record.IsActive,
		&record.RegistrationDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	record.Role = models.Role(role)
	return &record, nil
}

func (s *PostgresStore) Put(ctx context.Context, record *models.UserRecord) error {
	const query = `
		INSERT INTO wallet_users (
			wallet_address, full_name, role, department, jurisdiction,
			badge_number, is_active, registration_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (wallet_address) DO UPDATE SET
			full_name         = EXCLUDED.full_name,
			role              = EXCLUDED.role,
			department        = EXCLUDED.department,
			jurisdiction      = EXCLUDED.jurisdiction,
			badge_number      = EXCLUDED.badge_number,
			is_active         = EXCLUDED.is_active,
			registration_date = EXCLUDED.registration_date`

	_, err := s.pool.Exec(ctx, query,
		record.WalletAddress,
		record.FullName,
		record.Role.String(),
		record.Department,
		record.Jurisdiction,
		record.BadgeNumber,
		record.IsActive,
		record.RegistrationDate,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
