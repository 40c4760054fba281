package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/splitnest/debt-service/internal/models"
)

// Sentinel errors mapped to HTTP statuses by the handler layer.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflicting state")
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate bootstraps the schema. Idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS debts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			friend_id BIGINT REFERENCES users(id),
			friend_email TEXT,
			amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
			description TEXT NOT NULL,
			direction TEXT NOT NULL CHECK (direction IN ('owed_to_me', 'i_owe')),
			due_date DATE,
			status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'paid')),
			payment_method TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS split_expenses (
			id BIGSERIAL PRIMARY KEY,
			description TEXT NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount > 0),
			category TEXT,
			date DATE NOT NULL,
			created_by BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS split_participants (
			expense_id BIGINT NOT NULL REFERENCES split_expenses(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id),
			amount NUMERIC(12,2) NOT NULL CHECK (amount >= 0),
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (expense_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			recipient_id BIGINT NOT NULL REFERENCES users(id),
			type TEXT NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}',
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_debts_user_status ON debts(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, read)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, username, created_at
		FROM users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.Username, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
