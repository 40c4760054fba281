package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/splitnest/debt-service/internal/models"
)

const debtColumns = `id, user_id, friend_id, COALESCE(friend_email, ''), amount, description,
	direction, due_date, status, COALESCE(payment_method, ''), created_at, updated_at`

func scanDebt(row interface{ Scan(...any) error }) (*models.Debt, error) {
	d := &models.Debt{}
	err := row.Scan(&d.ID, &d.UserID, &d.FriendID, &d.FriendEmail, &d.Amount, &d.Description,
		&d.Direction, &d.DueDate, &d.Status, &d.PaymentMethod, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CreateDebt inserts a new debt and fills in generated fields
func (r *Repository) CreateDebt(ctx context.Context, d *models.Debt) error {
	query := `
		INSERT INTO debts (user_id, friend_id, friend_email, amount, description, direction, due_date, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, 'open')
		RETURNING id, status, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		d.UserID, d.FriendID, d.FriendEmail, d.Amount, d.Description, d.Direction, d.DueDate).
		Scan(&d.ID, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create debt: %w", err)
	}
	return nil
}

// ListDebts returns a user's debts for one direction, newest first
func (r *Repository) ListDebts(ctx context.Context, userID int64, direction string) ([]models.Debt, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM debts
		WHERE user_id = $1 AND direction = $2
		ORDER BY created_at DESC`, debtColumns)
	rows, err := r.db.QueryContext(ctx, query, userID, direction)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, *d)
	}
	return debts, rows.Err()
}

// FindDebtByID retrieves a single debt owned by the given user
func (r *Repository) FindDebtByID(ctx context.Context, userID, debtID int64) (*models.Debt, error) {
	query := fmt.Sprintf(`SELECT %s FROM debts WHERE id = $1 AND user_id = $2`, debtColumns)
	d, err := scanDebt(r.db.QueryRowContext(ctx, query, debtID, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find debt: %w", err)
	}
	return d, nil
}

// SettleDebt transitions a debt open -> paid. The WHERE clause is the
// concurrency guard: of two concurrent settlement attempts only one can
// match status='open', the other observes ErrConflict.
func (r *Repository) SettleDebt(ctx context.Context, userID, debtID int64, paymentMethod string) (*models.Debt, error) {
	query := fmt.Sprintf(`
		UPDATE debts
		SET status = 'paid', payment_method = NULLIF($3, ''), updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2 AND status = 'open'
		RETURNING %s`, debtColumns)
	d, err := scanDebt(r.db.QueryRowContext(ctx, query, debtID, userID, paymentMethod))
	if err == sql.ErrNoRows {
		// Distinguish a missing record from an already settled one.
		if _, ferr := r.FindDebtByID(ctx, userID, debtID); ferr == nil {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle debt: %w", err)
	}
	return d, nil
}

// DeleteDebt removes a debt regardless of its status
func (r *Repository) DeleteDebt(ctx context.Context, userID, debtID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM debts WHERE id = $1 AND user_id = $2`, debtID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DebtOverview computes the dashboard aggregates server-side
func (r *Repository) DebtOverview(ctx context.Context, userID int64) (*models.DebtOverview, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'owed_to_me' AND status = 'open'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'i_owe' AND status = 'open'), 0),
			COUNT(*) FILTER (WHERE direction = 'owed_to_me' AND status = 'open'),
			COUNT(*) FILTER (WHERE direction = 'i_owe' AND status = 'open')
		FROM debts
		WHERE user_id = $1`
	ov := &models.DebtOverview{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&ov.TotalOwedToMe, &ov.TotalIOwe, &ov.OpenOwedToMe, &ov.OpenIOwe)
	if err != nil {
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}
	ov.NetBalance = ov.TotalOwedToMe - ov.TotalIOwe
	return ov, nil
}

// ListDueDebts returns open debts whose due date is today or earlier,
// used by the reminder sweep.
func (r *Repository) ListDueDebts(ctx context.Context) ([]models.Debt, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM debts
		WHERE status = 'open' AND due_date IS NOT NULL AND due_date <= CURRENT_DATE
		ORDER BY due_date`, debtColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list due debts: %w", err)
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, *d)
	}
	return debts, rows.Err()
}
