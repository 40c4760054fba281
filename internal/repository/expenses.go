package repository

import (
	"context"
	"fmt"

	"github.com/splitnest/debt-service/internal/models"
)

// CreateSplitExpense persists the expense and its participants in one
// transaction, filling in generated fields.
func (r *Repository) CreateSplitExpense(ctx context.Context, e *models.SplitExpense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO split_expenses (description, total_amount, category, date, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query,
		e.Description, e.TotalAmount, e.Category, e.Date, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create split expense: %w", err)
	}

	for _, p := range e.Participants {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO split_participants (expense_id, user_id, amount, paid)
			VALUES ($1, $2, $3, $4)`,
			e.ID, p.UserID, p.Amount, p.Paid)
		if err != nil {
			return fmt.Errorf("failed to add participant %d: %w", p.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit split expense: %w", err)
	}
	return nil
}

// ListSplitExpenses returns expenses the user created or participates in
func (r *Repository) ListSplitExpenses(ctx context.Context, userID int64) ([]models.SplitExpense, error) {
	query := `
		SELECT DISTINCT e.id, e.description, e.total_amount, COALESCE(e.category, ''),
			to_char(e.date, 'YYYY-MM-DD'), e.created_by, e.created_at
		FROM split_expenses e
		LEFT JOIN split_participants p ON p.expense_id = e.id
		WHERE e.created_by = $1 OR p.user_id = $1
		ORDER BY e.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list split expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.SplitExpense{}
	for rows.Next() {
		var e models.SplitExpense
		if err := rows.Scan(&e.ID, &e.Description, &e.TotalAmount, &e.Category,
			&e.Date, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range expenses {
		parts, err := r.listParticipants(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Participants = parts
	}
	return expenses, nil
}

func (r *Repository) listParticipants(ctx context.Context, expenseID int64) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, amount, paid
		FROM split_participants
		WHERE expense_id = $1
		ORDER BY user_id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	parts := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.UserID, &p.Amount, &p.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}
