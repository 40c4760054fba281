package client

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/splitnest/debt-service/internal/models"
	"github.com/splitnest/debt-service/internal/validation"
)

// SplitExpenseInput is the raw payload for creating a split expense.
type SplitExpenseInput struct {
	Description  string               `json:"description"`
	TotalAmount  float64              `json:"total_amount"`
	Category     string               `json:"category"`
	Date         string               `json:"date"` // Format: YYYY-MM-DD
	CreatorID    int64                `json:"-"`
	CreatorName  string               `json:"-"`
	Participants []models.Participant `json:"participants"`
}

// BuildSplitExpense verifies that the participant shares reconcile with the
// total and produces the canonical record. Expenses failing reconciliation
// are rejected before any persistence or notification is attempted.
func BuildSplitExpense(in SplitExpenseInput) (*models.SplitExpense, error) {
	var errs []string
	if strings.TrimSpace(in.Description) == "" {
		errs = append(errs, "description is required")
	}
	if in.TotalAmount <= 0 {
		errs = append(errs, "total amount must be greater than zero")
	}
	if len(in.Participants) == 0 {
		errs = append(errs, "at least one participant is required")
	}
	if err := validation.ValidateShares(in.TotalAmount, in.Participants); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Messages: errs}
	}

	date := in.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return &models.SplitExpense{
		Description:  strings.TrimSpace(in.Description),
		TotalAmount:  in.TotalAmount,
		Category:     in.Category,
		Date:         date,
		CreatedBy:    in.CreatorID,
		Participants: in.Participants,
	}, nil
}

// ExpenseEvent describes a created split expense to the fan-out.
type ExpenseEvent struct {
	Type        string
	Description string
	TotalAmount float64
	CreatorID   int64
	CreatorName string
	Category    string
	Date        string
}

// EventFor converts an expense into its fan-out event.
func EventFor(e *models.SplitExpense, creatorName, notifType string) ExpenseEvent {
	return ExpenseEvent{
		Type:        notifType,
		Description: e.Description,
		TotalAmount: e.TotalAmount,
		CreatorID:   e.CreatedBy,
		CreatorName: creatorName,
		Category:    e.Category,
		Date:        e.Date,
	}
}

// payloadFor builds the per-participant notification payload.
func (ev ExpenseEvent) payloadFor(share float64) json.RawMessage {
	payload, _ := json.Marshal(models.ExpensePayload{
		Description: ev.Description,
		TotalAmount: ev.TotalAmount,
		YourShare:   share,
		CreatorName: ev.CreatorName,
		Category:    ev.Category,
		Date:        ev.Date,
	})
	return payload
}

// CreateSplitExpense builds the canonical record, persists it, and fans out
// notifications to the other participants. Fan-out failures never undo or
// fail the persisted expense; the result details carry them instead.
func (c *Client) CreateSplitExpense(ctx context.Context, in SplitExpenseInput) (*models.SplitExpense, *FanoutResult, error) {
	expense, err := BuildSplitExpense(in)
	if err != nil {
		return nil, nil, err
	}

	raw, err := c.send(ctx, "POST", "/expenses", expense)
	if err != nil {
		return nil, nil, err
	}
	var envelope struct {
		Expense *models.SplitExpense `json:"expense"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Expense == nil {
		return nil, nil, &MalformedResponseError{Snippet: snippet(raw)}
	}
	created := envelope.Expense

	event := EventFor(created, in.CreatorName, models.NotificationExpenseSplit)
	result := c.NotifyParticipants(ctx, event, created.Participants)
	return created, result, nil
}
