package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/splitnest/debt-service/internal/models"
	"github.com/splitnest/debt-service/internal/validation"
)

// DebtList is a debt collection with its derived aggregates.
type DebtList struct {
	Debts       []models.Debt `json:"debts"`
	Count       int           `json:"count"`
	TotalAmount float64       `json:"total_amount"`
}

// FetchDebtsOwedToMe lists the debts other people owe the caller.
func (c *Client) FetchDebtsOwedToMe(ctx context.Context) (*DebtList, error) {
	return c.fetchDebts(ctx, "/debts/owed-to-me")
}

// FetchDebtsOwedByMe lists the debts the caller owes other people.
func (c *Client) FetchDebtsOwedByMe(ctx context.Context) (*DebtList, error) {
	return c.fetchDebts(ctx, "/debts/owed-by-me")
}

func (c *Client) fetchDebts(ctx context.Context, path string) (*DebtList, error) {
	raw, err := c.send(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	arr, err := normalizeCollection(raw, "debts", "data")
	if err != nil {
		return nil, err
	}

	var debts []models.Debt
	if err := json.Unmarshal(arr, &debts); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(arr)}
	}

	list := &DebtList{Debts: debts, Count: len(debts)}
	for _, d := range debts {
		list.TotalAmount += d.Amount
	}
	return list, nil
}

// CreateManualDebt validates the input locally, normalizes it and persists
// the debt. On validation failure no network call is made and every message
// is returned.
func (c *Client) CreateManualDebt(ctx context.Context, in models.DebtInput) (*models.Debt, error) {
	if errs := validation.ValidateDebtInput(in); len(errs) > 0 {
		return nil, &ValidationError{Messages: errs}
	}

	amount, _ := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
	normalized := struct {
		FriendID    *int64 `json:"friend_id,omitempty"`
		FriendEmail string `json:"friend_email,omitempty"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
		Direction   string `json:"direction"`
		DueDate     string `json:"due_date,omitempty"`
	}{
		FriendID:    in.FriendID,
		FriendEmail: strings.TrimSpace(in.FriendEmail),
		Amount:      strconv.FormatFloat(amount, 'f', 2, 64),
		Description: strings.TrimSpace(in.Description),
		Direction:   in.Direction,
		DueDate:     in.DueDate,
	}

	raw, err := c.send(ctx, "POST", "/debts", normalized)
	if err != nil {
		return nil, err
	}
	return decodeDebt(raw)
}

// MarkDebtAsPaid settles a debt. Settling an already settled debt surfaces
// the server's conflict as a ConflictError.
func (c *Client) MarkDebtAsPaid(ctx context.Context, debtID int64, paymentMethod string) (*models.Debt, error) {
	var body any
	if paymentMethod != "" {
		body = map[string]string{"payment_method": paymentMethod}
	}
	raw, err := c.send(ctx, "PATCH", fmt.Sprintf("/debts/%d/mark-paid", debtID), body)
	if err != nil {
		return nil, err
	}
	return decodeDebt(raw)
}

// DeleteDebt removes a debt in any status. A missing id reports
// ResourceNotFoundError, never success.
func (c *Client) DeleteDebt(ctx context.Context, debtID int64) error {
	_, err := c.send(ctx, "DELETE", fmt.Sprintf("/debts/%d", debtID), nil)
	return err
}

// SendPaymentReminder asks the server to remind the counterparty of an open
// debt. Settled debts are refused locally, before any network call.
func (c *Client) SendPaymentReminder(ctx context.Context, debt *models.Debt, message string) error {
	if debt.Status == models.StatusPaid {
		return &ValidationError{Messages: []string{"cannot send a reminder for a settled debt"}}
	}
	var body any
	if message != "" {
		body = map[string]string{"message": message}
	}
	_, err := c.send(ctx, "POST", fmt.Sprintf("/debts/%d/remind", debt.ID), body)
	return err
}

// GetDebtOverview returns whatever aggregate object the server computed.
func (c *Client) GetDebtOverview(ctx context.Context) (*models.DebtOverview, error) {
	raw, err := c.send(ctx, "GET", "/debts/overview", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Overview *models.DebtOverview `json:"overview"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(raw)}
	}
	if envelope.Overview != nil {
		return envelope.Overview, nil
	}
	// Tolerate a bare overview object.
	ov := &models.DebtOverview{}
	if err := json.Unmarshal(raw, ov); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(raw)}
	}
	return ov, nil
}

func decodeDebt(raw json.RawMessage) (*models.Debt, error) {
	var envelope struct {
		Debt *models.Debt `json:"debt"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(raw)}
	}
	if envelope.Debt != nil {
		return envelope.Debt, nil
	}
	debt := &models.Debt{}
	if err := json.Unmarshal(raw, debt); err != nil || debt.ID == 0 {
		return nil, &MalformedResponseError{Snippet: snippet(raw)}
	}
	return debt, nil
}
