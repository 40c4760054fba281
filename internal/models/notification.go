package models

import (
	"encoding/json"
	"time"
)

// Notification types
const (
	NotificationExpenseSplit    = "expense_split"
	NotificationPaymentReminder = "payment_reminder"
	NotificationDebtPaid        = "debt_paid"
	NotificationExpenseCreated  = "expense_created"
)

// Notification is a one-way, fire-and-forget delivery describing a ledger
// event to a single recipient. It never mutates the referenced entity.
type Notification struct {
	ID          string          `json:"id"`
	RecipientID int64           `json:"recipient_id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Read        bool            `json:"read"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ExpensePayload is the event payload attached to expense notifications
type ExpensePayload struct {
	Description string  `json:"description"`
	TotalAmount float64 `json:"total_amount"`
	YourShare   float64 `json:"your_share"`
	CreatorName string  `json:"creator_name"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

// ReminderPayload is the event payload attached to payment reminders
type ReminderPayload struct {
	DebtID      int64   `json:"debt_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// SettlementPayload is the event payload attached to debt_paid notifications
type SettlementPayload struct {
	DebtID        int64   `json:"debt_id"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}
