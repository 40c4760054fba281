package models

import "time"

// SplitExpense represents a shared expense divided among participants
type SplitExpense struct {
	ID           int64         `json:"id"`
	Description  string        `json:"description"`
	TotalAmount  float64       `json:"total_amount"`
	Category     string        `json:"category"`
	Date         string        `json:"date"` // Format: YYYY-MM-DD
	CreatedBy    int64         `json:"created_by"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Participant is one user's share of a split expense
type Participant struct {
	UserID int64   `json:"user_id"`
	Amount float64 `json:"amount"`
	Paid   bool    `json:"paid"`
}
