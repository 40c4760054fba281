package models

import "time"

// Debt directions. A debt is always recorded from the owner's point of view.
const (
	DirectionOwedToMe = "owed_to_me"
	DirectionIOwe     = "i_owe"
)

// Debt statuses. Settlement is a one-way transition open -> paid.
const (
	StatusOpen = "open"
	StatusPaid = "paid"
)

// Debt represents a directional monetary obligation between two users
type Debt struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	FriendID      *int64     `json:"friend_id,omitempty"`
	FriendEmail   string     `json:"friend_email,omitempty"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description"`
	Direction     string     `json:"direction"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DebtInput is the raw, not yet validated payload for creating a debt.
// Amount arrives as a string and is coerced only after validation.
type DebtInput struct {
	FriendID    *int64 `json:"friend_id,omitempty"`
	FriendEmail string `json:"friend_email,omitempty"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Direction   string `json:"direction"`
	DueDate     string `json:"due_date,omitempty"` // Format: YYYY-MM-DD
}

// DebtOverview represents aggregate totals for a user's dashboard
type DebtOverview struct {
	TotalOwedToMe float64 `json:"total_owed_to_me"`
	TotalIOwe     float64 `json:"total_i_owe"`
	NetBalance    float64 `json:"net_balance"`
	OpenOwedToMe  int     `json:"open_owed_to_me"`
	OpenIOwe      int     `json:"open_i_owe"`
}
