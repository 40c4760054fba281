package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/splitnest/debt-service/internal/models"
)

// MaxDebtAmount is the upper cap on a single debt in the deployed currency unit.
const MaxDebtAmount = 100000

// ShareTolerance is the allowed rounding drift when reconciling participant
// shares against an expense total.
const ShareTolerance = 0.01

// ValidateDebtInput checks a raw debt payload and returns every rule
// violation found. An empty slice means the input is valid. Rules do not
// short-circuit: callers surface all messages, not just the first.
func ValidateDebtInput(in models.DebtInput) []string {
	var errs []string

	if in.FriendID == nil && !strings.Contains(in.FriendEmail, "@") {
		errs = append(errs, "a friend or a valid friend email is required")
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
	switch {
	case err != nil:
		errs = append(errs, "amount must be a number")
	case amount <= 0:
		errs = append(errs, "amount must be greater than zero")
	case amount > MaxDebtAmount:
		errs = append(errs, fmt.Sprintf("amount cannot exceed %d", MaxDebtAmount))
	}

	if strings.TrimSpace(in.Description) == "" {
		errs = append(errs, "description is required")
	}

	if in.Direction != models.DirectionOwedToMe && in.Direction != models.DirectionIOwe {
		errs = append(errs, "direction must be owed_to_me or i_owe")
	}

	return errs
}

// ValidateShares verifies that participant shares reconcile with the expense
// total within ShareTolerance.
func ValidateShares(total float64, participants []models.Participant) error {
	var sum float64
	for _, p := range participants {
		if p.Amount < 0 {
			return fmt.Errorf("participant %d has a negative share", p.UserID)
		}
		sum += p.Amount
	}
	if math.Abs(sum-total) > ShareTolerance {
		return fmt.Errorf("participant shares (%.2f) do not match the total amount (%.2f)", sum, total)
	}
	return nil
}
