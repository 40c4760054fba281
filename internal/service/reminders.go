package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/splitnest/debt-service/internal/models"
)

// RemindDueDebts scans open debts whose due date has arrived and creates a
// payment_reminder notification (plus email) for each debtor. rateHint is an
// optional central-bank key rate included in overdue emails; pass 0 to omit.
// Per-debt failures are logged and do not stop the sweep.
func (s *Service) RemindDueDebts(ctx context.Context, rateHint float64) (int, error) {
	debts, err := s.store.ListDueDebts(ctx)
	if err != nil {
		return 0, err
	}

	reminded := 0
	for i := range debts {
		debt := &debts[i]

		// The debtor is the counterparty for owed_to_me debts and the
		// owner for i_owe debts.
		var recipient int64
		switch debt.Direction {
		case models.DirectionOwedToMe:
			if debt.FriendID == nil {
				continue
			}
			recipient = *debt.FriendID
		case models.DirectionIOwe:
			recipient = debt.UserID
		default:
			continue
		}

		var due string
		if debt.DueDate != nil {
			due = debt.DueDate.Format("2006-01-02")
		}
		payload, _ := json.Marshal(models.ReminderPayload{
			DebtID:      debt.ID,
			Amount:      debt.Amount,
			Description: debt.Description,
			DueDate:     due,
		})
		n := &models.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipient,
			Type:        models.NotificationPaymentReminder,
			Payload:     payload,
		}
		if err := s.store.CreateNotification(ctx, n); err != nil {
			s.log.Errorf("Reminder sweep: failed to notify user %d about debt %d: %v", recipient, debt.ID, err)
			continue
		}
		reminded++

		if s.mailer != nil {
			if user, err := s.store.FindUserByID(ctx, recipient); err == nil {
				if err := s.mailer.SendPaymentReminder(user.Email, user.Username, debt.Amount, debt.Description, debt.DueDate, rateHint); err != nil {
					s.log.Errorf("Reminder sweep: email to %s failed: %v", user.Email, err)
				}
			}
		}
	}

	if reminded > 0 {
		s.log.Infof("Reminder sweep finished at %s: %d of %d due debts reminded",
			time.Now().Format(time.RFC3339), reminded, len(debts))
	}
	return reminded, nil
}
