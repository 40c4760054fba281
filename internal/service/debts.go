package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/splitnest/debt-service/internal/models"
	"github.com/splitnest/debt-service/internal/validation"
)

// ListDebts returns the authenticated user's debts for one direction
func (s *Service) ListDebts(ctx context.Context, direction string) ([]models.Debt, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListDebts(ctx, userID, direction)
}

// CreateDebt validates, normalizes and persists a new debt. Validation
// failures are returned as a ValidationError before any persistence.
func (s *Service) CreateDebt(ctx context.Context, in models.DebtInput) (*models.Debt, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	errs := validation.ValidateDebtInput(in)

	var dueDate *time.Time
	if in.DueDate != "" {
		t, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			errs = append(errs, "due date must be in YYYY-MM-DD format")
		} else {
			dueDate = &t
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Messages: errs}
	}

	amount, _ := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
	debt := &models.Debt{
		UserID:      userID,
		FriendID:    in.FriendID,
		FriendEmail: strings.TrimSpace(in.FriendEmail),
		Amount:      amount,
		Description: strings.TrimSpace(in.Description),
		Direction:   in.Direction,
		DueDate:     dueDate,
	}

	if err := s.store.CreateDebt(ctx, debt); err != nil {
		return nil, err
	}

	s.log.Infof("Debt %d created for user %d: %.2f (%s)", debt.ID, userID, debt.Amount, debt.Direction)
	return debt, nil
}

// SettleDebt transitions a debt open -> paid and notifies the counterparty.
// The notification is fire-and-forget: its failure never surfaces to the
// caller of the settlement.
func (s *Service) SettleDebt(ctx context.Context, debtID int64, paymentMethod string) (*models.Debt, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	debt, err := s.store.SettleDebt(ctx, userID, debtID, paymentMethod)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Debt %d settled by user %d", debt.ID, userID)
	go s.notifySettlement(debt)
	return debt, nil
}

func (s *Service) notifySettlement(debt *models.Debt) {
	if debt.FriendID == nil {
		return
	}
	// Background context: the request that triggered this may be gone.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	payload, _ := json.Marshal(models.SettlementPayload{
		DebtID:        debt.ID,
		Amount:        debt.Amount,
		Description:   debt.Description,
		PaymentMethod: debt.PaymentMethod,
	})
	n := &models.Notification{
		ID:          uuid.NewString(),
		RecipientID: *debt.FriendID,
		Type:        models.NotificationDebtPaid,
		Payload:     payload,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.log.Errorf("Failed to record debt_paid notification for debt %d: %v", debt.ID, err)
		return
	}

	if s.mailer == nil {
		return
	}
	user, err := s.store.FindUserByID(ctx, *debt.FriendID)
	if err != nil {
		s.log.Warnf("Cannot resolve recipient %d for settlement email: %v", *debt.FriendID, err)
		return
	}
	if err := s.mailer.SendDebtSettled(user.Email, user.Username, debt.Amount, debt.Description, debt.PaymentMethod); err != nil {
		s.log.Errorf("Failed to send settlement email for debt %d: %v", debt.ID, err)
	}
}

// DeleteDebt removes a debt in any status. Deleting an unknown id reports
// repository.ErrNotFound rather than success.
func (s *Service) DeleteDebt(ctx context.Context, debtID int64) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDebt(ctx, userID, debtID); err != nil {
		return err
	}
	s.log.Infof("Debt %d deleted by user %d", debtID, userID)
	return nil
}

// SendReminder creates a payment_reminder notification for the debt's
// counterparty without mutating ledger state. Settled debts are refused.
func (s *Service) SendReminder(ctx context.Context, debtID int64, message string) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}

	debt, err := s.store.FindDebtByID(ctx, userID, debtID)
	if err != nil {
		return err
	}
	if debt.Status == models.StatusPaid {
		return ErrDebtSettled
	}
	if debt.FriendID == nil {
		s.log.Warnf("Debt %d has no linked friend, reminder recorded for owner only", debtID)
		return nil
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
		Message:     message,
	})
	n := &models.Notification{
		ID:          uuid.NewString(),
		RecipientID: *debt.FriendID,
		Type:        models.NotificationPaymentReminder,
		Payload:     payload,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return err
	}

	s.log.Infof("Payment reminder sent for debt %d to user %d", debt.ID, *debt.FriendID)
	go s.emailReminder(debt, 0)
	return nil
}

func (s *Service) emailReminder(debt *models.Debt, rateHint float64) {
	if s.mailer == nil || debt.FriendID == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := s.store.FindUserByID(ctx, *debt.FriendID)
	if err != nil {
		s.log.Warnf("Cannot resolve recipient %d for reminder email: %v", *debt.FriendID, err)
		return
	}
	if err := s.mailer.SendPaymentReminder(user.Email, user.Username, debt.Amount, debt.Description, debt.DueDate, rateHint); err != nil {
		s.log.Errorf("Failed to send reminder email for debt %d: %v", debt.ID, err)
	}
}

// Overview returns the aggregate totals for the user's dashboard
func (s *Service) Overview(ctx context.Context) (*models.DebtOverview, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.DebtOverview(ctx, userID)
}
