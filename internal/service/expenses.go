package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/splitnest/debt-service/internal/models"
	"github.com/splitnest/debt-service/internal/validation"
)

// SplitExpenseInput is the payload for creating a split expense
type SplitExpenseInput struct {
	Description  string               `json:"description"`
	TotalAmount  float64              `json:"total_amount"`
	Category     string               `json:"category"`
	Date         string               `json:"date"` // Format: YYYY-MM-DD
	Participants []models.Participant `json:"participants"`
}

// CreateSplitExpense verifies share reconciliation, persists the expense and
// fans out expense_created notifications to the non-creator participants.
// Notification failures never surface to the caller.
func (s *Service) CreateSplitExpense(ctx context.Context, in SplitExpenseInput) (*models.SplitExpense, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

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
	if in.Date != "" {
		if _, err := time.Parse("2006-01-02", in.Date); err != nil {
			errs = append(errs, "date must be in YYYY-MM-DD format")
		}
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
	expense := &models.SplitExpense{
		Description:  strings.TrimSpace(in.Description),
		TotalAmount:  in.TotalAmount,
		Category:     in.Category,
		Date:         date,
		CreatedBy:    userID,
		Participants: in.Participants,
	}
	if err := s.store.CreateSplitExpense(ctx, expense); err != nil {
		return nil, err
	}

	s.log.Infof("Split expense %d created by user %d: %.2f across %d participants",
		expense.ID, userID, expense.TotalAmount, len(expense.Participants))
	go s.notifyExpenseParticipants(expense)
	return expense, nil
}

func (s *Service) notifyExpenseParticipants(e *models.SplitExpense) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creatorName := ""
	if creator, err := s.store.FindUserByID(ctx, e.CreatedBy); err == nil {
		creatorName = creator.Username
	}

	for _, p := range e.Participants {
		if p.UserID == e.CreatedBy || p.Paid {
			continue
		}
		payload, _ := json.Marshal(models.ExpensePayload{
			Description: e.Description,
			TotalAmount: e.TotalAmount,
			YourShare:   p.Amount,
			CreatorName: creatorName,
			Category:    e.Category,
			Date:        e.Date,
		})
		n := &models.Notification{
			ID:          uuid.NewString(),
			RecipientID: p.UserID,
			Type:        models.NotificationExpenseCreated,
			Payload:     payload,
		}
		// One failed recipient must not block the rest.
		if err := s.store.CreateNotification(ctx, n); err != nil {
			s.log.Errorf("Failed to notify participant %d of expense %d: %v", p.UserID, e.ID, err)
		}
	}
}

// ListSplitExpenses returns the expenses the user created or takes part in
func (s *Service) ListSplitExpenses(ctx context.Context) ([]models.SplitExpense, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListSplitExpenses(ctx, userID)
}
