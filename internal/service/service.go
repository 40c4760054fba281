package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/splitnest/debt-service/internal/middleware"
	"github.com/splitnest/debt-service/internal/models"
)

// Store is the persistence surface the service needs. Implemented by
// *repository.Repository; tests substitute in-memory fakes.
type Store interface {
	CreateDebt(ctx context.Context, d *models.Debt) error
	ListDebts(ctx context.Context, userID int64, direction string) ([]models.Debt, error)
	FindDebtByID(ctx context.Context, userID, debtID int64) (*models.Debt, error)
	SettleDebt(ctx context.Context, userID, debtID int64, paymentMethod string) (*models.Debt, error)
	DeleteDebt(ctx context.Context, userID, debtID int64) error
	DebtOverview(ctx context.Context, userID int64) (*models.DebtOverview, error)
	ListDueDebts(ctx context.Context) ([]models.Debt, error)

	CreateSplitExpense(ctx context.Context, e *models.SplitExpense) error
	ListSplitExpenses(ctx context.Context, userID int64) ([]models.SplitExpense, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipientID int64) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, recipientID int64, id string) error
	MarkAllNotificationsRead(ctx context.Context, recipientID int64) error

	FindUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Mailer delivers notification emails. Implemented by email.Sender; nil
// disables email delivery.
type Mailer interface {
	SendPaymentReminder(to, username string, amount float64, description string, dueDate *time.Time, rateHint float64) error
	SendDebtSettled(to, username string, amount float64, description, paymentMethod string) error
}

// ErrDebtSettled is returned when an operation is refused because the debt
// has already been marked paid.
var ErrDebtSettled = errors.New("debt is already settled")

// ValidationError carries every field-level message found before any
// persistence is attempted.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Service handles business logic
type Service struct {
	store  Store
	mailer Mailer
	log    *logrus.Logger
}

// NewService initializes a new service
func NewService(store Store, mailer Mailer, log *logrus.Logger) *Service {
	return &Service{store: store, mailer: mailer, log: log}
}

func (s *Service) userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value(middleware.UserIDKey).(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}
