// Package testutil provides an in-memory Store implementation for tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/splitnest/debt-service/internal/models"
	"github.com/splitnest/debt-service/internal/repository"
)

// MemStore is a mutex-guarded, in-memory implementation of service.Store.
// FailNotification, when set, is consulted per recipient to simulate
// partial notification failure.
type MemStore struct {
	mu sync.Mutex

	nextDebtID    int64
	nextExpenseID int64

	Debts         map[int64]*models.Debt
	Expenses      map[int64]*models.SplitExpense
	Notifications []models.Notification
	Users         map[int64]*models.User

	FailNotification func(n *models.Notification) error
}

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{
		Debts:    map[int64]*models.Debt{},
		Expenses: map[int64]*models.SplitExpense{},
		Users:    map[int64]*models.User{},
	}
}

func (m *MemStore) CreateDebt(_ context.Context, d *models.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextDebtID++
	d.ID = m.nextDebtID
	d.Status = models.StatusOpen
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	copied := *d
	m.Debts[d.ID] = &copied
	return nil
}

func (m *MemStore) ListDebts(_ context.Context, userID int64, direction string) ([]models.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Debt{}
	for _, d := range m.Debts {
		if d.UserID == userID && d.Direction == direction {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *MemStore) FindDebtByID(_ context.Context, userID, debtID int64) (*models.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Debts[debtID]
	if !ok || d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

// SettleDebt mirrors the repository's check-and-set: under the store lock
// only one settlement of an open debt can succeed.
func (m *MemStore) SettleDebt(_ context.Context, userID, debtID int64, paymentMethod string) (*models.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Debts[debtID]
	if !ok || d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if d.Status != models.StatusOpen {
		return nil, repository.ErrConflict
	}
	d.Status = models.StatusPaid
	d.PaymentMethod = paymentMethod
	d.UpdatedAt = time.Now()
	copied := *d
	return &copied, nil
}

func (m *MemStore) DeleteDebt(_ context.Context, userID, debtID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Debts[debtID]
	if !ok || d.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.Debts, debtID)
	return nil
}

func (m *MemStore) DebtOverview(_ context.Context, userID int64) (*models.DebtOverview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ov := &models.DebtOverview{}
	for _, d := range m.Debts {
		if d.UserID != userID || d.Status != models.StatusOpen {
			continue
		}
		switch d.Direction {
		case models.DirectionOwedToMe:
			ov.TotalOwedToMe += d.Amount
			ov.OpenOwedToMe++
		case models.DirectionIOwe:
			ov.TotalIOwe += d.Amount
			ov.OpenIOwe++
		}
	}
	ov.NetBalance = ov.TotalOwedToMe - ov.TotalIOwe
	return ov, nil
}

func (m *MemStore) ListDueDebts(_ context.Context) ([]models.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	today := time.Now().Truncate(24 * time.Hour)
	out := []models.Debt{}
	for _, d := range m.Debts {
		if d.Status == models.StatusOpen && d.DueDate != nil && !d.DueDate.After(today) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *MemStore) CreateSplitExpense(_ context.Context, e *models.SplitExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextExpenseID++
	e.ID = m.nextExpenseID
	e.CreatedAt = time.Now()
	copied := *e
	m.Expenses[e.ID] = &copied
	return nil
}

func (m *MemStore) ListSplitExpenses(_ context.Context, userID int64) ([]models.SplitExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.SplitExpense{}
	for _, e := range m.Expenses {
		if e.CreatedBy == userID {
			out = append(out, *e)
			continue
		}
		for _, p := range e.Participants {
			if p.UserID == userID {
				out = append(out, *e)
				break
			}
		}
	}
	return out, nil
}

func (m *MemStore) CreateNotification(_ context.Context, n *models.Notification) error {
	if m.FailNotification != nil {
		if err := m.FailNotification(n); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n.CreatedAt = time.Now()
	m.Notifications = append(m.Notifications, *n)
	return nil
}

func (m *MemStore) ListNotifications(_ context.Context, recipientID int64) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Notification{}
	for _, n := range m.Notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MemStore) MarkNotificationRead(_ context.Context, recipientID int64, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Notifications {
		if m.Notifications[i].ID == id && m.Notifications[i].RecipientID == recipientID {
			m.Notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MemStore) MarkAllNotificationsRead(_ context.Context, recipientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Notifications {
		if m.Notifications[i].RecipientID == recipientID {
			m.Notifications[i].Read = true
		}
	}
	return nil
}

func (m *MemStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// NotificationCount returns how many notifications were recorded
func (m *MemStore) NotificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notifications)
}
