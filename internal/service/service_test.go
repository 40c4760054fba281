package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/splitnest/debt-service/internal/middleware"
	"github.com/splitnest/debt-service/internal/models"
	"github.com/splitnest/debt-service/internal/repository"
	"github.com/splitnest/debt-service/internal/testutil"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func userCtx(id string) context.Context {
	return middleware.WithUserID(context.Background(), id)
}

func newTestService(store *testutil.MemStore) *Service {
	return NewService(store, nil, quietLogger())
}

func seedOpenDebt(t *testing.T, store *testutil.MemStore, userID int64, amount float64, direction string) *models.Debt {
	t.Helper()
	friendID := int64(99)
	debt := &models.Debt{
		UserID:      userID,
		FriendID:    &friendID,
		Amount:      amount,
		Description: "test debt",
		Direction:   direction,
	}
	if err := store.CreateDebt(context.Background(), debt); err != nil {
		t.Fatalf("seed debt: %v", err)
	}
	return debt
}

func TestCreateDebtValidation(t *testing.T) {
	svc := newTestService(testutil.NewMemStore())

	_, err := svc.CreateDebt(userCtx("1"), models.DebtInput{Amount: "abc", Direction: "bad"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Messages) < 3 {
		t.Fatalf("expected accumulated messages, got %v", verr.Messages)
	}
}

func TestCreateDebtNormalizes(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)

	friendID := int64(7)
	debt, err := svc.CreateDebt(userCtx("1"), models.DebtInput{
		FriendID:    &friendID,
		Amount:      " 25.50 ",
		Description: "  Lunch  ",
		Direction:   models.DirectionOwedToMe,
		DueDate:     "2026-09-15",
	})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	if debt.Amount != 25.50 {
		t.Errorf("amount not coerced: %v", debt.Amount)
	}
	if debt.Description != "Lunch" {
		t.Errorf("description not trimmed: %q", debt.Description)
	}
	if debt.Status != models.StatusOpen {
		t.Errorf("new debt not open: %s", debt.Status)
	}
	if debt.DueDate == nil || debt.DueDate.Format("2006-01-02") != "2026-09-15" {
		t.Errorf("due date not parsed: %v", debt.DueDate)
	}
}

func TestSettleDebtConflict(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)
	debt := seedOpenDebt(t, store, 1, 50, models.DirectionOwedToMe)

	if _, err := svc.SettleDebt(userCtx("1"), debt.ID, "cash"); err != nil {
		t.Fatalf("first settlement failed: %v", err)
	}
	_, err := svc.SettleDebt(userCtx("1"), debt.ID, "cash")
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("second settlement: expected ErrConflict, got %v", err)
	}
}

func TestSettleDebtConcurrent(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)
	debt := seedOpenDebt(t, store, 1, 50, models.DirectionOwedToMe)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SettleDebt(userCtx("1"), debt.ID, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, conflicted := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repository.ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d conflicts", succeeded, conflicted)
	}
}

func TestSettleNotificationFailureIsolated(t *testing.T) {
	store := testutil.NewMemStore()
	store.FailNotification = func(*models.Notification) error {
		return errors.New("notification store down")
	}
	svc := newTestService(store)
	debt := seedOpenDebt(t, store, 1, 50, models.DirectionOwedToMe)

	settled, err := svc.SettleDebt(userCtx("1"), debt.ID, "")
	if err != nil {
		t.Fatalf("settlement must not fail on notification errors: %v", err)
	}
	if settled.Status != models.StatusPaid {
		t.Fatalf("debt not settled: %s", settled.Status)
	}
	// Running the notification path directly must not surface the failure.
	svc.notifySettlement(settled)
	if store.NotificationCount() != 0 {
		t.Fatal("failed notification should not be recorded")
	}
}

func TestSettleNotifiesCounterparty(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)
	debt := seedOpenDebt(t, store, 1, 50, models.DirectionOwedToMe)

	settled, err := svc.SettleDebt(userCtx("1"), debt.ID, "bank transfer")
	if err != nil {
		t.Fatalf("SettleDebt: %v", err)
	}
	svc.notifySettlement(settled)

	notifs, _ := store.ListNotifications(context.Background(), 99)
	if len(notifs) == 0 {
		t.Fatal("counterparty received no debt_paid notification")
	}
	if notifs[0].Type != models.NotificationDebtPaid {
		t.Errorf("wrong notification type: %s", notifs[0].Type)
	}
}

func TestDeleteDebtNotFound(t *testing.T) {
	svc := newTestService(testutil.NewMemStore())
	if err := svc.DeleteDebt(userCtx("1"), 12345); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReminderRefusedForSettledDebt(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)
	debt := seedOpenDebt(t, store, 1, 50, models.DirectionOwedToMe)

	if _, err := svc.SettleDebt(userCtx("1"), debt.ID, ""); err != nil {
		t.Fatalf("SettleDebt: %v", err)
	}
	if err := svc.SendReminder(userCtx("1"), debt.ID, "pay up"); !errors.Is(err, ErrDebtSettled) {
		t.Fatalf("expected ErrDebtSettled, got %v", err)
	}
}

func TestReminderCreatesNotification(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)
	debt := seedOpenDebt(t, store, 1, 75, models.DirectionOwedToMe)

	if err := svc.SendReminder(userCtx("1"), debt.ID, "dinner money"); err != nil {
		t.Fatalf("SendReminder: %v", err)
	}
	notifs, _ := store.ListNotifications(context.Background(), 99)
	if len(notifs) != 1 || notifs[0].Type != models.NotificationPaymentReminder {
		t.Fatalf("expected one payment_reminder, got %v", notifs)
	}
	// The debt itself must be untouched.
	d, _ := store.FindDebtByID(context.Background(), 1, debt.ID)
	if d.Status != models.StatusOpen {
		t.Errorf("reminder mutated debt status: %s", d.Status)
	}
}

func TestOverview(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)
	seedOpenDebt(t, store, 1, 100, models.DirectionOwedToMe)
	seedOpenDebt(t, store, 1, 40, models.DirectionIOwe)
	settledDebt := seedOpenDebt(t, store, 1, 500, models.DirectionOwedToMe)
	if _, err := svc.SettleDebt(userCtx("1"), settledDebt.ID, ""); err != nil {
		t.Fatalf("SettleDebt: %v", err)
	}

	ov, err := svc.Overview(userCtx("1"))
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.TotalOwedToMe != 100 || ov.TotalIOwe != 40 || ov.NetBalance != 60 {
		t.Fatalf("wrong aggregates: %+v", ov)
	}
	if ov.OpenOwedToMe != 1 || ov.OpenIOwe != 1 {
		t.Fatalf("wrong open counts: %+v", ov)
	}
}

func TestCreateSplitExpenseRejectsBadShares(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)

	_, err := svc.CreateSplitExpense(userCtx("1"), SplitExpenseInput{
		Description: "Trip",
		TotalAmount: 100,
		Participants: []models.Participant{
			{UserID: 1, Amount: 40},
			{UserID: 2, Amount: 40},
		},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(store.Expenses) != 0 {
		t.Fatal("rejected expense must not be persisted")
	}
	if store.NotificationCount() != 0 {
		t.Fatal("rejected expense must not trigger notifications")
	}
}

func TestCreateSplitExpenseNotifiesNonCreators(t *testing.T) {
	store := testutil.NewMemStore()
	store.Users[1] = &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	svc := newTestService(store)

	expense, err := svc.CreateSplitExpense(userCtx("1"), SplitExpenseInput{
		Description: "Trip",
		TotalAmount: 90,
		Date:        "2026-08-01",
		Participants: []models.Participant{
			{UserID: 1, Amount: 30},
			{UserID: 2, Amount: 30},
			{UserID: 3, Amount: 30, Paid: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateSplitExpense: %v", err)
	}

	// The async fan-out is also reachable directly.
	svc.notifyExpenseParticipants(expense)

	if n, _ := store.ListNotifications(context.Background(), 1); len(n) != 0 {
		t.Error("creator must not be notified")
	}
	if n, _ := store.ListNotifications(context.Background(), 3); len(n) != 0 {
		t.Error("paid participant must not be notified")
	}
	notifs, _ := store.ListNotifications(context.Background(), 2)
	if len(notifs) == 0 {
		t.Fatal("unpaid participant not notified")
	}
}

func TestRemindDueDebtsSweep(t *testing.T) {
	store := testutil.NewMemStore()
	svc := newTestService(store)

	yesterday := time.Now().AddDate(0, 0, -1)
	overdue := seedOpenDebt(t, store, 1, 80, models.DirectionOwedToMe)
	store.Debts[overdue.ID].DueDate = &yesterday

	notDue := seedOpenDebt(t, store, 1, 60, models.DirectionOwedToMe)
	future := time.Now().AddDate(0, 0, 10)
	store.Debts[notDue.ID].DueDate = &future

	reminded, err := svc.RemindDueDebts(context.Background(), 0)
	if err != nil {
		t.Fatalf("RemindDueDebts: %v", err)
	}
	if reminded != 1 {
		t.Fatalf("expected 1 reminder, got %d", reminded)
	}
	notifs, _ := store.ListNotifications(context.Background(), 99)
	if len(notifs) != 1 || notifs[0].Type != models.NotificationPaymentReminder {
		t.Fatalf("expected one payment_reminder for the counterparty, got %v", notifs)
	}
}
