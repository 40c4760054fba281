package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/splitnest/debt-service/internal/middleware"
	"github.com/splitnest/debt-service/internal/models"
	"github.com/splitnest/debt-service/internal/service"
	"github.com/splitnest/debt-service/internal/testutil"
)

// newTestRouter wires the real route table over a MemStore, with a stub
// auth middleware that fixes the user id.
func newTestRouter(store *testutil.MemStore, userID string) *mux.Router {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := service.NewService(store, nil, log)
	h := NewHandler(svc, log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
		})
	})
	api.HandleFunc("/debts/owed-to-me", h.ListOwedToMe).Methods("GET")
	api.HandleFunc("/debts/owed-by-me", h.ListOwedByMe).Methods("GET")
	api.HandleFunc("/debts/overview", h.Overview).Methods("GET")
	api.HandleFunc("/debts", h.CreateDebt).Methods("POST")
	api.HandleFunc("/debts/{id}/mark-paid", h.SettleDebt).Methods("PATCH")
	api.HandleFunc("/debts/{id}/remind", h.Remind).Methods("POST")
	api.HandleFunc("/debts/{id}", h.DeleteDebt).Methods("DELETE")
	api.HandleFunc("/expenses", h.CreateExpense).Methods("POST")
	api.HandleFunc("/notifications/send", h.SendNotification).Methods("POST")
	api.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	api.HandleFunc("/notifications/read-all", h.MarkAllNotificationsRead).Methods("PUT")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods("PUT")
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reqBody = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	decoded := map[string]json.RawMessage{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not a JSON object: %s", rec.Body.String())
		}
	}
	return rec, decoded
}

func seedDebt(t *testing.T, store *testutil.MemStore, userID int64) *models.Debt {
	t.Helper()
	friendID := int64(2)
	debt := &models.Debt{
		UserID:      userID,
		FriendID:    &friendID,
		Amount:      30,
		Description: "groceries",
		Direction:   models.DirectionOwedToMe,
	}
	if err := store.CreateDebt(context.Background(), debt); err != nil {
		t.Fatal(err)
	}
	return debt
}

func TestListDebtsShape(t *testing.T) {
	store := testutil.NewMemStore()
	seedDebt(t, store, 1)
	r := newTestRouter(store, "1")

	rec, body := doJSON(t, r, "GET", "/api/debts/owed-to-me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var debts []models.Debt
	if err := json.Unmarshal(body["debts"], &debts); err != nil {
		t.Fatalf("response not wrapped in debts key: %s", rec.Body.String())
	}
	if len(debts) != 1 || debts[0].Description != "groceries" {
		t.Fatalf("unexpected debts: %v", debts)
	}
}

func TestCreateDebtBadInput(t *testing.T) {
	r := newTestRouter(testutil.NewMemStore(), "1")

	rec, body := doJSON(t, r, "POST", "/api/debts", models.DebtInput{
		Amount:    "0",
		Direction: "bad",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var msgs []string
	if err := json.Unmarshal(body["errors"], &msgs); err != nil || len(msgs) < 3 {
		t.Fatalf("expected all validation messages, got %s", rec.Body.String())
	}
}

func TestSettleDebtTwiceIs409(t *testing.T) {
	store := testutil.NewMemStore()
	seedDebt(t, store, 1)
	r := newTestRouter(store, "1")

	rec, body := doJSON(t, r, "PATCH", "/api/debts/1/mark-paid", map[string]string{"payment_method": "cash"})
	if rec.Code != http.StatusOK {
		t.Fatalf("first settle: status %d: %s", rec.Code, rec.Body.String())
	}
	var settled models.Debt
	if err := json.Unmarshal(body["debt"], &settled); err != nil {
		t.Fatalf("settle response not wrapped in debt key: %s", rec.Body.String())
	}
	if settled.Status != models.StatusPaid || settled.PaymentMethod != "cash" {
		t.Fatalf("unexpected settled debt: %+v", settled)
	}

	rec, body = doJSON(t, r, "PATCH", "/api/debts/1/mark-paid", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second settle: status %d, want 409", rec.Code)
	}
	if !strings.Contains(string(body["message"]), "already") {
		t.Fatalf("conflict body: %s", rec.Body.String())
	}
}

func TestDeleteMissingDebtIs404JSON(t *testing.T) {
	r := newTestRouter(testutil.NewMemStore(), "1")

	rec, body := doJSON(t, r, "DELETE", "/api/debts/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	if string(body["message"]) != `"debt not found"` {
		t.Fatalf("expected JSON message body, got %s", rec.Body.String())
	}
}

func TestRemindSettledDebtRefused(t *testing.T) {
	store := testutil.NewMemStore()
	seedDebt(t, store, 1)
	r := newTestRouter(store, "1")

	if rec, _ := doJSON(t, r, "PATCH", "/api/debts/1/mark-paid", nil); rec.Code != http.StatusOK {
		t.Fatalf("settle failed: %d", rec.Code)
	}
	rec, body := doJSON(t, r, "POST", "/api/debts/1/remind", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if !strings.Contains(string(body["message"]), "settled") {
		t.Fatalf("policy message missing: %s", rec.Body.String())
	}
}

func TestNotificationLifecycle(t *testing.T) {
	store := testutil.NewMemStore()
	r := newTestRouter(store, "1")

	rec, body := doJSON(t, r, "POST", "/api/notifications/send", map[string]any{
		"recipient_id": 1,
		"type":         models.NotificationExpenseSplit,
		"payload":      map[string]any{"your_share": 12.5},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send: status %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Notification
	if err := json.Unmarshal(body["notification"], &created); err != nil {
		t.Fatalf("send response: %s", rec.Body.String())
	}

	rec, body = doJSON(t, r, "GET", "/api/notifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var notifs []models.Notification
	if err := json.Unmarshal(body["notifications"], &notifs); err != nil || len(notifs) != 1 {
		t.Fatalf("list response: %s", rec.Body.String())
	}
	if notifs[0].Read {
		t.Fatal("new notification must be unread")
	}

	rec, _ = doJSON(t, r, "PUT", "/api/notifications/"+created.ID+"/read", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: status %d", rec.Code)
	}

	_, body = doJSON(t, r, "GET", "/api/notifications", nil)
	if err := json.Unmarshal(body["notifications"], &notifs); err != nil || !notifs[0].Read {
		t.Fatal("notification not marked read")
	}
}

func TestSendNotificationUnknownType(t *testing.T) {
	r := newTestRouter(testutil.NewMemStore(), "1")

	rec, _ := doJSON(t, r, "POST", "/api/notifications/send", map[string]any{
		"recipient_id": 1,
		"type":         "carrier_pigeon",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestCreateExpenseRejectsUnreconciledShares(t *testing.T) {
	store := testutil.NewMemStore()
	r := newTestRouter(store, "1")

	rec, _ := doJSON(t, r, "POST", "/api/expenses", map[string]any{
		"description":  "Trip",
		"total_amount": 100,
		"participants": []map[string]any{
			{"user_id": 1, "amount": 10},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if len(store.Expenses) != 0 {
		t.Fatal("rejected expense persisted")
	}
}
