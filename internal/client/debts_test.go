package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/splitnest/debt-service/internal/models"
)

func TestFetchDebtsAggregates(t *testing.T) {
	shapes := map[string]string{
		"bare array":    `[{"id":1,"amount":10.5},{"id":2,"amount":4.5}]`,
		"debts wrapper": `{"debts":[{"id":1,"amount":10.5},{"id":2,"amount":4.5}]}`,
		"data wrapper":  `{"data":[{"id":1,"amount":10.5},{"id":2,"amount":4.5}]}`,
	}
	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(respond(200, "application/json", body))
			defer srv.Close()

			list, err := testClient(srv).FetchDebtsOwedToMe(context.Background())
			if err != nil {
				t.Fatalf("FetchDebtsOwedToMe: %v", err)
			}
			if list.Count != 2 {
				t.Errorf("count = %d, want 2", list.Count)
			}
			if list.TotalAmount != 15.0 {
				t.Errorf("total = %v, want 15", list.TotalAmount)
			}
		})
	}
}

func TestCreateManualDebtValidationSkipsNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		respond(201, "application/json", `{"debt":{"id":1}}`)(w, r)
	}))
	defer srv.Close()

	_, err := testClient(srv).CreateManualDebt(context.Background(), models.DebtInput{
		Amount:    "-3",
		Direction: "bad",
	})
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if len(verr.Messages) < 3 {
		t.Fatalf("expected every violated rule reported, got %v", verr.Messages)
	}
	if calls != 0 {
		t.Fatalf("validation failure must not reach the network, saw %d calls", calls)
	}
}

func TestCreateManualDebtNormalizesInput(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		respond(201, "application/json", `{"debt":{"id":7,"amount":25.5,"description":"Lunch","status":"open"}}`)(w, r)
	}))
	defer srv.Close()

	friendID := int64(3)
	debt, err := testClient(srv).CreateManualDebt(context.Background(), models.DebtInput{
		FriendID:    &friendID,
		Amount:      " 25.5 ",
		Description: "  Lunch  ",
		Direction:   models.DirectionOwedToMe,
	})
	if err != nil {
		t.Fatalf("CreateManualDebt: %v", err)
	}
	if got["amount"] != "25.50" {
		t.Errorf("amount not coerced in request: %v", got["amount"])
	}
	if got["description"] != "Lunch" {
		t.Errorf("description not trimmed in request: %v", got["description"])
	}
	if debt.ID != 7 {
		t.Errorf("created debt not decoded: %+v", debt)
	}
}

func TestMarkDebtAsPaidConflict(t *testing.T) {
	srv := httptest.NewServer(respond(409, "application/json", `{"message":"debt is already marked as paid"}`))
	defer srv.Close()

	_, err := testClient(srv).MarkDebtAsPaid(context.Background(), 5, "cash")
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("expected ConflictError, got %T: %v", err, err)
	}
}

func TestDeleteDebtNotFound(t *testing.T) {
	srv := httptest.NewServer(respond(404, "application/json", `{"message":"debt not found"}`))
	defer srv.Close()

	err := testClient(srv).DeleteDebt(context.Background(), 12345)
	if _, ok := err.(*ResourceNotFoundError); !ok {
		t.Fatalf("deleting a missing debt must not report success, got %T: %v", err, err)
	}
}

func TestSendPaymentReminderRefusedForPaidDebt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	debt := &models.Debt{ID: 9, Status: models.StatusPaid}
	err := testClient(srv).SendPaymentReminder(context.Background(), debt, "")
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected local refusal, got %T: %v", err, err)
	}
	if calls != 0 {
		t.Fatal("paid-debt reminder must not reach the network")
	}
}

func TestGetDebtOverview(t *testing.T) {
	srv := httptest.NewServer(respond(200, "application/json",
		`{"overview":{"total_owed_to_me":120,"total_i_owe":20,"net_balance":100}}`))
	defer srv.Close()

	ov, err := testClient(srv).GetDebtOverview(context.Background())
	if err != nil {
		t.Fatalf("GetDebtOverview: %v", err)
	}
	if ov.NetBalance != 100 {
		t.Fatalf("overview not surfaced: %+v", ov)
	}
}
