package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/splitnest/debt-service/internal/models"
	"github.com/splitnest/debt-service/internal/repository"
	"github.com/splitnest/debt-service/internal/service"
)

// Handler exposes the ledger over HTTP
type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error, notFoundMsg string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": verr.Error(),
			"errors":  verr.Messages,
		})
	case errors.Is(err, repository.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"message": notFoundMsg})
	case errors.Is(err, repository.ErrConflict):
		h.writeJSON(w, http.StatusConflict, map[string]string{"message": "debt is already marked as paid"})
	case errors.Is(err, service.ErrDebtSettled):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "cannot send a reminder for a settled debt"})
	default:
		h.log.Errorf("Request failed: %v", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// ListOwedToMe handles GET /debts/owed-to-me
func (h *Handler) ListOwedToMe(w http.ResponseWriter, r *http.Request) {
	h.listDebts(w, r, models.DirectionOwedToMe)
}

// ListOwedByMe handles GET /debts/owed-by-me
func (h *Handler) ListOwedByMe(w http.ResponseWriter, r *http.Request) {
	h.listDebts(w, r, models.DirectionIOwe)
}

func (h *Handler) listDebts(w http.ResponseWriter, r *http.Request, direction string) {
	debts, err := h.svc.ListDebts(r.Context(), direction)
	if err != nil {
		h.writeError(w, err, "debt not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"debts": debts})
}

// CreateDebt handles POST /debts
func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var in models.DebtInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	debt, err := h.svc.CreateDebt(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "debt not found")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"debt": debt})
}

// SettleDebt handles PATCH /debts/{id}/mark-paid
func (h *Handler) SettleDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid debt id"})
		return
	}
	var body struct {
		PaymentMethod string `json:"payment_method"`
	}
	if r.Body != nil {
		// Body is optional for settlement.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	debt, err := h.svc.SettleDebt(r.Context(), id, body.PaymentMethod)
	if err != nil {
		h.writeError(w, err, "debt not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"debt": debt})
}

// DeleteDebt handles DELETE /debts/{id}
func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid debt id"})
		return
	}
	if err := h.svc.DeleteDebt(r.Context(), id); err != nil {
		h.writeError(w, err, "debt not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "debt deleted"})
}

// Remind handles POST /debts/{id}/remind
func (h *Handler) Remind(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid debt id"})
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	if err := h.svc.SendReminder(r.Context(), id, body.Message); err != nil {
		h.writeError(w, err, "debt not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "reminder sent"})
}

// Overview handles GET /debts/overview
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context())
	if err != nil {
		h.writeError(w, err, "debt not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"overview": ov})
}

// CreateExpense handles POST /expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var in service.SplitExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	expense, err := h.svc.CreateSplitExpense(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "expense not found")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
}

// ListExpenses handles GET /expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListSplitExpenses(r.Context())
	if err != nil {
		h.writeError(w, err, "expense not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

// SendNotification handles POST /notifications/send
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RecipientID int64           `json:"recipient_id"`
		Type        string          `json:"type"`
		Payload     json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	n, err := h.svc.SendNotification(r.Context(), in.RecipientID, in.Type, in.Payload)
	if err != nil {
		h.writeError(w, err, "recipient not found")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "notification": n})
}

// ListNotifications handles GET /notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifs, err := h.svc.ListNotifications(r.Context())
	if err != nil {
		h.writeError(w, err, "notification not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"notifications": notifs})
}

// MarkNotificationRead handles PUT /notifications/{id}/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkNotificationRead(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err, "notification not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkAllNotificationsRead handles PUT /notifications/read-all
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkAllNotificationsRead(r.Context()); err != nil {
		h.writeError(w, err, "notification not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
