package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/splitnest/debt-service/internal/models"
)

var validNotificationTypes = map[string]bool{
	models.NotificationExpenseSplit:    true,
	models.NotificationPaymentReminder: true,
	models.NotificationDebtPaid:        true,
	models.NotificationExpenseCreated:  true,
}

// SendNotification persists a single notification on behalf of the
// authenticated caller (the fan-out endpoint).
func (s *Service) SendNotification(ctx context.Context, recipientID int64, notifType string, payload json.RawMessage) (*models.Notification, error) {
	if _, err := s.userIDFromContext(ctx); err != nil {
		return nil, err
	}
	if !validNotificationTypes[notifType] {
		return nil, &ValidationError{Messages: []string{fmt.Sprintf("unknown notification type %q", notifType)}}
	}
	if recipientID <= 0 {
		return nil, &ValidationError{Messages: []string{"recipient is required"}}
	}
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	n := &models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Type:        notifType,
		Payload:     payload,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	s.log.Debugf("Notification %s (%s) recorded for user %d", n.ID, n.Type, n.RecipientID)
	return n, nil
}

// ListNotifications returns the caller's notifications, newest first
func (s *Service) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListNotifications(ctx, userID)
}

// MarkNotificationRead marks one of the caller's notifications as read
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.store.MarkNotificationRead(ctx, userID, id)
}

// MarkAllNotificationsRead marks every unread notification of the caller
func (s *Service) MarkAllNotificationsRead(ctx context.Context) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.store.MarkAllNotificationsRead(ctx, userID)
}
