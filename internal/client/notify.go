package client

import (
	"context"
	"encoding/json"

	"github.com/splitnest/debt-service/internal/models"
)

// DispatchDetail records the outcome of one notification dispatch.
type DispatchDetail struct {
	UserID  int64  `json:"user_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FanoutResult aggregates one NotifyParticipants invocation.
// TotalParticipants is the eligible-recipient count (participants minus the
// creator) and serves as the denominator for a delivery-success ratio.
type FanoutResult struct {
	NotificationsSent int              `json:"notifications_sent"`
	TotalParticipants int              `json:"total_participants"`
	Details           []DispatchDetail `json:"details"`
}

// NotifyParticipants dispatches one notification per eligible recipient, in
// participant order. The creator and participants already marked paid are
// skipped. Each dispatch is independent: a failure is recorded in Details
// and does not abort the remaining participants, nor does it roll back the
// ledger mutation that triggered the fan-out.
func (c *Client) NotifyParticipants(ctx context.Context, event ExpenseEvent, participants []models.Participant) *FanoutResult {
	result := &FanoutResult{}

	for _, p := range participants {
		if p.UserID == event.CreatorID {
			continue
		}
		result.TotalParticipants++

		if p.Paid {
			continue
		}

		detail := DispatchDetail{UserID: p.UserID}
		body := struct {
			RecipientID int64           `json:"recipient_id"`
			Type        string          `json:"type"`
			Payload     json.RawMessage `json:"payload"`
		}{
			RecipientID: p.UserID,
			Type:        event.Type,
			Payload:     event.payloadFor(p.Amount),
		}

		if _, err := c.send(ctx, "POST", "/notifications/send", body); err != nil {
			detail.Error = err.Error()
			c.log.Warnf("Notification to participant %d failed: %v", p.UserID, err)
		} else {
			detail.Success = true
			result.NotificationsSent++
		}
		result.Details = append(result.Details, detail)
	}

	return result
}

// FetchNotifications lists the caller's notifications.
func (c *Client) FetchNotifications(ctx context.Context) ([]models.Notification, error) {
	raw, err := c.send(ctx, "GET", "/notifications", nil)
	if err != nil {
		return nil, err
	}
	arr, err := normalizeCollection(raw, "notifications", "data")
	if err != nil {
		return nil, err
	}
	var notifs []models.Notification
	if err := json.Unmarshal(arr, &notifs); err != nil {
		return nil, &MalformedResponseError{Snippet: snippet(arr)}
	}
	return notifs, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.send(ctx, "PUT", "/notifications/"+id+"/read", nil)
	return err
}

// MarkAllNotificationsRead marks every unread notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := c.send(ctx, "PUT", "/notifications/read-all", nil)
	return err
}
