package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/splitnest/debt-service/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder sends a payment reminder email. rateHint, when
// non-zero, is the central bank key rate quoted in overdue reminders.
func (s *Sender) SendPaymentReminder(to, username string, amount float64, description string, dueDate *time.Time, rateHint float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}

	overdue := dueDate != nil && dueDate.Before(time.Now().Truncate(24*time.Hour))
	if overdue {
		e.Subject = "Overdue Debt Reminder"
	} else {
		e.Subject = "Payment Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", username)
	if overdue {
		body += fmt.Sprintf(
			"Your payment of %.2f for %q was due on %s and is now overdue.\n"+
				"Please settle it as soon as possible.\n",
			amount, description, dueDate.Format("2006-01-02"),
		)
		if rateHint > 0 {
			body += fmt.Sprintf(
				"Note: late payments between private parties commonly accrue interest around the key rate, currently %.2f%%.\n",
				rateHint,
			)
		}
	} else {
		body += fmt.Sprintf(
			"This is a friendly reminder about your payment of %.2f for %q.\n",
			amount, description,
		)
		if dueDate != nil {
			body += fmt.Sprintf("It is due on %s.\n", dueDate.Format("2006-01-02"))
		}
	}
	body += "\nBest regards,\nDebt Service"
	e.Text = []byte(body)

	return s.send(e, to)
}

// SendDebtSettled sends a notification that a debt was marked paid
func (s *Sender) SendDebtSettled(to, username string, amount float64, description, paymentMethod string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Debt Settled"

	body := fmt.Sprintf(
		"Dear %s,\n\nThe debt of %.2f for %q has been marked as paid.\n",
		username, amount, description,
	)
	if paymentMethod != "" {
		body += fmt.Sprintf("Payment method: %s\n", paymentMethod)
	}
	body += "\nBest regards,\nDebt Service"
	e.Text = []byte(body)

	return s.send(e, to)
}

func (s *Sender) send(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
