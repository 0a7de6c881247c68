// Package services отправляет письма по событиям подписки.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/lib/smtp"
	"github.com/bookease/bookease-backend/internal/models"
)

const dateLayout = "02 Jan 2006"

// SenderService формирует и отправляет письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendActivationReceipt отправляет квитанцию об активации подписки.
func (s *SenderService) SendActivationReceipt(_ context.Context, body []byte) error {
	ev, err := s.decode(body)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your BookEase %s plan is active", ev.PackageType)
	text := fmt.Sprintf(`Hello %s,

Thank you for your payment. Your subscription is now active.

Plan:          %s (%s)
Amount paid:   %s %d
Valid from:    %s
Valid until:   %s
Order ID:      %s
Payment ID:    %s

The BookEase team`,
		ev.Name,
		ev.PackageType, ev.BillingCycle,
		models.Currency, ev.PackagePrice,
		ev.StartDate.Format(dateLayout),
		ev.EndDate.Format(dateLayout),
		ev.OrderID,
		ev.PaymentID,
	)
	return s.sendEmail([]string{ev.Email}, subject, text)
}

// SendExpiryNotice сообщает об окончании подписки.
func (s *SenderService) SendExpiryNotice(_ context.Context, body []byte) error {
	ev, err := s.decode(body)
	if err != nil {
		return err
	}
	subject := "Your BookEase subscription has expired"
	text := fmt.Sprintf(`Hello %s,

Your %s (%s) subscription ended on %s.
Renew it from the pricing page to keep your booking pages online.

The BookEase team`,
		ev.Name,
		ev.PackageType, ev.BillingCycle,
		ev.EndDate.Format(dateLayout),
	)
	return s.sendEmail([]string{ev.Email}, subject, text)
}

func (s *SenderService) decode(body []byte) (*models.SubscriptionEvent, error) {
	var ev models.SubscriptionEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return nil, fmt.Errorf("error unmarshalling message: %w", err)
	}
	if ev.Email == "" {
		return nil, fmt.Errorf("event for account %q has no recipient", ev.AccountID)
	}
	return &ev, nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
