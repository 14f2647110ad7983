// Package sender отправляет покупателям письма о выдаче VPN-доступа.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/lib/smtp"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// ErrInvalidMessage сообщение из очереди не удалось разобрать.
var ErrInvalidMessage = errors.New("invalid notification message")

// SenderService формирует и отправляет письма через SMTP.
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

// SendDeliveryNotification отправляет покупателю данные доступа из сообщения очереди.
func (s *SenderService) SendDeliveryNotification(ctx context.Context, body []byte) error {
	const op = "sender.SendDeliveryNotification"
	log := s.log.With(slog.String("op", op))

	var message models.DeliveryNotification
	if err := json.Unmarshal(body, &message); err != nil {
		log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w: %v", op, ErrInvalidMessage, err)
	}
	if message.Email == "" || message.OrderID == "" {
		log.Error("notification without recipient or order")
		return fmt.Errorf("%s: %w", op, ErrInvalidMessage)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	subject := "Your VPN account is ready (order " + message.OrderID + ")"
	if err := s.sendEmail([]string{message.Email}, subject, deliveryBody(message)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("delivery email sent", slog.String("order_id", message.OrderID))
	return nil
}

func deliveryBody(m models.DeliveryNotification) string {
	var b strings.Builder
	name := m.Name
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hello, %s!\n\n", name)
	fmt.Fprintf(&b, "Your payment for order %s has been confirmed.\n", m.OrderID)
	if len(m.Items) > 0 {
		fmt.Fprintf(&b, "Items: %s\n", strings.Join(m.Items, ", "))
	}
	b.WriteString("\nAccess details:\n")
	fmt.Fprintf(&b, "  Username: %s\n", m.Username)
	fmt.Fprintf(&b, "  Password: %s\n", m.Password)
	if m.ServerInfo != "" {
		fmt.Fprintf(&b, "  Server: %s\n", m.ServerInfo)
	}
	if m.ExpiryDate != nil {
		fmt.Fprintf(&b, "  Valid until: %s\n", m.ExpiryDate.Format("2006-01-02"))
	}
	b.WriteString("\nThank you for your purchase.\n")
	return b.String()
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
	return nil
}
