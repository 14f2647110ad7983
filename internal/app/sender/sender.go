// Package sender собирает процесс отправки писем о выдаче VPN-доступа.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/vpn-store/internal/config"
	"github.com/magabrotheeeer/vpn-store/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/vpn-store/internal/services/sender"
)

// App читает очередь уведомлений и отправляет письма.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к RabbitMQ и объявляет очереди уведомлений.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "sender.New"
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("rabbitmq url is not configured"))
	}
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("smtp host is not configured"))
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(logger, transport),
		logger:        logger,
	}, nil
}

// handleDelivered отбрасывает неразборчивые сообщения, остальные ошибки возвращают
// сообщение в очередь.
func (a *App) handleDelivered(ctx context.Context, body []byte) error {
	err := a.senderService.SendDeliveryNotification(ctx, body)
	if errors.Is(err, senderservice.ErrInvalidMessage) {
		return fmt.Errorf("%w: %w", rabbitmq.ErrDrop, err)
	}
	return err
}

// Run обрабатывает сообщения до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.DeliveredQueue, a.handleDelivered)
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.DeliveredQueue), sl.Err(err))
		return err
	}
	a.logger.Info("consuming notifications", slog.String("queue", rabbitmq.DeliveredQueue))

	<-ctx.Done()
	a.logger.Info("sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
