// Command mail-worker drains the checkout mail queue and delivers each
// message over SMTP.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storefront-service/internal/config"
	"storefront-service/internal/logging"
	"storefront-service/internal/mail"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	conn, err := amqp.Dial(cfg.Mail.AMQPURL)
	if err != nil {
		logger.Fatal("failed to connect to broker", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if err := mail.DeclareQueue(ch, cfg.Mail.Queue); err != nil {
		logger.Fatal("failed to declare queue", zap.Error(err))
	}
	// One unacked message at a time; SMTP is the bottleneck.
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("failed to set qos", zap.Error(err))
	}

	// Manual ack so failed deliveries can be requeued.
	deliveries, err := ch.Consume(cfg.Mail.Queue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("failed to consume", zap.Error(err))
	}

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUser,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.From,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mail worker started, waiting for messages", zap.String("queue", cfg.Mail.Queue))
	if err := mail.NewConsumer(sender, logger).Run(ctx, deliveries); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mail worker stopped", zap.Error(err))
		return
	}
	logger.Info("mail worker stopped")
}
