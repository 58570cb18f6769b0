package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
	"github.com/oksasatya/go-community-leaderboard/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-membership-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; membership worker disabled (no emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQMembershipQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	// prefetch keeps dispatch fair across workers
	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQMembershipQueue, 16)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer consumer.Close()

	h := &handler{
		cfg:         cfg,
		sender:      mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		logger:      logger,
		sendTimeout: 15 * time.Second,
	}
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range consumer.Deliveries {
			switch h.handle(ctx, msg.Body) {
			case ack:
				_ = msg.Ack(false)
			case drop:
				_ = msg.Nack(false, false)
			case requeue:
				_ = msg.Nack(false, true)
			}
		}
		close(done)
	}()

	logger.Infof("membership worker listening on queue=%s", consumer.Queue)
	<-stop
	logger.Info("shutting down...")
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
