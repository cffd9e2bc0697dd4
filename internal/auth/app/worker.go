package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/devcrm/auth-service/internal/auth/mail"
	"github.com/devcrm/auth-service/internal/auth/queue"
	"github.com/devcrm/auth-service/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// MailWorkerApp is the standalone email delivery process. It shares the
// Redis queue with the API but runs independently so mail provider
// latency never blocks request handling.
type MailWorkerApp struct {
	cfg    Config
	logger *slog.Logger
	redis  redis.UniversalClient
	worker *mail.Worker
}

// NewMailWorker creates the worker process with its queue and sender wired.
func NewMailWorker(cfg Config) (*MailWorkerApp, error) {
	logger := slogx.New(slogx.Config{
		Service: "auth-mailworker",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	sender, err := newSender(cfg, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return &MailWorkerApp{
		cfg:    cfg,
		logger: logger,
		redis:  client,
		worker: &mail.Worker{
			Queue:       &queue.Queue{Redis: client, Name: queue.EmailQueue},
			Sender:      sender,
			Log:         logger,
			FrontendURL: cfg.FrontendURL,
		},
	}, nil
}

// Run processes queued emails until an interrupt or termination signal.
func (w *MailWorkerApp) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.logger.Info("mail worker starting", "provider", w.cfg.MailProvider, "queue", queue.EmailQueue)

	err := w.worker.Run(ctx)

	w.logger.Info("mail worker stopping")
	if cerr := w.redis.Close(); cerr != nil {
		w.logger.Error("error closing redis client", "error", cerr)
	}
	return err
}

func newSender(cfg Config, logger *slog.Logger) (mail.Sender, error) {
	switch cfg.MailProvider {
	case "mailgun":
		return mail.NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom)
	case "smtp":
		return mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	case "log":
		return &mail.LogSender{Log: logger}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
