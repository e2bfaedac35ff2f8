package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"complaintportal/internal/config"
	"complaintportal/internal/logger"
	"complaintportal/internal/notify"
	"complaintportal/internal/storage"
	"complaintportal/internal/store"
)

// Worker consumes notification jobs and delivers confirmation emails.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, "complaint-worker")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)

	var q notify.Queue
	if cfg.QueueBackend == "memory" {
		q = notify.NewInMemory(64)
	} else {
		q = notify.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	}

	// Attachments referenced by jobs are pulled from object storage; without
	// it mails still go out, just without attached files.
	var objects storage.ObjectStore
	if cfg.MinioAccessKey != "" && cfg.MinioSecretKey != "" {
		startup, cancelStartup := context.WithTimeout(ctx, 10*time.Second)
		m, merr := storage.NewMinIO(startup, storage.Config{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PresignExpiry: cfg.PresignExpiry,
		})
		cancelStartup()
		if merr != nil {
			log.Warn("object storage unavailable, mail attachments disabled", zap.Error(merr))
		} else {
			objects = m
		}
	}

	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, objects, log)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("worker started, waiting for messages")
	for msg := range messages {
		if msg.Type != notify.TypeComplaintRegistered && msg.Type != notify.TypeFeedbackReceived {
			continue
		}

		job, err := notify.DecodeJob(msg)
		if err != nil {
			log.Error("decode job failed", zap.Error(err))
			continue
		}

		if err := mailer.Send(ctx, job); err != nil {
			log.Error("mail delivery failed",
				zap.String("type", msg.Type),
				zap.String("recipient", job.Recipient),
				zap.Error(err))
			continue
		}
		log.Info("notification delivered",
			zap.String("type", msg.Type),
			zap.String("complaint", job.ComplaintID))
	}

	log.Info("worker stopped")
}
