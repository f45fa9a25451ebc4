package main

import (
	"context"
	"os/signal"
	"syscall"

	"app/internal/config"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/kafka"
	"app/internal/outbox"
	"app/internal/redisx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// outboxディスパッチャ。APIとは別プロセスで動かす
func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	tx := infraRepo.NewTxManagerGorm(gormDB)
	d := outbox.NewDispatcher(
		tx,
		producer,
		outbox.NewRedisFanOut(rdb),
		logger,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("outbox dispatcher started",
		zap.Duration("interval", cfg.OutboxPollInterval),
		zap.Int("batch_size", cfg.OutboxBatchSize),
	)
	d.Run(ctx)
	logger.Info("outbox dispatcher stopped")
}
