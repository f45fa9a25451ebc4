package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	JWTSecret string // JWT署名シークレット

	KafkaBrokers []string // outboxイベントの配送先ブローカー
	RedisAddr    string   // リアルタイム配信用のRedis（pub/sub）

	OutboxPollInterval time.Duration // ディスパッチャのポーリング間隔
	OutboxBatchSize    int           // 1回で配送する最大件数
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return Config{}, fmt.Errorf("KAFKA_BROKERS is required")
	}
	cfg.KafkaBrokers = strings.Split(brokers, ",")

	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}

	//ディスパッチャはデフォルトあり
	pollMs := 500
	if v := os.Getenv("OUTBOX_POLL_INTERVAL_MS"); v != "" {
		pollMs, err = strconv.Atoi(v)
		if err != nil || pollMs <= 0 {
			return Config{}, fmt.Errorf("OUTBOX_POLL_INTERVAL_MS must be a positive number")
		}
	}
	cfg.OutboxPollInterval = time.Duration(pollMs) * time.Millisecond

	cfg.OutboxBatchSize = 100
	if v := os.Getenv("OUTBOX_BATCH_SIZE"); v != "" {
		cfg.OutboxBatchSize, err = strconv.Atoi(v)
		if err != nil || cfg.OutboxBatchSize <= 0 {
			return Config{}, fmt.Errorf("OUTBOX_BATCH_SIZE must be a positive number")
		}
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
