package main

import (
	"context"
	logslog "log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jgonzalez0406/Messaging-Program/internal/broker"
	brokerhttp "github.com/jgonzalez0406/Messaging-Program/internal/broker/http"
	"github.com/jgonzalez0406/Messaging-Program/internal/broker/memory"
	brokerredis "github.com/jgonzalez0406/Messaging-Program/internal/broker/redis"
	"github.com/jgonzalez0406/Messaging-Program/internal/common/logs/slog"
	"github.com/jgonzalez0406/Messaging-Program/internal/common/workerpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Port          string
	Store         string
	PollWait      time.Duration
	FanoutWorkers int
	RedisAddr     string
	RedisPass     string
	RedisDB       int
	KeyPrefix     string
}

func loadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("BROKER_PORT", "9002"),
		Store:         getEnv("MAILBOX_STORE", "memory"),
		PollWait:      time.Duration(getEnvInt("POLL_WAIT_MS", 1000)) * time.Millisecond,
		FanoutWorkers: getEnvInt("FANOUT_WORKERS", 8),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		KeyPrefix:     getEnv("MAILBOX_KEY_PREFIX", "smq"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func main() {
	cfg := loadConfig()

	logger := slog.New(logslog.LevelInfo)
	logger.Info("starting SMQ broker", "port", cfg.Port, "store", cfg.Store)

	var store broker.Mailboxes
	switch cfg.Store {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr)

		store = brokerredis.NewStore(redisClient, cfg.KeyPrefix)
	default:
		store = memory.New()
	}

	pool, err := workerpool.New(cfg.FanoutWorkers)
	if err != nil {
		logger.Error("failed to create fan-out pool", "error", err)
		os.Exit(1)
	}
	defer pool.Stop()

	b := broker.New(store, pool, logger)
	handler := brokerhttp.NewHandler(b, logger).WithPollWait(cfg.PollWait)
	router := brokerhttp.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down broker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}
