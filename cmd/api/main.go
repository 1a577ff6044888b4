package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/audit"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/config"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/flags"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
	"github.com/aman-zulfiqar/jupiter-swap-api/internal/server"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	version, _ := jupiter.ParseAPIVersion(cfg.APIVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	client := jupiter.NewClient(jupiter.ClientConfig{
		Version: version,
		BaseURL: cfg.JupiterBaseURL,
		APIKey:  cfg.JupiterAPIKey,
		HTTP:    jupiter.NewHTTPClient(cfg.HTTPTimeout),
		Limiter: limiter,
		Logger:  logger,
	})

	h := &server.Handlers{
		Jupiter: client,
		Logger:  logger,
		Timeout: cfg.HTTPTimeout,
		Audit:   audit.LogSink{Logger: logger},
	}

	// Operation flags are optional; without redis every operation stays enabled.
	if cfg.RedisAddr != "" {
		rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rclient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rclient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, operation flags disabled")
		} else {
			store, err := flags.NewStore(rclient)
			if err != nil {
				logger.WithError(err).Fatal("failed to create flags store")
			}
			h.Flags = store
		}
	}

	// Audit goes to clickhouse when configured, to the log otherwise.
	if cfg.ClickHouseAddr != "" {
		sink, err := audit.NewClickHouseSink(ctx, audit.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			logger.WithError(err).Warn("clickhouse unavailable, auditing to log")
		} else if err := sink.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Warn("failed to create jupiter_calls table, auditing to log")
			_ = sink.Close()
		} else {
			h.Audit = sink
			defer sink.Close()
		}
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:      cfg.APIAddr,
			DevMode:   cfg.DevMode,
			APIKey:    cfg.APIKey,
			RateLimit: 20,
			RateBurst: 40,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithFields(logrus.Fields{
		"addr":    cfg.APIAddr,
		"version": version,
		"dev":     cfg.DevMode,
	}).Info("api server starting")
	if err := srv.Start(); err != nil {
		logger.WithError(err).Fatal("api server failed")
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.WaitClosed(waitCtx); err != nil {
		logger.WithError(err).Warn("shutdown did not complete")
	}
}
