package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/cache"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/config"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/prices"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/server"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the wallet history API server.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	fetcher := history.NewFetcher(history.FetcherConfig{
		Client:            rpcClient,
		RequestsPerSecond: cfg.RPCRequestsPerSecond,
		Logger:            logger,
	})

	h := &server.Handlers{
		Fetcher: fetcher,
		DevMode: cfg.DevMode,
		Logger:  logger,
	}

	// Redis is optional for the API: without it, history pages are served
	// unpriced and the recent/price endpoints report not configured.
	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: 0})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, serving without price annotation")
	} else {
		rcache, err := cache.NewRedisCache(rclient, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to create redis cache")
		}
		h.Events = rcache
		h.Prices = rcache
		h.Annotator = prices.NewAnnotator(prices.NewClient(cfg.PriceAPIURL, cfg.PriceAPIKey), rcache, logger)
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
