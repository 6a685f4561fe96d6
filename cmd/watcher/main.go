package main

import (
	"context"
	"errors"
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
	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/watch"
)

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	}
}

// processor fans newly observed events out to the cache, the store, and the
// pub/sub channel. Cache and publish failures are logged and tolerated; a
// store failure is the one treated as an error since it loses history.
type processor struct {
	cache  *cache.RedisCache
	store  *cache.ClickHouseStore
	pubsub *cache.PubSub
	logger *logrus.Logger
}

func (p *processor) handle(ctx context.Context, wallet string, events []history.Event) {
	p.logger.WithFields(logrus.Fields{
		"wallet": wallet,
		"events": len(events),
	}).Info("processing wallet events")

	if err := p.cache.AddRecentEvents(ctx, wallet, events); err != nil {
		p.logger.WithError(err).Warn("redis cache error")
	}

	if err := p.pubsub.PublishEvents(ctx, wallet, events); err != nil {
		p.logger.WithError(err).Warn("pub/sub error")
	}

	if err := p.store.InsertEvents(ctx, wallet, events); err != nil {
		p.logger.WithError(err).Error("clickhouse error")
	}
}

// main is the entry point for the wallet watcher daemon.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if len(cfg.WatchAddresses) == 0 {
		logger.Fatal("WATCH_ADDRESSES is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: 0})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	rcache, err := cache.NewRedisCache(rclient, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create redis cache")
	}

	store, err := cache.NewClickHouseStore(cache.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
		Logger:   logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to ClickHouse")
	}
	defer store.Close()

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	poller := watch.NewPoller(watch.PollerConfig{
		Client:       rpcClient,
		Addresses:    cfg.WatchAddresses,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	proc := &processor{
		cache:  rcache,
		store:  store,
		pubsub: cache.NewPubSub(rclient, logger),
		logger: logger,
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.WithField("wallets", cfg.WatchAddresses).Info("wallet watcher starting")
	err = poller.Start(ctx, func(wallet string, events []history.Event) {
		proc.handle(ctx, wallet, events)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("watcher failed")
	}
}
