package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/cache"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/config"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
)

// main tails wallet events published by the watcher. With -wallet it follows
// a single wallet's channel, otherwise the firehose.
func main() {
	wallet := flag.String("wallet", "", "wallet address to follow (default: all wallets)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down subscriber")
		cancel()
	}()

	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: 0})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	channel := constants.PubSubChannelEvents
	if *wallet != "" {
		channel = constants.PubSubChannelWalletPrefix + *wallet
	}

	pubsub := cache.NewPubSub(rclient, logger)
	err := pubsub.Subscribe(ctx, channel, func(ev *history.Event) {
		logger.WithFields(logrus.Fields{
			"signature": ev.Signature,
			"type":      ev.Type,
			"asset":     ev.Asset,
			"amount":    ev.Amount,
			"from":      ev.From,
			"to":        ev.To,
		}).Info("event")
	})
	if err != nil && ctx.Err() == nil {
		logger.WithError(err).Fatal("subscription failed")
	}
}
