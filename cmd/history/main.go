package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/config"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
)

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		logger.Debug("no .env file found, using system environment variables")
	}
}

// main pages through a wallet's history and prints it grouped by day.
func main() {
	address := flag.String("address", "", "wallet address to inspect")
	pages := flag.Int("pages", 3, "maximum number of pages to fetch")
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	loadEnv(logger)

	if *address == "" {
		fmt.Fprintln(os.Stderr, "usage: history -address <wallet> [-pages n]")
		os.Exit(2)
	}
	if _, err := solana.PublicKeyFromBase58(*address); err != nil {
		fmt.Fprintf(os.Stderr, "invalid wallet address: %v\n", err)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

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

	paginator := history.NewPaginator(fetcher, *address, cfg.PageSize, logger)

	ctx := context.Background()
	events, err := paginator.FetchPage(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		os.Exit(1)
	}
	for i := 1; i < *pages && paginator.HasMore(); i++ {
		if events, err = paginator.LoadMore(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
			os.Exit(1)
		}
	}

	if len(events) == 0 {
		fmt.Println("no transactions found")
		return
	}

	for _, section := range history.GroupByDate(events) {
		fmt.Printf("%s\n", section.Title)
		for _, ev := range section.Events {
			arrow := "->"
			counterparty := ev.To
			if ev.Type == history.EventReceived {
				arrow = "<-"
				counterparty = ev.From
			}
			fmt.Printf("  %-8s %12.6f %-6s %s %s\n", ev.Type, ev.Amount, ev.Asset, arrow, counterparty)
		}
	}

	if paginator.HasMore() {
		fmt.Printf("\nmore history available (cursor %s)\n", paginator.Cursor().LastSignature)
	}
}
