package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
)

// ClickHouseStore persists formatted wallet events for historical queries.
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

// ClickHouseConfig holds connection settings for the event store.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Logger   *logrus.Logger
}

// NewClickHouseStore connects to ClickHouse and verifies the connection.
func NewClickHouseStore(cfg ClickHouseConfig) (*ClickHouseStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	cfg.Logger.WithField("addr", cfg.Addr).Info("connected to ClickHouse")

	return &ClickHouseStore{conn: conn, logger: cfg.Logger}, nil
}

// InsertEvents writes one row per event. Events without a block time are
// stored with a zero timestamp.
func (c *ClickHouseStore) InsertEvents(ctx context.Context, wallet string, events []history.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO wallet_events (
			wallet, signature, type, asset, amount, from_address, to_address, block_time
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, ev := range events {
		var blockTime time.Time
		if ev.Time != nil {
			blockTime = *ev.Time
		}
		if err := batch.Append(
			wallet,
			ev.Signature,
			string(ev.Type),
			ev.Asset,
			ev.Amount,
			ev.From,
			ev.To,
			blockTime,
		); err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert events: %w", err)
	}
	return nil
}

// Ping checks ClickHouse connectivity.
func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the connection.
func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
