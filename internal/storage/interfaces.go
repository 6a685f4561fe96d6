package storage

import (
	"context"
	"errors"
	"io"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
)

// ErrPriceNotFound is returned by PriceCache lookups that miss.
var ErrPriceNotFound = errors.New("price not found")

// PriceCache defines the interface for caching token prices.
type PriceCache interface {
	// GetPrice returns the fresh cached price for a symbol, or
	// ErrPriceNotFound once the entry has expired.
	GetPrice(ctx context.Context, symbol string) (float64, error)

	// LastPrice returns the last price ever cached for a symbol, regardless
	// of age. Used as a fallback when the price API is unreachable.
	LastPrice(ctx context.Context, symbol string) (float64, error)

	// SetPrice stores a price under both the fresh and last-known-good keys.
	SetPrice(ctx context.Context, symbol string, price float64) error
}

// EventCache defines the interface for caching recent wallet events.
type EventCache interface {
	// AddRecentEvents prepends events to a wallet's recent-events list.
	AddRecentEvents(ctx context.Context, wallet string, events []history.Event) error

	// GetRecentEvents returns the most recent cached events for a wallet.
	GetRecentEvents(ctx context.Context, wallet string, limit int64) ([]history.Event, error)

	// Ping checks if the cache is reachable.
	Ping(ctx context.Context) error
}

// EventStore defines the interface for persistent event storage.
type EventStore interface {
	// InsertEvents persists formatted events for a wallet.
	InsertEvents(ctx context.Context, wallet string, events []history.Event) error

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	io.Closer
}

// EventPublisher defines the interface for real-time event distribution.
type EventPublisher interface {
	// PublishEvents publishes events for a wallet to live subscribers.
	PublishEvents(ctx context.Context, wallet string, events []history.Event) error
}

// EventHandler is a function that processes newly observed wallet events.
type EventHandler func(wallet string, events []history.Event)
