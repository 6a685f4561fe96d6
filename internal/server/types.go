package server

import (
	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/prices"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"`
}

// TransactionsResponse is one page of wallet history: USD-annotated events in
// fetch order, the same events bucketed by calendar day, and the cursor for
// the next page.
type TransactionsResponse struct {
	Events   []prices.PricedEvent `json:"events"`
	Sections []history.Section    `json:"sections"`
	Cursor   history.Cursor       `json:"cursor"`
}

// LatestTransactionResponse carries the newest event for a wallet, if any.
type LatestTransactionResponse struct {
	Event *prices.PricedEvent `json:"event"`
}

// RecentEventsResponse carries cached recent events for a wallet.
type RecentEventsResponse struct {
	Items []history.Event `json:"items"`
}

// PriceResponse represents token price information
type PriceResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}
