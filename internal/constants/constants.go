package constants

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Chain units
const (
	// LamportsPerSOL is the number of base units in one SOL.
	LamportsPerSOL = 1_000_000_000

	// DustThresholdLamports excludes rent-exemption noise and fee dust from
	// native balance deltas. Deltas at or below this are never emitted.
	DustThresholdLamports = 5_000
)

// Pagination
const (
	// DefaultPageSize is the number of signatures fetched per history page.
	DefaultPageSize = 20

	// LatestPageSize is used for "newest transaction only" queries.
	LatestPageSize = 1

	MaxPageSize = 50
)

// Redis keys
const (
	RedisKeyRecentPrefix    = "wallet:recent:"
	RedisKeyPricePrefix     = "price:"
	RedisKeyPriceLastPrefix = "price:last:"
)

// Redis Pub/Sub channels
const (
	PubSubChannelEvents       = "events:all"
	PubSubChannelWalletPrefix = "events:wallet:"
)

// Limits
const (
	MaxRecentEvents = 100

	// PriceCacheTTL bounds how long a fresh price entry is served before the
	// annotator goes back to the price API.
	PriceCacheTTL = 60 * time.Second
)

// Program addresses referenced when classifying parsed instructions.
var (
	SystemProgramID = solana.SystemProgramID.String()
	TokenProgramID  = solana.TokenProgramID.String()
)

// NativeAsset is the asset tag used for SOL balance changes.
const NativeAsset = "SOL"

// WrappedSOLMint is the mint used to price the native asset.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// TokenSymbols maps the mints this wallet product recognizes to display
// symbols. Unrecognized mints pass through as raw mint addresses.
var TokenSymbols = map[string]string{
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
}

// TokenMints is the reverse of TokenSymbols, used for price lookups.
var TokenMints = map[string]string{
	"SOL":  WrappedSOLMint,
	"USDC": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"USDT": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
}
