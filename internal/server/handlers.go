package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/prices"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/storage"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Fetcher   history.PageFetcher // Page fetcher over the Solana RPC client
	Annotator *prices.Annotator   // USD price annotator (optional)
	Events    storage.EventCache  // Redis-backed recent-events cache (optional)
	Prices    storage.PriceCache  // Redis-backed price cache (optional)
	DevMode   bool                // Enable detailed error responses in development
	Logger    *logrus.Logger      // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// walletParam validates the :address path parameter as a base58 public key.
func walletParam(c echo.Context) (string, error) {
	address := strings.TrimSpace(c.Param("address"))
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return "", err
	}
	return address, nil
}

// WalletTransactions returns one page of formatted history for a wallet.
// Accepts limit (default 20) and before (a signature cursor from a previous
// page) query parameters.
func (h *Handlers) WalletTransactions(c echo.Context) error {
	address, err := walletParam(c)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid wallet address", map[string]any{"address": "must be a base58 public key"})
	}

	limit := constants.DefaultPageSize
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > constants.MaxPageSize {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 50"})
	}

	before := strings.TrimSpace(c.QueryParam("before"))
	if before != "" {
		raw, err := base58.Decode(before)
		if err != nil || len(raw) != 64 {
			return h.err(c, http.StatusBadRequest, "invalid cursor", map[string]any{"before": "must be a base58 signature"})
		}
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	page, err := h.Fetcher.FetchPage(ctx, address, before, limit)
	if err != nil {
		h.Logger.WithError(err).WithField("wallet", address).Error("failed to fetch transactions")
		return h.err(c, http.StatusBadGateway, "failed to fetch transactions", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, TransactionsResponse{
		Events:   h.annotate(ctx, page.Events),
		Sections: history.GroupByDate(page.Events),
		Cursor: history.Cursor{
			LastSignature: page.LastSignature,
			HasMore:       page.Count > 0,
		},
	})
}

// WalletLatest returns the single newest event for a wallet, or a null event
// when the wallet has no displayable history on the first page.
func (h *Handlers) WalletLatest(c echo.Context) error {
	address, err := walletParam(c)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid wallet address", map[string]any{"address": "must be a base58 public key"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	page, err := h.Fetcher.FetchPage(ctx, address, "", constants.LatestPageSize)
	if err != nil {
		h.Logger.WithError(err).WithField("wallet", address).Error("failed to fetch latest transaction")
		return h.err(c, http.StatusBadGateway, "failed to fetch latest transaction", map[string]any{"err": err.Error()})
	}

	resp := LatestTransactionResponse{}
	if len(page.Events) > 0 {
		priced := h.annotate(ctx, page.Events[:1])
		resp.Event = &priced[0]
	}
	return c.JSON(http.StatusOK, resp)
}

// WalletRecent returns recently observed events for a wallet from the cache
// maintained by the watcher.
func (h *Handlers) WalletRecent(c echo.Context) error {
	if h.Events == nil {
		return h.err(c, http.StatusNotFound, "recent events are not configured", nil)
	}

	address, err := walletParam(c)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid wallet address", map[string]any{"address": "must be a base58 public key"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Events.GetRecentEvents(ctx, address, constants.MaxRecentEvents)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get recent events", nil)
	}
	return c.JSON(http.StatusOK, RecentEventsResponse{Items: items})
}

// Price returns the cached price for a token symbol, falling back to the
// last-known-good entry when the fresh one has expired.
func (h *Handlers) Price(c echo.Context) error {
	if h.Prices == nil {
		return h.err(c, http.StatusNotFound, "prices are not configured", nil)
	}

	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		return h.err(c, http.StatusBadRequest, "invalid symbol", nil)
	}
	symbol = strings.ToUpper(symbol)

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	price, err := h.Prices.GetPrice(ctx, symbol)
	if errors.Is(err, storage.ErrPriceNotFound) {
		price, err = h.Prices.LastPrice(ctx, symbol)
	}
	if errors.Is(err, storage.ErrPriceNotFound) {
		return h.err(c, http.StatusNotFound, "price not found", nil)
	}
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get price", nil)
	}
	return c.JSON(http.StatusOK, PriceResponse{Symbol: symbol, Price: price})
}

// annotate attaches USD values when the annotator is configured, otherwise
// wraps the events unpriced so the response shape stays stable.
func (h *Handlers) annotate(ctx context.Context, events []history.Event) []prices.PricedEvent {
	if h.Annotator != nil {
		return h.Annotator.Annotate(ctx, events)
	}
	out := make([]prices.PricedEvent, len(events))
	for i, ev := range events {
		out[i] = prices.PricedEvent{Event: ev}
	}
	return out
}
