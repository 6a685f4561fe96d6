package prices

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/storage"
)

// PriceLookup is the slice of the price client the annotator needs.
type PriceLookup interface {
	GetPrices(ctx context.Context, mints []string) (map[string]float64, error)
}

// PricedEvent is an Event with an optional USD valuation attached. The
// valuation is a display-only merge; the underlying event is never modified.
type PricedEvent struct {
	history.Event
	UsdValue *float64 `json:"usd_value"`
}

// Annotator attaches USD values to events. Price lookups are best-effort:
// every failure path degrades to an unpriced event, never an error.
type Annotator struct {
	client PriceLookup
	cache  storage.PriceCache
	logger *logrus.Logger
}

// NewAnnotator creates an Annotator. The cache is optional; without it every
// call goes to the price API.
func NewAnnotator(client PriceLookup, cache storage.PriceCache, logger *logrus.Logger) *Annotator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Annotator{client: client, cache: cache, logger: logger}
}

// Annotate returns one PricedEvent per input event, in input order. Prices
// are read through the cache first; misses are batched into a single API
// call. When the API is unreachable the last-known-good cache entry is used,
// and events whose asset cannot be priced at all carry a nil UsdValue.
func (a *Annotator) Annotate(ctx context.Context, events []history.Event) []PricedEvent {
	assets := make([]string, 0, 4)
	seen := make(map[string]bool)
	for _, ev := range events {
		if !seen[ev.Asset] {
			seen[ev.Asset] = true
			assets = append(assets, ev.Asset)
		}
	}

	priceBySymbol := make(map[string]float64, len(assets))
	var missing []string
	for _, asset := range assets {
		if a.cache != nil {
			if p, err := a.cache.GetPrice(ctx, asset); err == nil {
				priceBySymbol[asset] = p
				continue
			}
		}
		missing = append(missing, asset)
	}

	if len(missing) > 0 && a.client != nil {
		a.fetchMissing(ctx, missing, priceBySymbol)
	}

	out := make([]PricedEvent, len(events))
	for i, ev := range events {
		priced := PricedEvent{Event: ev}
		if p, ok := priceBySymbol[ev.Asset]; ok {
			v := p * ev.Amount
			priced.UsdValue = &v
		}
		out[i] = priced
	}
	return out
}

func (a *Annotator) fetchMissing(ctx context.Context, symbols []string, priceBySymbol map[string]float64) {
	mints := make([]string, len(symbols))
	for i, symbol := range symbols {
		mints[i] = mintFor(symbol)
	}

	fetched, err := a.client.GetPrices(ctx, mints)
	if err != nil {
		a.logger.WithError(err).Warn("price lookup failed, falling back to last known prices")
		if a.cache == nil {
			return
		}
		for _, symbol := range symbols {
			if p, lastErr := a.cache.LastPrice(ctx, symbol); lastErr == nil {
				priceBySymbol[symbol] = p
			}
		}
		return
	}

	for i, symbol := range symbols {
		p, ok := fetched[mints[i]]
		if !ok {
			continue
		}
		priceBySymbol[symbol] = p
		if a.cache != nil {
			if err := a.cache.SetPrice(ctx, symbol, p); err != nil {
				a.logger.WithError(err).WithField("symbol", symbol).Debug("failed to cache price")
			}
		}
	}
}

// mintFor maps a display symbol back to its mint. Unrecognized assets are
// already raw mint addresses and pass through unchanged.
func mintFor(symbol string) string {
	if mint, ok := constants.TokenMints[symbol]; ok {
		return mint
	}
	return symbol
}
