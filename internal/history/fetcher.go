package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
)

// LedgerClient is the slice of the RPC client the fetcher needs.
type LedgerClient interface {
	GetSignaturesForAddress(ctx context.Context, address string, opts rpc.SignaturesOpts) (*rpc.SignaturesResponse, error)
	GetParsedTransaction(ctx context.Context, signature string) (*rpc.TransactionResponse, error)
}

// Page is the result of fetching one page of wallet history.
type Page struct {
	Events []Event

	// LastSignature is the oldest signature in the fetched page, used as the
	// "before" cursor for the next page. Empty when the page was empty.
	LastSignature string

	// Count is the number of signatures returned by the node, which can
	// exceed len(Events) when transactions yield no displayable legs.
	Count int
}

// Fetcher resolves one page of signatures for a wallet into formatted events.
// Per-signature transaction fetches fan out concurrently and are joined in
// signature-list order; a shared rate limiter keeps the fan-out under public
// RPC limits.
type Fetcher struct {
	client    LedgerClient
	formatter *Formatter
	limiter   *rate.Limiter
	logger    *logrus.Logger
}

// FetcherConfig holds configuration for a Fetcher.
type FetcherConfig struct {
	Client LedgerClient

	// RequestsPerSecond throttles transaction detail fetches. Zero disables
	// throttling.
	RequestsPerSecond float64
	Logger            *logrus.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Fetcher{
		client:    cfg.Client,
		formatter: NewFormatter(cfg.Logger),
		limiter:   rate.NewLimiter(limit, 1),
		logger:    cfg.Logger,
	}
}

// FetchPage fetches up to limit signatures for address strictly older than
// before (newest page when before is empty) and formats each resolvable
// transaction into events. Output order follows the node's newest-first
// signature order regardless of fetch completion order.
func (f *Fetcher) FetchPage(ctx context.Context, address, before string, limit int) (*Page, error) {
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}

	sigResp, err := f.client.GetSignaturesForAddress(ctx, address, rpc.SignaturesOpts{
		Limit:  limit,
		Before: before,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}

	sigs := sigResp.Result
	page := &Page{Count: len(sigs)}
	if len(sigs) == 0 {
		return page, nil
	}
	page.LastSignature = sigs[len(sigs)-1].Signature

	f.logger.WithFields(logrus.Fields{
		"address": short(address),
		"count":   len(sigs),
	}).Debug("fetching transaction details")

	// Fan out detail fetches, join by input index so output order matches the
	// signature list. Any detail-fetch failure fails the whole page: a partial
	// page would advance the cursor past the missing transaction and lose it,
	// while a failed page leaves the caller's cursor in place for a retry.
	results := make([]*rpc.TransactionResult, len(sigs))
	errs := make([]error, len(sigs))
	var wg sync.WaitGroup
	for i, sig := range sigs {
		if sig.Err != nil {
			// Failed on-chain; never contributes events.
			continue
		}
		wg.Add(1)
		go func(i int, signature string) {
			defer wg.Done()
			if err := f.limiter.Wait(ctx); err != nil {
				errs[i] = err
				return
			}
			txResp, err := f.client.GetParsedTransaction(ctx, signature)
			if err != nil {
				f.logger.WithError(err).WithField("signature", short(signature)).Warn("failed to fetch transaction")
				errs[i] = fmt.Errorf("failed to fetch transaction %s: %w", signature, err)
				return
			}
			results[i] = txResp.Result
		}(i, sig.Signature)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	for i, sig := range sigs {
		if results[i] == nil {
			continue
		}
		page.Events = append(page.Events, f.formatter.Format(results[i], sig.Signature, address)...)
	}

	return page, nil
}
