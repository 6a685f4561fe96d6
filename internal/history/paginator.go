package history

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
)

// PageFetcher fetches one page of wallet history.
type PageFetcher interface {
	FetchPage(ctx context.Context, address, before string, limit int) (*Page, error)
}

// Paginator drives repeated page fetches for one wallet, chaining pages via a
// before-signature cursor and accumulating events client-side. One Paginator
// owns one logical pagination flow: overlapping LoadMore calls while a fetch
// is in flight are no-ops, and a failed fetch leaves the accumulated events
// and cursor exactly as they were so a retry is safe.
type Paginator struct {
	fetcher  PageFetcher
	address  string
	pageSize int
	logger   *logrus.Logger

	mu      sync.Mutex
	events  []Event
	cursor  Cursor
	loading bool
}

// NewPaginator creates a Paginator for the given wallet address.
func NewPaginator(fetcher PageFetcher, address string, pageSize int, logger *logrus.Logger) *Paginator {
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Paginator{
		fetcher:  fetcher,
		address:  address,
		pageSize: pageSize,
		logger:   logger,
		cursor:   Cursor{HasMore: true},
	}
}

// FetchPage fetches the next page of history. With reset it discards the
// accumulated events and cursor and fetches the newest page; otherwise it
// fetches the page strictly older than the cursor and appends. Returns the
// full accumulated event list. Calls made while a fetch is already in flight,
// or after the history is exhausted, return the current list unchanged.
func (p *Paginator) FetchPage(ctx context.Context, reset bool) ([]Event, error) {
	p.mu.Lock()
	if p.loading || (!reset && !p.cursor.HasMore) {
		events := snapshot(p.events)
		p.mu.Unlock()
		return events, nil
	}
	before := p.cursor.LastSignature
	if reset {
		before = ""
	}
	p.loading = true
	p.mu.Unlock()

	page, err := p.fetcher.FetchPage(ctx, p.address, before, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false

	if err != nil {
		// Accumulated events and cursor stay intact so the caller can retry.
		p.logger.WithError(err).WithField("address", short(p.address)).Warn("page fetch failed")
		return nil, err
	}

	if reset {
		p.events = page.Events
	} else {
		p.events = append(p.events, page.Events...)
	}
	p.cursor = Cursor{
		LastSignature: page.LastSignature,
		HasMore:       page.Count > 0,
	}
	if !reset && page.LastSignature == "" {
		// An empty continuation page keeps the old cursor position.
		p.cursor.LastSignature = before
	}

	return snapshot(p.events), nil
}

// LoadMore fetches the next older page.
func (p *Paginator) LoadMore(ctx context.Context) ([]Event, error) {
	return p.FetchPage(ctx, false)
}

// Events returns a copy of the accumulated event list.
func (p *Paginator) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshot(p.events)
}

// HasMore reports whether older pages may remain.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor.HasMore
}

// IsLoading reports whether a fetch is in flight.
func (p *Paginator) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Cursor returns the current pagination cursor.
func (p *Paginator) Cursor() Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func snapshot(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	return out
}
