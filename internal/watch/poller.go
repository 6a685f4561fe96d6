package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/storage"
)

// signatureBatchSize caps how many new signatures one poll picks up per
// wallet. Kept small to stay under public RPC rate limits.
const signatureBatchSize = 10

// Poller watches a set of wallet addresses for new transactions and hands the
// formatted events to a handler. Each wallet keeps an "until" watermark at its
// newest handled signature, so a poll only picks up activity since the
// previous one.
type Poller struct {
	client       history.LedgerClient
	formatter    *history.Formatter
	addresses    []string
	pollInterval time.Duration
	logger       *logrus.Logger

	mu             sync.RWMutex
	lastSignatures map[string]string
	running        bool
}

// PollerConfig holds configuration for the wallet poller.
type PollerConfig struct {
	Client       history.LedgerClient
	Addresses    []string
	PollInterval time.Duration
	Logger       *logrus.Logger
}

// NewPoller creates a wallet poller.
func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Poller{
		client:         cfg.Client,
		formatter:      history.NewFormatter(cfg.Logger),
		addresses:      cfg.Addresses,
		pollInterval:   cfg.PollInterval,
		logger:         cfg.Logger,
		lastSignatures: make(map[string]string),
	}
}

// Start polls until the context is cancelled. Poll errors for one wallet are
// logged and do not stop the loop.
func (p *Poller) Start(ctx context.Context, handler storage.EventHandler) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.WithFields(logrus.Fields{
		"interval": p.pollInterval,
		"wallets":  len(p.addresses),
	}).Info("starting wallet polling")

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
			return ctx.Err()

		case <-ticker.C:
			for _, address := range p.addresses {
				if err := p.poll(ctx, address, handler); err != nil {
					p.logger.WithError(err).WithField("wallet", address).Error("poll error")
				}
			}
		}
	}
}

// poll fetches signatures newer than the wallet's watermark and formats them.
func (p *Poller) poll(ctx context.Context, address string, handler storage.EventHandler) error {
	p.mu.RLock()
	until := p.lastSignatures[address]
	p.mu.RUnlock()

	sigResp, err := p.client.GetSignaturesForAddress(ctx, address, rpc.SignaturesOpts{
		Limit: signatureBatchSize,
		Until: until,
	})
	if err != nil {
		return fmt.Errorf("failed to get signatures: %w", err)
	}

	sigs := sigResp.Result
	if len(sigs) == 0 {
		return nil
	}

	p.logger.WithFields(logrus.Fields{
		"wallet": address,
		"count":  len(sigs),
	}).Info("found new signatures")

	// Walk oldest first so handlers observe events in chain order. The
	// watermark only advances past signatures whose details were fetched, so
	// a transient fetch failure stops the walk and the next poll retries from
	// the failed signature instead of skipping it.
	var events []history.Event
	watermark := until
	for i := len(sigs) - 1; i >= 0; i-- {
		sig := sigs[i]
		if sig.Err != nil {
			watermark = sig.Signature
			continue
		}

		txResp, err := p.client.GetParsedTransaction(ctx, sig.Signature)
		if err != nil {
			p.logger.WithError(err).WithField("signature", short(sig.Signature)).Warn("failed to fetch transaction")
			break
		}
		watermark = sig.Signature
		if txResp.Result == nil {
			continue
		}

		events = append(events, p.formatter.Format(txResp.Result, sig.Signature, address)...)
	}

	if watermark != until {
		p.mu.Lock()
		p.lastSignatures[address] = watermark
		p.mu.Unlock()
	}

	if len(events) > 0 {
		handler(address, events)
	}
	return nil
}

// short truncates a signature for log output.
func short(sig string) string {
	if len(sig) > 8 {
		return sig[:8]
	}
	return sig
}

// Stop marks the poller stopped. Cancelling the Start context does the actual
// shutdown.
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	return nil
}
