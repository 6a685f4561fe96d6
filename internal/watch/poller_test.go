package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
)

const watchedWallet = "WatchedWallet1111111111111111111111111111"

type fakeLedger struct {
	mu       sync.Mutex
	sigs     []rpc.SignatureInfo
	txs      map[string]*rpc.TransactionResult
	failOnce map[string]error
	untilArg []string
}

func (f *fakeLedger) GetSignaturesForAddress(ctx context.Context, address string, opts rpc.SignaturesOpts) (*rpc.SignaturesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.untilArg = append(f.untilArg, opts.Until)
	// Return the signatures strictly newer than the watermark, as the node
	// does for "until".
	for i, sig := range f.sigs {
		if sig.Signature == opts.Until {
			return &rpc.SignaturesResponse{Result: f.sigs[:i]}, nil
		}
	}
	return &rpc.SignaturesResponse{Result: f.sigs}, nil
}

func (f *fakeLedger) GetParsedTransaction(ctx context.Context, signature string) (*rpc.TransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOnce[signature]; ok {
		delete(f.failOnce, signature)
		return nil, err
	}
	return &rpc.TransactionResponse{Result: f.txs[signature]}, nil
}

func transferTo(wallet string, lamports int64) *rpc.TransactionResult {
	return &rpc.TransactionResult{
		BlockTime: time.Now().Unix(),
		Meta: &rpc.TransactionMeta{
			PreBalances:  []int64{lamports, 0},
			PostBalances: []int64{0, lamports},
		},
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{
				AccountKeys: []rpc.AccountKey{{Pubkey: "SenderWallet"}, {Pubkey: wallet}},
				Instructions: []rpc.Instruction{{
					Kind:        rpc.InstructionTransfer,
					Source:      "SenderWallet",
					Destination: wallet,
					Lamports:    uint64(lamports),
				}},
			},
		},
	}
}

func TestPoller_EmitsNewEventsOldestFirst(t *testing.T) {
	ledger := &fakeLedger{
		// Newest first, as the node returns them.
		sigs: []rpc.SignatureInfo{
			{Signature: "sigNew"},
			{Signature: "sigOld"},
		},
		txs: map[string]*rpc.TransactionResult{
			"sigNew": transferTo(watchedWallet, 2_000_000_000),
			"sigOld": transferTo(watchedWallet, 1_000_000_000),
		},
	}

	poller := NewPoller(PollerConfig{
		Client:       ledger,
		Addresses:    []string{watchedWallet},
		PollInterval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []history.Event
	handled := make(chan struct{})

	go func() {
		err := poller.Start(ctx, func(wallet string, events []history.Event) {
			assert.Equal(t, watchedWallet, wallet)
			mu.Lock()
			got = append(got, events...)
			mu.Unlock()
			select {
			case handled <- struct{}{}:
			default:
			}
		})
		assert.True(t, errors.Is(err, context.Canceled))
	}()

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never delivered events")
	}

	mu.Lock()
	require.Len(t, got, 2)
	// Chain order: the older transaction is delivered first.
	assert.InDelta(t, 1.0, got[0].Amount, 1e-9)
	assert.InDelta(t, 2.0, got[1].Amount, 1e-9)
	mu.Unlock()

	// Let at least one more poll run, then verify the watermark advanced to
	// the newest signature.
	assert.Eventually(t, func() bool {
		ledger.mu.Lock()
		defer ledger.mu.Unlock()
		return len(ledger.untilArg) >= 2 && ledger.untilArg[len(ledger.untilArg)-1] == "sigNew"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
}

func TestPoller_RetriesTransientFetchFailure(t *testing.T) {
	// The newest transaction's detail fetch fails on the first poll. The
	// watermark must stay behind it so the next poll picks it up again.
	ledger := &fakeLedger{
		sigs: []rpc.SignatureInfo{
			{Signature: "sigNew"},
			{Signature: "sigOld"},
		},
		txs: map[string]*rpc.TransactionResult{
			"sigNew": transferTo(watchedWallet, 2_000_000_000),
			"sigOld": transferTo(watchedWallet, 1_000_000_000),
		},
		failOnce: map[string]error{"sigNew": errors.New("rpc unreachable")},
	}

	poller := NewPoller(PollerConfig{
		Client:       ledger,
		Addresses:    []string{watchedWallet},
		PollInterval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []history.Event

	go func() {
		err := poller.Start(ctx, func(wallet string, events []history.Event) {
			mu.Lock()
			got = append(got, events...)
			mu.Unlock()
		})
		assert.True(t, errors.Is(err, context.Canceled))
	}()

	// Both events arrive despite the transient failure, older one first.
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.InDelta(t, 1.0, got[0].Amount, 1e-9)
	assert.InDelta(t, 2.0, got[1].Amount, 1e-9)
	mu.Unlock()

	assert.Eventually(t, func() bool {
		ledger.mu.Lock()
		defer ledger.mu.Unlock()
		return ledger.untilArg[len(ledger.untilArg)-1] == "sigNew"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
}

func TestPoller_RejectsDoubleStart(t *testing.T) {
	poller := NewPoller(PollerConfig{
		Client:       &fakeLedger{},
		Addresses:    nil,
		PollInterval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nop := func(string, []history.Event) {}
	errCh := make(chan error, 2)
	go func() { errCh <- poller.Start(ctx, nop) }()
	go func() { errCh <- poller.Start(ctx, nop) }()

	// Whichever Start loses the race returns immediately.
	require.EqualError(t, <-errCh, "poller already running")

	cancel()
	assert.True(t, errors.Is(<-errCh, context.Canceled))
}
