package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
)

func TestFormat_SentNativeWithZeroDeltaTokenLeg(t *testing.T) {
	// -1.005 SOL with a resolvable destination, plus a token balance that did
	// not move: exactly one native "sent" event.
	tx := newTx(
		[]string{tracked, counterparty, tokenAcctA},
		[]int64{2_000_000_000, 0, 0},
		[]int64{995_000_000, 1_005_000_000, 0},
		withInstructions(nativeTransfer(tracked, counterparty, 1_005_000_000)),
		withTokenBalances(
			[]rpc.TokenBalance{tokenBalance(2, usdcMint, tracked, 42)},
			[]rpc.TokenBalance{tokenBalance(2, usdcMint, tracked, 42)},
		),
	)

	events := NewFormatter(nil).Format(tx, testSig, tracked)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, EventSent, ev.Type)
	assert.Equal(t, "SOL", ev.Asset)
	assert.InDelta(t, 1.005, ev.Amount, 1e-9)
	assert.Equal(t, tracked, ev.From)
	assert.Equal(t, counterparty, ev.To)
	assert.Equal(t, testSig, ev.Signature)
	require.NotNil(t, ev.Time)
}

func TestFormat_ReceivedNative(t *testing.T) {
	tx := newTx(
		[]string{counterparty, tracked},
		[]int64{3_000_000_000, 0},
		[]int64{2_500_000_000, 500_000_000},
		withInstructions(nativeTransfer(counterparty, tracked, 500_000_000)),
	)

	events := NewFormatter(nil).Format(tx, testSig, tracked)
	require.Len(t, events, 1)
	assert.Equal(t, EventReceived, events[0].Type)
	assert.InDelta(t, 0.5, events[0].Amount, 1e-9)
	assert.Equal(t, counterparty, events[0].From)
	assert.Equal(t, tracked, events[0].To)
}

func TestFormat_FailedTransactionEmitsNothing(t *testing.T) {
	tx := newTx(
		[]string{tracked, counterparty},
		[]int64{2_000_000_000, 0},
		[]int64{1_000_000_000, 1_000_000_000},
		withInstructions(nativeTransfer(tracked, counterparty, 1_000_000_000)),
		withError(),
	)

	assert.Empty(t, NewFormatter(nil).Format(tx, testSig, tracked))
}

func TestFormat_MissingMetaEmitsNothing(t *testing.T) {
	f := NewFormatter(nil)
	assert.Empty(t, f.Format(nil, testSig, tracked))

	tx := newTx([]string{tracked}, []int64{0}, []int64{0})
	tx.Meta = nil
	assert.Empty(t, f.Format(tx, testSig, tracked))

	tx = newTx([]string{tracked}, []int64{0}, []int64{0})
	tx.Transaction = nil
	assert.Empty(t, f.Format(tx, testSig, tracked))
}

func TestFormat_DustDeltaFiltered(t *testing.T) {
	// A 5000-lamport fee debit is rent/fee noise, not history.
	tx := newTx(
		[]string{tracked, counterparty},
		[]int64{1_000_000_000, 0},
		[]int64{999_995_000, 5_000},
	)

	assert.Empty(t, NewFormatter(nil).Format(tx, testSig, tracked))
}

func TestFormat_SelfTransferDropped(t *testing.T) {
	tx := newTx(
		[]string{tracked, bystander},
		[]int64{2_000_000_000, 0},
		[]int64{1_000_000_000, 1_000_000_000},
		withInstructions(nativeTransfer(tracked, tracked, 1_000_000_000)),
	)

	assert.Empty(t, NewFormatter(nil).Format(tx, testSig, tracked))
}

func TestFormat_TokenLeg(t *testing.T) {
	tx := newTx(
		[]string{tracked, tokenAcctA, tokenAcctB},
		[]int64{0, 0, 0},
		[]int64{0, 0, 0},
		withInstructions(tokenTransfer(tokenAcctA, tokenAcctB, tracked)),
		withTokenBalances(
			[]rpc.TokenBalance{
				tokenBalance(1, usdcMint, tracked, 10),
				tokenBalance(2, usdcMint, counterparty, 0),
			},
			[]rpc.TokenBalance{
				tokenBalance(1, usdcMint, tracked, 3.5),
				tokenBalance(2, usdcMint, counterparty, 6.5),
			},
		),
	)

	events := NewFormatter(nil).Format(tx, testSig, tracked)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, EventSent, ev.Type)
	assert.Equal(t, "USDC", ev.Asset)
	assert.InDelta(t, 6.5, ev.Amount, 1e-9)
	assert.Equal(t, tracked, ev.From)
	assert.Equal(t, counterparty, ev.To)
}

func TestFormat_UnknownMintPassesThrough(t *testing.T) {
	tx := newTx(
		[]string{tracked, tokenAcctA, tokenAcctB},
		[]int64{0, 0, 0},
		[]int64{0, 0, 0},
		withInstructions(tokenTransfer(tokenAcctB, tokenAcctA, counterparty)),
		withTokenBalances(
			[]rpc.TokenBalance{tokenBalance(2, obscureMint, counterparty, 7)},
			[]rpc.TokenBalance{tokenBalance(1, obscureMint, tracked, 7)},
		),
	)

	events := NewFormatter(nil).Format(tx, testSig, tracked)
	require.Len(t, events, 1)
	assert.Equal(t, obscureMint, events[0].Asset)
	assert.Equal(t, EventReceived, events[0].Type)
}

func TestFormat_NewTokenAccountStartsAtZero(t *testing.T) {
	// No pre-balance entry for the account: the delta is the full post
	// amount.
	tx := newTx(
		[]string{tracked, tokenAcctA, tokenAcctB},
		[]int64{0, 0, 0},
		[]int64{0, 0, 0},
		withInstructions(tokenTransfer(tokenAcctB, tokenAcctA, counterparty)),
		withTokenBalances(
			[]rpc.TokenBalance{tokenBalance(2, usdcMint, counterparty, 12)},
			[]rpc.TokenBalance{tokenBalance(1, usdcMint, tracked, 12)},
		),
	)

	events := NewFormatter(nil).Format(tx, testSig, tracked)
	require.Len(t, events, 1)
	assert.InDelta(t, 12, events[0].Amount, 1e-9)
}

func TestFormat_NativeAndTokenLegsCoexist(t *testing.T) {
	tx := newTx(
		[]string{tracked, counterparty, tokenAcctA, tokenAcctB},
		[]int64{2_000_000_000, 0, 0, 0},
		[]int64{1_000_000_000, 1_000_000_000, 0, 0},
		withInstructions(
			nativeTransfer(tracked, counterparty, 1_000_000_000),
			tokenTransfer(tokenAcctA, tokenAcctB, tracked),
		),
		withTokenBalances(
			[]rpc.TokenBalance{
				tokenBalance(2, usdcMint, tracked, 20),
				tokenBalance(3, usdcMint, counterparty, 0),
			},
			[]rpc.TokenBalance{
				tokenBalance(2, usdcMint, tracked, 15),
				tokenBalance(3, usdcMint, counterparty, 5),
			},
		),
	)

	events := NewFormatter(nil).Format(tx, testSig, tracked)
	require.Len(t, events, 2)

	for _, ev := range events {
		assert.Equal(t, testSig, ev.Signature)
		// Directional invariant: the tracked wallet is exactly one side.
		assert.True(t, (ev.From == tracked) != (ev.To == tracked),
			"tracked wallet must be exactly one side of %+v", ev)
	}
	assert.Equal(t, "SOL", events[0].Asset)
	assert.Equal(t, "USDC", events[1].Asset)
}

func TestFormat_MissingBlockTime(t *testing.T) {
	tx := newTx(
		[]string{counterparty, tracked},
		[]int64{1_000_000_000, 0},
		[]int64{0, 1_000_000_000},
		withInstructions(nativeTransfer(counterparty, tracked, 1_000_000_000)),
		withoutBlockTime(),
	)

	events := NewFormatter(nil).Format(tx, testSig, tracked)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Time)
}

func TestFormat_BlockTimePropagates(t *testing.T) {
	at := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)
	tx := newTx(
		[]string{counterparty, tracked},
		[]int64{1_000_000_000, 0},
		[]int64{0, 1_000_000_000},
		withInstructions(nativeTransfer(counterparty, tracked, 1_000_000_000)),
		withBlockTime(at),
	)

	events := NewFormatter(nil).Format(tx, testSig, tracked)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Time)
	assert.True(t, events[0].Time.Equal(at))
}
