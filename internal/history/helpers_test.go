package history

import (
	"time"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
)

// Common fixture addresses. The resolver and formatter treat addresses as
// opaque strings, so readable names keep the tests legible.
const (
	tracked      = "TrackedWallet11111111111111111111111111111"
	counterparty = "CounterpartyWallet111111111111111111111111"
	bystander    = "BystanderWallet111111111111111111111111111"
	tokenAcctA   = "TokenAccountA1111111111111111111111111111"
	tokenAcctB   = "TokenAccountB1111111111111111111111111111"
	usdcMint     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	obscureMint  = "ObscureMint1111111111111111111111111111111"
	testSig      = "TestSignature11111111111111111111111111111"
)

type txOpt func(*rpc.TransactionResult)

// newTx builds a parsed transaction fixture with the given account keys and
// native balances.
func newTx(keys []string, pre, post []int64, opts ...txOpt) *rpc.TransactionResult {
	accountKeys := make([]rpc.AccountKey, len(keys))
	for i, k := range keys {
		accountKeys[i] = rpc.AccountKey{Pubkey: k}
	}
	tx := &rpc.TransactionResult{
		BlockTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix(),
		Meta: &rpc.TransactionMeta{
			PreBalances:  pre,
			PostBalances: post,
		},
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{AccountKeys: accountKeys},
		},
	}
	for _, opt := range opts {
		opt(tx)
	}
	return tx
}

func withInstructions(ixs ...rpc.Instruction) txOpt {
	return func(tx *rpc.TransactionResult) {
		tx.Transaction.Message.Instructions = ixs
	}
}

func withInnerInstructions(ixs ...rpc.Instruction) txOpt {
	return func(tx *rpc.TransactionResult) {
		tx.Meta.InnerInstructions = append(tx.Meta.InnerInstructions, rpc.InnerInstructionGroup{
			Index:        0,
			Instructions: ixs,
		})
	}
}

func withTokenBalances(pre, post []rpc.TokenBalance) txOpt {
	return func(tx *rpc.TransactionResult) {
		tx.Meta.PreTokenBalances = pre
		tx.Meta.PostTokenBalances = post
	}
}

func withError() txOpt {
	return func(tx *rpc.TransactionResult) {
		tx.Meta.Err = map[string]any{"InstructionError": []any{0, "Custom"}}
	}
}

func withBlockTime(t time.Time) txOpt {
	return func(tx *rpc.TransactionResult) {
		tx.BlockTime = t.Unix()
	}
}

func withoutBlockTime() txOpt {
	return func(tx *rpc.TransactionResult) {
		tx.BlockTime = 0
	}
}

func nativeTransfer(source, destination string, lamports uint64) rpc.Instruction {
	return rpc.Instruction{
		Kind:        rpc.InstructionTransfer,
		Source:      source,
		Destination: destination,
		Lamports:    lamports,
	}
}

func tokenTransfer(source, destination, authority string) rpc.Instruction {
	return rpc.Instruction{
		Kind:        rpc.InstructionTokenTransfer,
		Source:      source,
		Destination: destination,
		Authority:   authority,
	}
}

func tokenBalance(accountIndex int, mint, owner string, uiAmount float64) rpc.TokenBalance {
	return rpc.TokenBalance{
		AccountIndex:  accountIndex,
		Mint:          mint,
		Owner:         owner,
		UITokenAmount: rpc.TokenAmount{UIAmount: uiAmount},
	}
}
