package history

import (
	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
)

// Counterparty is the resolved sender and receiver of one asset movement.
// Either side may be ExternalParty when the transaction does not carry enough
// information to attribute it.
type Counterparty struct {
	From string
	To   string
}

// ResolveNative determines the sender and receiver of a SOL movement in tx
// relative to the tracked wallet. A system transfer instruction touching the
// tracked wallet is authoritative; otherwise the largest balance delta among
// the other accounts is taken as the counterparty. Never fails: unresolvable
// sides degrade to ExternalParty.
func ResolveNative(tx *rpc.TransactionResult, tracked string) Counterparty {
	for _, ix := range tx.AllInstructions() {
		if ix.Kind != rpc.InstructionTransfer {
			continue
		}
		if ix.Source == tracked || ix.Destination == tracked {
			return Counterparty{From: ix.Source, To: ix.Destination}
		}
	}
	return resolveNativeByBalances(tx, tracked)
}

// resolveNativeByBalances is the heuristic fallback when no parsed transfer
// instruction names the tracked wallet: attribute the movement to the single
// account with the largest opposing balance delta above the dust threshold.
// Ties keep the first account encountered in account-key order.
func resolveNativeByBalances(tx *rpc.TransactionResult, tracked string) Counterparty {
	idx := tx.AccountIndex(tracked)
	meta := tx.Meta
	if idx < 0 || meta == nil || idx >= len(meta.PreBalances) || idx >= len(meta.PostBalances) {
		return Counterparty{From: ExternalParty, To: ExternalParty}
	}

	delta := meta.PostBalances[idx] - meta.PreBalances[idx]
	keys := tx.Transaction.Message.AccountKeys

	if delta < 0 {
		// Funds left the wallet; the biggest gainer is the receiver.
		to := ExternalParty
		var best int64
		for i := range keys {
			if i == idx || i >= len(meta.PreBalances) || i >= len(meta.PostBalances) {
				continue
			}
			d := meta.PostBalances[i] - meta.PreBalances[i]
			if d > constants.DustThresholdLamports && d > best {
				best = d
				to = keys[i].Pubkey
			}
		}
		return Counterparty{From: tracked, To: to}
	}

	// Funds arrived (or nothing moved); the biggest loser is the sender.
	from := ExternalParty
	var best int64
	for i := range keys {
		if i == idx || i >= len(meta.PreBalances) || i >= len(meta.PostBalances) {
			continue
		}
		d := meta.PreBalances[i] - meta.PostBalances[i]
		if d > constants.DustThresholdLamports && d > best {
			best = d
			from = keys[i].Pubkey
		}
	}
	return Counterparty{From: from, To: tracked}
}

// ResolveToken determines the sender and receiver of an SPL token movement in
// tx relative to the tracked wallet. Token transfer instructions move between
// token accounts, so each side is mapped back to its owning wallet via the
// pre/post token-balance lists. The tracked wallet counts as sender when it
// owns the source token account or is the transfer authority (delegated and
// smart-wallet transfers sign with an authority that is not the literal
// owner).
func ResolveToken(tx *rpc.TransactionResult, tracked string) Counterparty {
	var transfer *rpc.Instruction
	for _, ix := range tx.AllInstructions() {
		if ix.Kind == rpc.InstructionTokenTransfer || ix.Kind == rpc.InstructionTokenTransferChecked {
			transfer = &ix
			break
		}
	}
	if transfer == nil {
		// Token balances changed with no transfer instruction (e.g. a mint);
		// nothing to attribute.
		return Counterparty{From: ExternalParty, To: ExternalParty}
	}

	sourceOwner := tokenAccountOwner(tx, transfer.Source)
	destOwner := tokenAccountOwner(tx, transfer.Destination)

	if sourceOwner == tracked || transfer.Authority == tracked {
		return Counterparty{From: tracked, To: fallbackParty(destOwner, transfer.Destination)}
	}
	return Counterparty{From: fallbackParty(sourceOwner, transfer.Source), To: tracked}
}

// tokenAccountOwner maps a token-account address to its owning wallet by
// locating the account's index and scanning the pre-balance list first, then
// the post-balance list. Returns "" when the owner cannot be determined.
func tokenAccountOwner(tx *rpc.TransactionResult, tokenAccount string) string {
	idx := tx.AccountIndex(tokenAccount)
	if idx < 0 || tx.Meta == nil {
		return ""
	}
	for _, tb := range tx.Meta.PreTokenBalances {
		if tb.AccountIndex == idx && tb.Owner != "" {
			return tb.Owner
		}
	}
	for _, tb := range tx.Meta.PostTokenBalances {
		if tb.AccountIndex == idx && tb.Owner != "" {
			return tb.Owner
		}
	}
	return ""
}

// fallbackParty prefers the resolved owner, then the literal token-account
// address, then the external sentinel.
func fallbackParty(owner, literal string) string {
	if owner != "" {
		return owner
	}
	if literal != "" {
		return literal
	}
	return ExternalParty
}
