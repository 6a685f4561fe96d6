package history

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/rpc"
)

// Formatter converts raw parsed transactions into Events for one tracked
// wallet.
type Formatter struct {
	logger *logrus.Logger
}

// NewFormatter creates a Formatter. A nil logger gets a default.
func NewFormatter(logger *logrus.Logger) *Formatter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Formatter{logger: logger}
}

// Format emits zero or more events for the tracked wallet from one raw
// transaction: one for the native SOL leg when its delta clears the dust
// threshold, and one per token balance owned by the wallet that changed.
// Failed transactions and transactions without balance metadata contribute
// nothing. Format never returns an error; anomalies inside a transaction are
// absorbed and logged.
func (f *Formatter) Format(tx *rpc.TransactionResult, signature string, tracked string) []Event {
	if tx == nil || tx.Meta == nil || tx.Transaction == nil {
		f.logger.WithField("signature", short(signature)).Debug("skipping transaction without metadata")
		return nil
	}
	if tx.Meta.Err != nil {
		f.logger.WithField("signature", short(signature)).Debug("skipping failed transaction")
		return nil
	}

	eventTime := blockTime(tx)
	var events []Event

	if ev, ok := f.nativeLeg(tx, signature, tracked, eventTime); ok {
		events = append(events, ev)
	}
	events = append(events, f.tokenLegs(tx, signature, tracked, eventTime)...)
	return events
}

// nativeLeg extracts the SOL balance change for the tracked wallet, if any.
func (f *Formatter) nativeLeg(tx *rpc.TransactionResult, signature, tracked string, eventTime *time.Time) (Event, bool) {
	meta := tx.Meta
	idx := tx.AccountIndex(tracked)
	if idx < 0 || idx >= len(meta.PreBalances) || idx >= len(meta.PostBalances) {
		return Event{}, false
	}

	delta := meta.PostBalances[idx] - meta.PreBalances[idx]
	if abs64(delta) <= constants.DustThresholdLamports {
		return Event{}, false
	}

	cp := ResolveNative(tx, tracked)
	if cp.From == cp.To {
		// Self-transfer artifact (wrap/unwrap, rent shuffling between owned
		// accounts); not a history entry.
		f.logger.WithField("signature", short(signature)).Debug("dropping self transfer")
		return Event{}, false
	}

	evType := EventSent
	if delta > 0 {
		evType = EventReceived
	}

	return Event{
		Signature: signature,
		Type:      evType,
		Asset:     constants.NativeAsset,
		Amount:    float64(abs64(delta)) / constants.LamportsPerSOL,
		From:      cp.From,
		To:        cp.To,
		Time:      eventTime,
	}, true
}

// tokenLegs extracts one event per token balance owned by the tracked wallet
// whose amount changed. A missing pre-balance entry means the token account
// was created in this transaction and started at zero.
func (f *Formatter) tokenLegs(tx *rpc.TransactionResult, signature, tracked string, eventTime *time.Time) []Event {
	meta := tx.Meta
	var events []Event

	for _, post := range meta.PostTokenBalances {
		if post.Owner != tracked {
			continue
		}

		var preAmount float64
		for _, pre := range meta.PreTokenBalances {
			if pre.AccountIndex == post.AccountIndex {
				preAmount = pre.UITokenAmount.UIAmount
				break
			}
		}

		delta := post.UITokenAmount.UIAmount - preAmount
		if delta == 0 {
			continue
		}

		cp := ResolveToken(tx, tracked)
		if cp.From == cp.To {
			f.logger.WithField("signature", short(signature)).Debug("dropping token self transfer")
			continue
		}

		evType := EventSent
		if delta > 0 {
			evType = EventReceived
		}

		events = append(events, Event{
			Signature: signature,
			Type:      evType,
			Asset:     assetSymbol(post.Mint),
			Amount:    absF(delta),
			From:      cp.From,
			To:        cp.To,
			Time:      eventTime,
		})
	}

	return events
}

// assetSymbol maps a mint to a known display symbol, falling back to the raw
// mint address for unrecognized tokens.
func assetSymbol(mint string) string {
	if symbol, ok := constants.TokenSymbols[mint]; ok {
		return symbol
	}
	return mint
}

func blockTime(tx *rpc.TransactionResult) *time.Time {
	if tx.BlockTime == 0 {
		return nil
	}
	t := time.Unix(tx.BlockTime, 0)
	return &t
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// short truncates a signature for log output.
func short(sig string) string {
	if len(sig) > 8 {
		return sig[:8]
	}
	return sig
}
