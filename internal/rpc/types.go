package rpc

import (
	"encoding/json"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
)

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// SignatureInfo represents a transaction signature from getSignaturesForAddress
type SignatureInfo struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	Err       interface{} `json:"err"`
	BlockTime int64       `json:"blockTime"`
}

// SignaturesResponse is the response from getSignaturesForAddress
type SignaturesResponse struct {
	Result []SignatureInfo `json:"result"`
	Error  *RPCError       `json:"error"`
}

// TokenAmount represents token balance information
type TokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       int     `json:"decimals"`
	UIAmountString string  `json:"uiAmountString"`
	UIAmount       float64 `json:"uiAmount"`
}

// TokenBalance represents a pre- or post-transaction token balance entry.
// Owner is the wallet that owns the token account at AccountIndex; it can be
// absent on older ledger records.
type TokenBalance struct {
	AccountIndex  int         `json:"accountIndex"`
	Mint          string      `json:"mint"`
	Owner         string      `json:"owner"`
	UITokenAmount TokenAmount `json:"uiTokenAmount"`
}

// InstructionKind is the closed set of parsed instruction variants this
// pipeline understands. Everything else decodes as InstructionUnknown and is
// carried only so balance-delta fallbacks can run.
type InstructionKind int

const (
	InstructionUnknown InstructionKind = iota
	InstructionTransfer
	InstructionTokenTransfer
	InstructionTokenTransferChecked
)

// Instruction is one parsed instruction, top-level or inner.
type Instruction struct {
	Kind      InstructionKind
	ProgramID string

	// System transfer fields
	Source      string
	Destination string
	Lamports    uint64

	// Token transfer fields (Source/Destination above are token accounts here)
	Authority   string
	Mint        string
	TokenAmount *TokenAmount
}

// rawInstruction mirrors the jsonParsed wire shape before classification.
type rawInstruction struct {
	ProgramID string `json:"programId"`
	Parsed    *struct {
		Type string `json:"type"`
		Info struct {
			Source            string       `json:"source"`
			Destination       string       `json:"destination"`
			Lamports          uint64       `json:"lamports"`
			Authority         string       `json:"authority"`
			MultisigAuthority string       `json:"multisigAuthority"`
			Mint              string       `json:"mint"`
			TokenAmount       *TokenAmount `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// UnmarshalJSON classifies a jsonParsed instruction into one of the closed
// variants. Unparseable or unrecognized instructions become InstructionUnknown
// rather than an error.
func (ix *Instruction) UnmarshalJSON(data []byte) error {
	var raw rawInstruction
	if err := json.Unmarshal(data, &raw); err != nil {
		// Compiled (non-parsed) instructions have a different shape; treat
		// them as unrecognized instead of failing the whole transaction.
		*ix = Instruction{Kind: InstructionUnknown}
		return nil
	}

	out := Instruction{Kind: InstructionUnknown, ProgramID: raw.ProgramID}
	if raw.Parsed == nil {
		*ix = out
		return nil
	}

	info := raw.Parsed.Info
	out.Source = info.Source
	out.Destination = info.Destination
	out.Authority = info.Authority
	if out.Authority == "" {
		out.Authority = info.MultisigAuthority
	}

	switch {
	case raw.ProgramID == constants.SystemProgramID && raw.Parsed.Type == "transfer":
		out.Kind = InstructionTransfer
		out.Lamports = info.Lamports
	case raw.ProgramID == constants.TokenProgramID && raw.Parsed.Type == "transfer":
		out.Kind = InstructionTokenTransfer
		out.TokenAmount = info.TokenAmount
	case raw.ProgramID == constants.TokenProgramID && raw.Parsed.Type == "transferChecked":
		out.Kind = InstructionTokenTransferChecked
		out.Mint = info.Mint
		out.TokenAmount = info.TokenAmount
	}

	*ix = out
	return nil
}

// InnerInstructionGroup holds the inner instructions invoked by the top-level
// instruction at Index.
type InnerInstructionGroup struct {
	Index        int           `json:"index"`
	Instructions []Instruction `json:"instructions"`
}

// TransactionMeta contains metadata about a transaction
type TransactionMeta struct {
	Err               interface{}             `json:"err"`
	PreBalances       []int64                 `json:"preBalances"`
	PostBalances      []int64                 `json:"postBalances"`
	PreTokenBalances  []TokenBalance          `json:"preTokenBalances"`
	PostTokenBalances []TokenBalance          `json:"postTokenBalances"`
	InnerInstructions []InnerInstructionGroup `json:"innerInstructions"`
}

// AccountKey represents an account in a transaction
type AccountKey struct {
	Pubkey string `json:"pubkey"`
}

// TransactionMessage contains the transaction message
type TransactionMessage struct {
	AccountKeys  []AccountKey  `json:"accountKeys"`
	Instructions []Instruction `json:"instructions"`
}

// Transaction represents a parsed transaction
type Transaction struct {
	Message TransactionMessage `json:"message"`
}

// TransactionResult contains the full transaction data
type TransactionResult struct {
	BlockTime   int64            `json:"blockTime"`
	Meta        *TransactionMeta `json:"meta"`
	Transaction *Transaction     `json:"transaction"`
}

// AllInstructions returns top-level and inner instructions flattened into one
// scan list.
func (t *TransactionResult) AllInstructions() []Instruction {
	if t.Transaction == nil {
		return nil
	}
	out := make([]Instruction, 0, len(t.Transaction.Message.Instructions))
	out = append(out, t.Transaction.Message.Instructions...)
	if t.Meta != nil {
		for _, group := range t.Meta.InnerInstructions {
			out = append(out, group.Instructions...)
		}
	}
	return out
}

// AccountIndex returns the position of address in the account-key list, or -1.
func (t *TransactionResult) AccountIndex(address string) int {
	if t.Transaction == nil {
		return -1
	}
	for i, key := range t.Transaction.Message.AccountKeys {
		if key.Pubkey == address {
			return i
		}
	}
	return -1
}

// TransactionResponse is the response from getTransaction
type TransactionResponse struct {
	Result *TransactionResult `json:"result"`
	Error  *RPCError          `json:"error"`
}
