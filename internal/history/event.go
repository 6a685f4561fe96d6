package history

import "time"

// EventType is the direction of a balance change relative to the tracked
// wallet.
type EventType string

const (
	EventSent     EventType = "sent"
	EventReceived EventType = "received"
)

// ExternalParty is the counterparty sentinel used when the true sender or
// receiver cannot be resolved from the transaction (for example an unparsed
// program interaction). Display layers render it as "external".
const ExternalParty = "external"

// Event is one human-meaningful balance change extracted from an on-chain
// transaction. A single transaction may produce several events, one per asset
// whose balance moved, all sharing the same signature and time.
type Event struct {
	Signature string     `json:"signature"`
	Type      EventType  `json:"type"`
	Asset     string     `json:"asset"`
	Amount    float64    `json:"amount"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Time      *time.Time `json:"time"`
}

// Section is a date bucket of events for display, titled "Today",
// "Yesterday", or a long-form date.
type Section struct {
	Title  string  `json:"title"`
	Events []Event `json:"events"`
}

// Cursor is the pagination state after a page fetch. LastSignature is the
// oldest signature seen so far; HasMore is false once a fetch comes back
// empty.
type Cursor struct {
	LastSignature string `json:"last_signature"`
	HasMore       bool   `json:"has_more"`
}
