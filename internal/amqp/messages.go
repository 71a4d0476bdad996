package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"ecobrain/internal/core"
)

// EventOp is the kind of write a LedgerEvent reports.
type EventOp string

const (
	OpCreated EventOp = "created"
	OpUpdated EventOp = "updated"
	OpDeleted EventOp = "deleted"
)

// LedgerEvent is published after every transaction write. It carries the
// row as it was written (or as it was before a delete) so consumers never
// have to read the database back.
type LedgerEvent struct {
	Op          EventOp          `json:"op"`
	UserID      int64            `json:"userId"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewLedgerEvent(op EventOp, tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		Op:          op,
		UserID:      tx.UserID,
		Transaction: tx,
		Timestamp:   time.Now().UTC(),
	}
}

// Validate rejects events a consumer cannot act on.
func (e *LedgerEvent) Validate() error {
	switch e.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return fmt.Errorf("unknown event op %q", e.Op)
	}
	if e.Transaction.ID <= 0 {
		return fmt.Errorf("event without transaction id")
	}
	if e.UserID <= 0 || e.UserID != e.Transaction.UserID {
		return fmt.Errorf("event user %d does not own transaction %d", e.UserID, e.Transaction.ID)
	}
	return nil
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
