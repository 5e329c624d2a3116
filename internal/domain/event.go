package domain

import (
	"payments_engine/pkg/money"
)

type EventType string

const (
	EventDeposit    EventType = "deposit"
	EventWithdrawal EventType = "withdrawal"
	EventDispute    EventType = "dispute"
	EventResolve    EventType = "resolve"
	EventChargeback EventType = "chargeback"
)

// Event is one already-validated entry of the input stream. Amount is only
// set for deposits and withdrawals. The client id on dispute, resolve and
// chargeback events is informational: the processor resolves the account
// owner from the referenced transaction record.
type Event struct {
	Type     EventType
	ClientID uint16
	TxID     uint32
	Amount   money.Amount
}
