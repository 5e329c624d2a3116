package domain

import (
	"payments_engine/pkg/money"
)

type RecordKind string
type DisputeState string

const (
	KindDeposit    RecordKind = "deposit"
	KindWithdrawal RecordKind = "withdrawal"

	StateNormal      DisputeState = "normal"
	StateDisputed    DisputeState = "disputed"
	StateResolved    DisputeState = "resolved"
	StateChargedBack DisputeState = "charged_back"
)

// TransactionRecord is the retained trace of an accepted deposit or
// withdrawal. Deposit records carry a dispute state for the rest of the run;
// withdrawal records exist only so that dispute-family references to them can
// be told apart from references to unknown transactions.
type TransactionRecord struct {
	TxID     uint32
	ClientID uint16
	Kind     RecordKind
	Amount   money.Amount
	State    DisputeState
}

func NewDepositRecord(txID uint32, clientID uint16, amount money.Amount) *TransactionRecord {
	return &TransactionRecord{
		TxID:     txID,
		ClientID: clientID,
		Kind:     KindDeposit,
		Amount:   amount,
		State:    StateNormal,
	}
}

func NewWithdrawalRecord(txID uint32, clientID uint16, amount money.Amount) *TransactionRecord {
	return &TransactionRecord{
		TxID:     txID,
		ClientID: clientID,
		Kind:     KindWithdrawal,
		Amount:   amount,
		State:    StateNormal,
	}
}

// Disputable reports whether a dispute may be opened against the record in
// its current state. Resolved deposits may be disputed again; a charged-back
// deposit never transitions again.
func (r *TransactionRecord) Disputable() bool {
	return r.Kind == KindDeposit && (r.State == StateNormal || r.State == StateResolved)
}
