package domain

import (
	"payments_engine/pkg/money"
)

// Account is one client's ledger position. Total is derived, never stored:
// available + held must equal it after every applied event. Available may go
// negative when a dispute reverses a deposit the client has already spent.
type Account struct {
	ClientID  uint16
	Available money.Amount
	Held      money.Amount
	Locked    bool
}

func NewAccount(clientID uint16) *Account {
	return &Account{ClientID: clientID}
}

func (a *Account) Total() money.Amount {
	return a.Available + a.Held
}
