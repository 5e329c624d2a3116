package repository

import (
	"context"
	"errors"

	"payments_engine/internal/domain"
)

// RecordStore keeps every accepted transaction for the life of the stream.
// Transaction identifiers are unique across the whole input: Insert fails on
// a duplicate id and leaves the store untouched.
type RecordStore interface {
	Insert(ctx context.Context, record *domain.TransactionRecord) error
	Lookup(ctx context.Context, txID uint32) (*domain.TransactionRecord, error)
	UpdateDisputeState(ctx context.Context, txID uint32, state domain.DisputeState) error
}

// AccountTable maps clients to their ledger positions. Accounts are created
// lazily on first reference and never deleted.
type AccountTable interface {
	GetOrCreate(ctx context.Context, clientID uint16) *domain.Account
	// Snapshot returns every account in ascending client id order.
	Snapshot(ctx context.Context) []*domain.Account
}

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate entry")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
