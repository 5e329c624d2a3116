package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"payments_engine/internal/domain"
	"payments_engine/internal/repository"
	"payments_engine/pkg/metrics"
)

var (
	ErrAccountLocked     = errors.New("account locked")
	ErrNegativeAmount    = errors.New("negative amount")
	ErrNotDisputable     = errors.New("transaction not disputable")
	ErrWrongDisputeState = errors.New("wrong dispute state")
	ErrUnknownEventType  = errors.New("unknown event type")
)

// LedgerProcessor applies the event stream to the record store and the
// account table, one event at a time, in input order. Every rule violation
// is a silent discard: Apply returns the reason so callers and tests can
// observe it, but processing always continues with the next event.
type LedgerProcessor struct {
	records  repository.RecordStore
	accounts repository.AccountTable
	metrics  *metrics.Collector
	logger   *slog.Logger
}

func NewLedgerProcessor(
	records repository.RecordStore,
	accounts repository.AccountTable,
	collector *metrics.Collector,
	logger *slog.Logger,
) *LedgerProcessor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LedgerProcessor{
		records:  records,
		accounts: accounts,
		metrics:  collector,
		logger:   logger,
	}
}

// Apply processes a single event. A nil return means the event mutated the
// ledger; a non-nil return means it was discarded with no side effect beyond
// the lazy creation of the target account. No event is ever applied
// partially.
func (p *LedgerProcessor) Apply(ctx context.Context, ev domain.Event) error {
	switch ev.Type {
	case domain.EventDeposit:
		return p.applyDeposit(ctx, ev)
	case domain.EventWithdrawal:
		return p.applyWithdrawal(ctx, ev)
	case domain.EventDispute:
		return p.applyDispute(ctx, ev)
	case domain.EventResolve:
		return p.applyResolve(ctx, ev)
	case domain.EventChargeback:
		return p.applyChargeback(ctx, ev)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEventType, ev.Type)
	}
}

func (p *LedgerProcessor) applyDeposit(ctx context.Context, ev domain.Event) error {
	account := p.accounts.GetOrCreate(ctx, ev.ClientID)
	if account.Locked {
		return fmt.Errorf("%w: client %d", ErrAccountLocked, ev.ClientID)
	}
	if ev.Amount.IsNegative() {
		return fmt.Errorf("%w: transaction %d", ErrNegativeAmount, ev.TxID)
	}

	record := domain.NewDepositRecord(ev.TxID, ev.ClientID, ev.Amount)
	if err := p.records.Insert(ctx, record); err != nil {
		return err
	}

	account.Available += ev.Amount
	return nil
}

func (p *LedgerProcessor) applyWithdrawal(ctx context.Context, ev domain.Event) error {
	account := p.accounts.GetOrCreate(ctx, ev.ClientID)
	if account.Locked {
		return fmt.Errorf("%w: client %d", ErrAccountLocked, ev.ClientID)
	}
	if ev.Amount.IsNegative() {
		return fmt.Errorf("%w: transaction %d", ErrNegativeAmount, ev.TxID)
	}
	if account.Available < ev.Amount {
		return fmt.Errorf("%w: client %d", repository.ErrInsufficientFunds, ev.ClientID)
	}

	// The id is only consumed when the withdrawal actually applies; a
	// rejected withdrawal leaves the id free for a later valid event.
	record := domain.NewWithdrawalRecord(ev.TxID, ev.ClientID, ev.Amount)
	if err := p.records.Insert(ctx, record); err != nil {
		return err
	}

	account.Available -= ev.Amount
	return nil
}

func (p *LedgerProcessor) applyDispute(ctx context.Context, ev domain.Event) error {
	record, err := p.records.Lookup(ctx, ev.TxID)
	if err != nil {
		return err
	}
	if record.Kind != domain.KindDeposit {
		return fmt.Errorf("%w: transaction %d is a %s", ErrNotDisputable, ev.TxID, record.Kind)
	}

	account := p.accounts.GetOrCreate(ctx, record.ClientID)
	if account.Locked {
		return fmt.Errorf("%w: client %d", ErrAccountLocked, record.ClientID)
	}
	if !record.Disputable() {
		return fmt.Errorf("%w: transaction %d is %s", ErrWrongDisputeState, ev.TxID, record.State)
	}

	if err := p.records.UpdateDisputeState(ctx, ev.TxID, domain.StateDisputed); err != nil {
		return err
	}
	account.Available -= record.Amount
	account.Held += record.Amount
	return nil
}

func (p *LedgerProcessor) applyResolve(ctx context.Context, ev domain.Event) error {
	record, err := p.records.Lookup(ctx, ev.TxID)
	if err != nil {
		return err
	}
	if record.Kind != domain.KindDeposit {
		return fmt.Errorf("%w: transaction %d is a %s", ErrNotDisputable, ev.TxID, record.Kind)
	}

	account := p.accounts.GetOrCreate(ctx, record.ClientID)
	if account.Locked {
		return fmt.Errorf("%w: client %d", ErrAccountLocked, record.ClientID)
	}
	if record.State != domain.StateDisputed {
		return fmt.Errorf("%w: transaction %d is %s", ErrWrongDisputeState, ev.TxID, record.State)
	}

	if err := p.records.UpdateDisputeState(ctx, ev.TxID, domain.StateResolved); err != nil {
		return err
	}
	account.Held -= record.Amount
	account.Available += record.Amount
	return nil
}

func (p *LedgerProcessor) applyChargeback(ctx context.Context, ev domain.Event) error {
	record, err := p.records.Lookup(ctx, ev.TxID)
	if err != nil {
		return err
	}
	if record.Kind != domain.KindDeposit {
		return fmt.Errorf("%w: transaction %d is a %s", ErrNotDisputable, ev.TxID, record.Kind)
	}

	account := p.accounts.GetOrCreate(ctx, record.ClientID)
	if account.Locked {
		return fmt.Errorf("%w: client %d", ErrAccountLocked, record.ClientID)
	}
	if record.State != domain.StateDisputed {
		return fmt.Errorf("%w: transaction %d is %s", ErrWrongDisputeState, ev.TxID, record.State)
	}

	if err := p.records.UpdateDisputeState(ctx, ev.TxID, domain.StateChargedBack); err != nil {
		return err
	}
	account.Held -= record.Amount
	account.Locked = true
	return nil
}

// RejectionReason maps a discard error to a short label for logs and
// metrics.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return "duplicate_tx"
	case errors.Is(err, repository.ErrNotFound):
		return "unknown_tx"
	case errors.Is(err, repository.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrNegativeAmount):
		return "negative_amount"
	case errors.Is(err, ErrNotDisputable):
		return "not_disputable"
	case errors.Is(err, ErrWrongDisputeState):
		return "wrong_dispute_state"
	default:
		return "rejected"
	}
}
