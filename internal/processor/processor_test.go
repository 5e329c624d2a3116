package processor

import (
	"context"
	"errors"
	"testing"

	"payments_engine/internal/domain"
	"payments_engine/internal/repository"
	"payments_engine/internal/repository/memory"
	"payments_engine/pkg/money"
)

func newTestProcessor() (*LedgerProcessor, *memory.RecordStore, *memory.AccountTable) {
	records := memory.NewRecordStore()
	accounts := memory.NewAccountTable()
	return NewLedgerProcessor(records, accounts, nil, nil), records, accounts
}

func mustApply(t *testing.T, p *LedgerProcessor, ev domain.Event) {
	t.Helper()
	if err := p.Apply(context.Background(), ev); err != nil {
		t.Fatalf("unexpected discard of %s tx=%d: %v", ev.Type, ev.TxID, err)
	}
}

func assertAccount(t *testing.T, accounts *memory.AccountTable, clientID uint16, available, held money.Amount, locked bool) {
	t.Helper()
	acc := accounts.GetOrCreate(context.Background(), clientID)
	if acc.Available != available {
		t.Errorf("client %d: expected available %s, got %s", clientID, available, acc.Available)
	}
	if acc.Held != held {
		t.Errorf("client %d: expected held %s, got %s", clientID, held, acc.Held)
	}
	if acc.Total() != available+held {
		t.Errorf("client %d: total %s != available %s + held %s", clientID, acc.Total(), acc.Available, acc.Held)
	}
	if acc.Locked != locked {
		t.Errorf("client %d: expected locked=%v, got %v", clientID, locked, acc.Locked)
	}
}

func deposit(txID uint32, clientID uint16, amount money.Amount) domain.Event {
	return domain.Event{Type: domain.EventDeposit, ClientID: clientID, TxID: txID, Amount: amount}
}

func withdrawal(txID uint32, clientID uint16, amount money.Amount) domain.Event {
	return domain.Event{Type: domain.EventWithdrawal, ClientID: clientID, TxID: txID, Amount: amount}
}

func dispute(txID uint32) domain.Event {
	return domain.Event{Type: domain.EventDispute, TxID: txID}
}

func resolve(txID uint32) domain.Event {
	return domain.Event{Type: domain.EventResolve, TxID: txID}
}

func chargeback(txID uint32) domain.Event {
	return domain.Event{Type: domain.EventChargeback, TxID: txID}
}

func TestLedgerProcessor_Deposit(t *testing.T) {
	p, records, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))

	assertAccount(t, accounts, 1, 50000, 0, false)
	rec, err := records.Lookup(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected record for tx 1: %v", err)
	}
	if rec.Kind != domain.KindDeposit || rec.State != domain.StateNormal {
		t.Errorf("expected normal deposit record, got kind=%s state=%s", rec.Kind, rec.State)
	}
}

func TestLedgerProcessor_Deposit_DuplicateTxDiscarded(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	err := p.Apply(context.Background(), deposit(1, 1, 30000))

	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	assertAccount(t, accounts, 1, 50000, 0, false)
}

func TestLedgerProcessor_Withdrawal(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 100000))
	mustApply(t, p, withdrawal(2, 1, 30000))

	assertAccount(t, accounts, 1, 70000, 0, false)
}

func TestLedgerProcessor_Withdrawal_InsufficientFunds(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	err := p.Apply(context.Background(), withdrawal(2, 1, 100000))

	if !errors.Is(err, repository.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	assertAccount(t, accounts, 1, 50000, 0, false)
}

func TestLedgerProcessor_Withdrawal_UnknownClientCreatesEmptyAccount(t *testing.T) {
	p, _, accounts := newTestProcessor()

	err := p.Apply(context.Background(), withdrawal(1, 7, 10000))

	if !errors.Is(err, repository.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	// The account still appears in the output, zeroed.
	assertAccount(t, accounts, 7, 0, 0, false)
	if len(accounts.Snapshot(context.Background())) != 1 {
		t.Errorf("expected the rejected client to be present in the table")
	}
}

func TestLedgerProcessor_Dispute_HoldsFunds(t *testing.T) {
	p, records, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	mustApply(t, p, dispute(1))

	assertAccount(t, accounts, 1, 0, 50000, false)
	rec, _ := records.Lookup(context.Background(), 1)
	if rec.State != domain.StateDisputed {
		t.Errorf("expected disputed state, got %s", rec.State)
	}
}

func TestLedgerProcessor_Dispute_CanDriveAvailableNegative(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 100000))
	mustApply(t, p, withdrawal(2, 1, 100000))
	mustApply(t, p, dispute(1))

	assertAccount(t, accounts, 1, -100000, 100000, false)
}

func TestLedgerProcessor_Dispute_UnknownTxDiscarded(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	err := p.Apply(context.Background(), dispute(99))

	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertAccount(t, accounts, 1, 50000, 0, false)
}

func TestLedgerProcessor_Dispute_WithdrawalNotDisputable(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	mustApply(t, p, withdrawal(2, 1, 20000))
	err := p.Apply(context.Background(), dispute(2))

	if !errors.Is(err, ErrNotDisputable) {
		t.Fatalf("expected ErrNotDisputable, got %v", err)
	}
	assertAccount(t, accounts, 1, 30000, 0, false)
}

func TestLedgerProcessor_Dispute_RepeatIsNoOp(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	mustApply(t, p, dispute(1))
	err := p.Apply(context.Background(), dispute(1))

	if !errors.Is(err, ErrWrongDisputeState) {
		t.Fatalf("expected ErrWrongDisputeState, got %v", err)
	}
	assertAccount(t, accounts, 1, 0, 50000, false)
}

func TestLedgerProcessor_Resolve_ReleasesHeldFunds(t *testing.T) {
	p, records, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	mustApply(t, p, dispute(1))
	mustApply(t, p, resolve(1))

	assertAccount(t, accounts, 1, 50000, 0, false)
	rec, _ := records.Lookup(context.Background(), 1)
	if rec.State != domain.StateResolved {
		t.Errorf("expected resolved state, got %s", rec.State)
	}
}

func TestLedgerProcessor_Resolve_RequiresOpenDispute(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	err := p.Apply(context.Background(), resolve(1))

	if !errors.Is(err, ErrWrongDisputeState) {
		t.Fatalf("expected ErrWrongDisputeState, got %v", err)
	}
	assertAccount(t, accounts, 1, 50000, 0, false)
}

func TestLedgerProcessor_Chargeback_RemovesFundsAndLocks(t *testing.T) {
	p, records, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	mustApply(t, p, deposit(2, 1, 50000))
	mustApply(t, p, dispute(1))
	mustApply(t, p, chargeback(1))

	assertAccount(t, accounts, 1, 50000, 0, true)
	rec, _ := records.Lookup(context.Background(), 1)
	if rec.State != domain.StateChargedBack {
		t.Errorf("expected charged_back state, got %s", rec.State)
	}
}

func TestLedgerProcessor_Chargeback_RequiresOpenDispute(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	err := p.Apply(context.Background(), chargeback(1))

	if !errors.Is(err, ErrWrongDisputeState) {
		t.Fatalf("expected ErrWrongDisputeState, got %v", err)
	}
	assertAccount(t, accounts, 1, 50000, 0, false)
}

func TestLedgerProcessor_LockedAccountIsFrozen(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	mustApply(t, p, deposit(2, 1, 30000))
	mustApply(t, p, dispute(1))
	mustApply(t, p, chargeback(1))

	events := []domain.Event{
		deposit(3, 1, 10000),
		withdrawal(4, 1, 10000),
		dispute(2),
		resolve(2),
		chargeback(2),
	}
	for _, ev := range events {
		if err := p.Apply(context.Background(), ev); !errors.Is(err, ErrAccountLocked) {
			t.Errorf("%s tx=%d: expected ErrAccountLocked, got %v", ev.Type, ev.TxID, err)
		}
	}

	assertAccount(t, accounts, 1, 30000, 0, true)
}

func TestLedgerProcessor_ReDisputeCycleEndsLocked(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	mustApply(t, p, dispute(1))
	mustApply(t, p, resolve(1))
	mustApply(t, p, dispute(1))
	mustApply(t, p, chargeback(1))

	// Two dispute cycles: the resolve returned the funds, the second dispute
	// held them again and the chargeback removed them.
	assertAccount(t, accounts, 1, 0, 0, true)
}

func TestLedgerProcessor_DisputeResolvesClientFromRecord(t *testing.T) {
	p, _, accounts := newTestProcessor()

	mustApply(t, p, deposit(1, 1, 50000))
	// A mismatched client id on the dispute row is informational only.
	ev := domain.Event{Type: domain.EventDispute, ClientID: 2, TxID: 1}
	mustApply(t, p, ev)

	assertAccount(t, accounts, 1, 0, 50000, false)
	if len(accounts.Snapshot(context.Background())) != 1 {
		t.Errorf("dispute must not create an account for the informational client id")
	}
}

func TestLedgerProcessor_UnknownEventTypeDiscarded(t *testing.T) {
	p, _, _ := newTestProcessor()

	err := p.Apply(context.Background(), domain.Event{Type: "transfer", TxID: 1})

	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestRejectionReason(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"duplicate":   {repository.ErrDuplicate, "duplicate_tx"},
		"not found":   {repository.ErrNotFound, "unknown_tx"},
		"funds":       {repository.ErrInsufficientFunds, "insufficient_funds"},
		"locked":      {ErrAccountLocked, "account_locked"},
		"disputable":  {ErrNotDisputable, "not_disputable"},
		"wrong state": {ErrWrongDisputeState, "wrong_dispute_state"},
		"other":       {errors.New("boom"), "rejected"},
	}

	for name, tc := range cases {
		if got := RejectionReason(tc.err); got != tc.want {
			t.Errorf("%s: expected %q, got %q", name, tc.want, got)
		}
	}
}
