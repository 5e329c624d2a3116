package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"payments_engine/internal/domain"
	"payments_engine/pkg/money"
)

var (
	ErrUnknownType   = errors.New("unknown event type")
	ErrMissingField  = errors.New("missing field")
	ErrInvalidClient = errors.New("invalid client id")
	ErrInvalidTx     = errors.New("invalid transaction id")
	ErrMissingAmount = errors.New("missing amount")
	ErrInvalidAmount = errors.New("invalid amount")
)

// RowValidator turns raw input rows into typed events. Everything that can
// be structurally wrong with a row is rejected here, before the processor
// ever sees it: unknown type, malformed ids, a missing or negative amount on
// a deposit or withdrawal. Rows carry type, client, tx and optionally amount,
// in that order.
type RowValidator struct{}

func NewRowValidator() *RowValidator {
	return &RowValidator{}
}

func (v *RowValidator) ValidateRow(fields []string) (domain.Event, error) {
	if len(fields) < 3 {
		return domain.Event{}, fmt.Errorf("%w: got %d fields", ErrMissingField, len(fields))
	}

	eventType, err := parseEventType(strings.TrimSpace(fields[0]))
	if err != nil {
		return domain.Event{}, err
	}

	clientID, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: %q", ErrInvalidClient, fields[1])
	}

	txID, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: %q", ErrInvalidTx, fields[2])
	}

	ev := domain.Event{
		Type:     eventType,
		ClientID: uint16(clientID),
		TxID:     uint32(txID),
	}

	if eventType == domain.EventDeposit || eventType == domain.EventWithdrawal {
		amount, err := parseAmountField(fields)
		if err != nil {
			return domain.Event{}, err
		}
		ev.Amount = amount
	}
	// Any amount on a dispute, resolve or chargeback row is ignored.

	return ev, nil
}

func parseEventType(s string) (domain.EventType, error) {
	switch domain.EventType(strings.ToLower(s)) {
	case domain.EventDeposit:
		return domain.EventDeposit, nil
	case domain.EventWithdrawal:
		return domain.EventWithdrawal, nil
	case domain.EventDispute:
		return domain.EventDispute, nil
	case domain.EventResolve:
		return domain.EventResolve, nil
	case domain.EventChargeback:
		return domain.EventChargeback, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

func parseAmountField(fields []string) (money.Amount, error) {
	if len(fields) < 4 || strings.TrimSpace(fields[3]) == "" {
		return 0, ErrMissingAmount
	}

	amount, err := money.Parse(strings.TrimSpace(fields[3]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, fields[3])
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: negative %q", ErrInvalidAmount, fields[3])
	}

	return amount, nil
}
