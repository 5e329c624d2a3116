package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"payments_engine/internal/domain"
)

// Writer emits the final account table as csv. Callers pass accounts in the
// order they should appear; the engine hands them over sorted by client id
// so the output is deterministic run to run.
type Writer struct {
	csv *csv.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

func (w *Writer) WriteAccounts(accounts []*domain.Account) error {
	if err := w.csv.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, account := range accounts {
		row := []string{
			strconv.FormatUint(uint64(account.ClientID), 10),
			account.Available.String(),
			account.Held.String(),
			account.Total().String(),
			strconv.FormatBool(account.Locked),
		}
		if err := w.csv.Write(row); err != nil {
			return fmt.Errorf("write account %d: %w", account.ClientID, err)
		}
	}

	w.csv.Flush()
	return w.csv.Error()
}
