package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"payments_engine/internal/domain"
)

// EventSource is a lazy, finite, non-restartable sequence of typed events.
// Next returns io.EOF once the stream is exhausted.
type EventSource interface {
	Next(ctx context.Context) (domain.Event, error)
}

type RunStats struct {
	Applied   int
	Discarded int
}

// Run drains the source, applying events one at a time in input order.
// Discarded events are counted and logged at debug level but never stop the
// run; only a source failure does.
func (p *LedgerProcessor) Run(ctx context.Context, src EventSource) (RunStats, error) {
	var stats RunStats

	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("event source failed: %w", err)
		}

		if err := p.Apply(ctx, ev); err != nil {
			stats.Discarded++
			reason := RejectionReason(err)
			if p.metrics != nil {
				p.metrics.RecordEvent(ev.Type, reason)
			}
			p.logger.DebugContext(ctx, "Event discarded",
				slog.String("type", string(ev.Type)),
				slog.Uint64("tx", uint64(ev.TxID)),
				slog.String("reason", reason))
			continue
		}

		stats.Applied++
		if p.metrics != nil {
			p.metrics.RecordEvent(ev.Type, "")
		}
	}
}
