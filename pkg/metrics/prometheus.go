package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payments_engine/internal/domain"
)

type Collector struct {
	registry        *prometheus.Registry
	eventsApplied   *prometheus.CounterVec
	eventsDiscarded *prometheus.CounterVec
	rowsSkipped     prometheus.Counter
	accountsTotal   prometheus.Gauge
	accountsLocked  prometheus.Gauge
	fundsHeld       prometheus.Gauge
	mu              sync.RWMutex
	logger          *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	collector := &Collector{
		registry: registry,
		eventsApplied: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_events_applied_total",
			Help: "Total number of applied events by kind",
		}, []string{"kind"}),
		eventsDiscarded: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_events_discarded_total",
			Help: "Total number of discarded events by kind and reason",
		}, []string{"kind", "reason"}),
		rowsSkipped: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "ledger_rows_skipped_total",
			Help: "Total number of malformed input rows dropped before the processor",
		}),
		accountsTotal: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "ledger_accounts",
			Help: "Number of client accounts in the table",
		}),
		accountsLocked: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "ledger_accounts_locked",
			Help: "Number of locked client accounts",
		}),
		fundsHeld: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "ledger_funds_held",
			Help: "Funds held under open disputes, summed across accounts",
		}),
		logger: logger,
	}

	return collector
}

// RecordEvent counts one processed event. An empty reason means the event was
// applied; any other value names why it was discarded.
func (c *Collector) RecordEvent(kind domain.EventType, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reason == "" {
		c.eventsApplied.WithLabelValues(string(kind)).Inc()
	} else {
		c.eventsDiscarded.WithLabelValues(string(kind), reason).Inc()
	}
}

func (c *Collector) AddRowsSkipped(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rowsSkipped.Add(float64(n))
}

func (c *Collector) UpdateAccountGauges(accounts []*domain.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var locked int
	var held int64
	for _, account := range accounts {
		if account.Locked {
			locked++
		}
		held += int64(account.Held)
	}

	c.accountsTotal.Set(float64(len(accounts)))
	c.accountsLocked.Set(float64(locked))
	c.fundsHeld.Set(float64(held) / 1e4)
}

func (c *Collector) GetHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.GetHandler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		c.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (c *Collector) Shutdown(ctx context.Context) error {
	c.logger.Info("Metrics collector shutdown complete")
	return nil
}
