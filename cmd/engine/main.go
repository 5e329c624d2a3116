package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"payments_engine/internal/csvio"
	"payments_engine/internal/processor"
	"payments_engine/internal/repository/memory"
	"payments_engine/pkg/metrics"
)

const (
	appName = "payments_engine"
)

func main() {
	metricsAddr := flag.String("metrics", "", "address to serve prometheus metrics on (disabled when empty)")
	verbose := flag.Bool("v", false, "log discarded events and skipped rows")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <transactions.csv>\n", appName)
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := setupLogger(*verbose)
	logger.Info("Starting application",
		slog.String("name", appName),
		slog.String("input", flag.Arg(0)))

	if err := run(context.Background(), logger, flag.Arg(0), *metricsAddr); err != nil {
		logger.Error("Run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, path, metricsAddr string) error {
	input, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	collector := metrics.NewCollector(logger)
	if metricsAddr != "" {
		collector.StartMetricsServer(metricsAddr)
	}

	records := memory.NewRecordStore()
	accounts := memory.NewAccountTable()
	engine := processor.NewLedgerProcessor(records, accounts, collector, logger)
	reader := csvio.NewReader(input, logger)

	stats, err := engine.Run(ctx, reader)
	if err != nil {
		return err
	}

	snapshot := accounts.Snapshot(ctx)
	collector.AddRowsSkipped(reader.Skipped())
	collector.UpdateAccountGauges(snapshot)

	if err := csvio.NewWriter(os.Stdout).WriteAccounts(snapshot); err != nil {
		return fmt.Errorf("write accounts: %w", err)
	}

	logger.Info("Stream processed",
		slog.Int("applied", stats.Applied),
		slog.Int("discarded", stats.Discarded),
		slog.Int("rows_skipped", reader.Skipped()),
		slog.Int("accounts", len(snapshot)))
	return nil
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
