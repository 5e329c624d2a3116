package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"payments_engine/internal/domain"
	"payments_engine/pkg/validator"
)

// Reader streams typed events out of a csv transaction log with a
// type,client,tx,amount header. Dispute-family rows may omit the amount
// column entirely, so the field count is not enforced by the csv layer.
// Structurally invalid rows are dropped, counted and logged; they never
// reach the processor.
type Reader struct {
	csv       *csv.Reader
	validator *validator.RowValidator
	logger    *slog.Logger
	skipped   int
	readHdr   bool
}

func NewReader(r io.Reader, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	return &Reader{
		csv:       cr,
		validator: validator.NewRowValidator(),
		logger:    logger,
	}
}

func (r *Reader) Next(ctx context.Context) (domain.Event, error) {
	for {
		fields, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return domain.Event{}, io.EOF
		}
		if err != nil {
			// A row the csv layer itself cannot parse (bare quote and
			// the like) is dropped the same way a semantically bad one is.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				r.skip(ctx, err)
				continue
			}
			return domain.Event{}, fmt.Errorf("read csv: %w", err)
		}

		if !r.readHdr {
			r.readHdr = true
			if isHeader(fields) {
				continue
			}
		}

		ev, err := r.validator.ValidateRow(fields)
		if err != nil {
			r.skip(ctx, err)
			continue
		}
		return ev, nil
	}
}

// Skipped reports how many rows were dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

func (r *Reader) skip(ctx context.Context, err error) {
	r.skipped++
	r.logger.DebugContext(ctx, "Row skipped", slog.String("error", err.Error()))
}

func isHeader(fields []string) bool {
	return len(fields) > 0 && strings.EqualFold(strings.TrimSpace(fields[0]), "type")
}
