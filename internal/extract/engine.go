// Package extract runs one document through the full pipeline: text
// acquisition, field resolution, value normalization, record assembly.
package extract

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/docuflow/invoice-extractor/internal/acquire"
	"github.com/docuflow/invoice-extractor/internal/normalize"
	"github.com/docuflow/invoice-extractor/internal/patterns"
	"github.com/docuflow/invoice-extractor/internal/resolve"
)

// Engine orchestrates the per-document extraction pipeline. It holds only
// immutable collaborators and is safe to use across documents concurrently.
type Engine struct {
	acquirer   *acquire.Acquirer
	resolver   *resolve.Resolver
	normalizer *normalize.Normalizer
	logger     *slog.Logger
}

// NewEngine wires the pipeline components together
func NewEngine(acq *acquire.Acquirer, res *resolve.Resolver, norm *normalize.Normalizer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{acquirer: acq, resolver: res, normalizer: norm, logger: logger}
}

// ExtractFile produces the extraction record for one PDF. Every failure is
// contained in the returned record; the error return is reserved for
// context cancellation.
func (e *Engine) ExtractFile(ctx context.Context, path string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := e.acquirer.Acquire(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("acquisition failed", "path", path, "error", err)
		return failedRecord(filepath.Base(path), err.Error()), nil
	}

	return e.buildRecord(doc), nil
}

// ExtractText resolves and normalizes fields from already-acquired text.
// Exposed so the resolution logic can be exercised without PDF input.
func (e *Engine) ExtractText(doc *acquire.Document) *Record {
	return e.buildRecord(doc)
}

func (e *Engine) buildRecord(doc *acquire.Document) *Record {
	rec := &Record{
		File:   doc.Name,
		Pages:  doc.Pages,
		Mode:   doc.Mode,
		Fields: make(map[string]FieldOutcome, len(patterns.FieldTypes())),
	}

	resolved := 0
	for _, ft := range patterns.FieldTypes() {
		res := e.resolver.Resolve(doc.Text, ft)
		outcome := FieldOutcome{Status: res.Status}

		if res.Status == resolve.StatusResolved {
			outcome.Pattern = res.Winner.PatternID
			outcome.Raw = res.Winner.Raw
			if err := e.normalizeField(rec, ft, res.Winner.Raw); err != nil {
				// Normalization failure downgrades the field, never the
				// document.
				e.logger.Info("normalization failed",
					"file", doc.Name, "field", string(ft), "raw", res.Winner.Raw, "error", err)
				outcome.Status = resolve.StatusMissing
				outcome.Reason = err.Error()
			} else {
				resolved++
			}
		}

		rec.Fields[string(ft)] = outcome
	}

	rec.Status = docStatus(resolved)
	e.logger.Info("document extracted",
		"file", doc.Name, "status", string(rec.Status), "mode", string(doc.Mode), "yield", doc.Yield)
	return rec
}

// normalizeField converts the winning raw value and stores it on the record
func (e *Engine) normalizeField(rec *Record, ft patterns.FieldType, raw string) error {
	switch ft {
	case patterns.FieldInvoiceNumber:
		id, err := e.normalizer.Identifier(raw)
		if err != nil {
			return err
		}
		rec.InvoiceNumber = &id
	case patterns.FieldDate:
		date, err := e.normalizer.Date(raw)
		if err != nil {
			return err
		}
		rec.InvoiceDate = &date
	case patterns.FieldTotal:
		amount, err := e.normalizer.Amount(raw)
		if err != nil {
			return err
		}
		rec.TotalAmount = &amount
	}
	return nil
}
