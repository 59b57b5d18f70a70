// Package transcribe hands finished extraction records to the target
// application that receives them: a spreadsheet file or a browser sheet.
// Both workflows consume already-normalized values and do no parsing of
// their own.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/docuflow/invoice-extractor/internal/batch"
	"github.com/docuflow/invoice-extractor/internal/extract"
)

// Outcome reports how transcribing one record went
type Outcome struct {
	File   string
	OK     bool
	Detail string
}

// Transcriber writes one extraction record into a target application.
// Implementations are a configuration-time choice, not a runtime type
// switch.
type Transcriber interface {
	Transcribe(ctx context.Context, rec *extract.Record) (Outcome, error)
	Close() error
}

// Run feeds every usable record of a batch result to the transcriber in
// stable file-name order. Failed documents are skipped, not sent; a single
// transcription error does not stop the remaining records.
func Run(ctx context.Context, t Transcriber, result *batch.Result, logger *slog.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = slog.Default()
	}

	names := make([]string, 0, len(result.Documents))
	for name := range result.Documents {
		names = append(names, name)
	}
	sort.Strings(names)

	var outcomes []Outcome
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		rec := result.Documents[name]
		if rec.Status == extract.StatusFailed {
			logger.Info("skipping failed document", "file", name)
			outcomes = append(outcomes, Outcome{File: name, OK: false, Detail: "extraction failed, nothing to transcribe"})
			continue
		}

		outcome, err := t.Transcribe(ctx, rec)
		if err != nil {
			logger.Warn("transcription failed", "file", name, "error", err)
			outcomes = append(outcomes, Outcome{File: name, OK: false, Detail: err.Error()})
			continue
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// fieldOrEmpty renders a nullable field for typing into a cell
func fieldOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// amountOrEmpty renders a nullable amount for typing into a cell
func amountOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
