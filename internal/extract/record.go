package extract

import (
	"github.com/docuflow/invoice-extractor/internal/acquire"
	"github.com/docuflow/invoice-extractor/internal/patterns"
	"github.com/docuflow/invoice-extractor/internal/resolve"
)

// DocStatus is the overall outcome for one document
type DocStatus string

const (
	StatusComplete DocStatus = "complete" // all three fields resolved
	StatusPartial  DocStatus = "partial"  // one or two fields resolved
	StatusFailed   DocStatus = "failed"   // nothing resolved, or acquisition failed
)

// FieldOutcome carries the per-field resolution status plus the diagnostics
// downstream operators use to spot low-confidence extractions.
type FieldOutcome struct {
	Status  resolve.Status `json:"status"`
	Pattern string         `json:"pattern,omitempty"` // rule id that produced the winner
	Raw     string         `json:"raw,omitempty"`     // raw matched text before normalization
	Reason  string         `json:"reason,omitempty"`  // why normalization downgraded the field
}

// Record is the canonical, immutable output of parsing one document. The
// normalized values are what transcription workflows consume; they perform
// no parsing or validation of their own.
type Record struct {
	File          string                  `json:"file"`
	Pages         int                     `json:"pages,omitempty"`
	Mode          acquire.Mode            `json:"acquisition_mode,omitempty"`
	InvoiceNumber *string                 `json:"invoice_number"`
	InvoiceDate   *string                 `json:"invoice_date"`
	TotalAmount   *float64                `json:"total_amount"`
	Fields        map[string]FieldOutcome `json:"fields"`
	Status        DocStatus               `json:"status"`
	Error         string                  `json:"error,omitempty"`
}

// failedRecord builds the record for a document whose text acquisition
// failed entirely.
func failedRecord(file, reason string) *Record {
	fields := make(map[string]FieldOutcome, len(patterns.FieldTypes()))
	for _, ft := range patterns.FieldTypes() {
		fields[string(ft)] = FieldOutcome{Status: resolve.StatusMissing}
	}
	return &Record{
		File:   file,
		Fields: fields,
		Status: StatusFailed,
		Error:  reason,
	}
}

// docStatus derives the overall status from the number of resolved fields
func docStatus(resolved int) DocStatus {
	switch {
	case resolved == len(patterns.FieldTypes()):
		return StatusComplete
	case resolved > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}
