package patterns

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType identifies one of the data points the engine extracts
type FieldType string

const (
	FieldInvoiceNumber FieldType = "invoice_number"
	FieldDate          FieldType = "date"
	FieldTotal         FieldType = "total"
)

// FieldTypes lists all extractable field types in a stable order
func FieldTypes() []FieldType {
	return []FieldType{FieldInvoiceNumber, FieldDate, FieldTotal}
}

// Valid reports whether ft is a known field type
func (ft FieldType) Valid() bool {
	switch ft {
	case FieldInvoiceNumber, FieldDate, FieldTotal:
		return true
	}
	return false
}

// FieldPattern is one recognition rule: a set of label alternatives for a
// field, the shape the raw value must match, and a priority that ranks this
// rule against other rules for the same field (lower = more authoritative).
type FieldPattern struct {
	ID          string    `json:"id"`
	Field       FieldType `json:"field"`
	Labels      []string  `json:"labels"`
	ValueShape  string    `json:"value_shape"`
	Priority    int       `json:"priority"`
	Description string    `json:"description,omitempty"`

	labelRe *regexp.Regexp
	valueRe *regexp.Regexp
}

// compile builds the label and value matchers. Labels are regex fragments
// joined as case-insensitive alternatives, each anchored on a word boundary
// and allowed an optional ":"/"-"/"#" separator after the label text.
func (p *FieldPattern) compile() error {
	if p.ID == "" {
		return fmt.Errorf("pattern has no id")
	}
	if !p.Field.Valid() {
		return fmt.Errorf("pattern %s: unknown field type %q", p.ID, p.Field)
	}
	if len(p.Labels) == 0 {
		return fmt.Errorf("pattern %s: no label alternatives", p.ID)
	}
	if p.ValueShape == "" {
		return fmt.Errorf("pattern %s: no value shape", p.ID)
	}

	labelExpr := fmt.Sprintf(`(?i)\b(?:%s)\s*[:\-]?`, strings.Join(p.Labels, "|"))
	labelRe, err := regexp.Compile(labelExpr)
	if err != nil {
		return fmt.Errorf("pattern %s: bad label expression: %w", p.ID, err)
	}

	valueRe, err := regexp.Compile(p.ValueShape)
	if err != nil {
		return fmt.Errorf("pattern %s: bad value shape: %w", p.ID, err)
	}

	p.labelRe = labelRe
	p.valueRe = valueRe
	return nil
}

// LabelMatcher returns the compiled label matcher
func (p *FieldPattern) LabelMatcher() *regexp.Regexp {
	return p.labelRe
}

// ValueMatcher returns the compiled value-shape matcher
func (p *FieldPattern) ValueMatcher() *regexp.Regexp {
	return p.valueRe
}
