// Package resolve scans acquired document text against the pattern bank and
// selects one winning candidate per field type.
package resolve

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/docuflow/invoice-extractor/internal/patterns"
)

// Status is the per-field resolution outcome
type Status string

const (
	StatusResolved  Status = "resolved"
	StatusAmbiguous Status = "ambiguous"
	StatusMissing   Status = "missing"
)

// DefaultWindow is how far past a label, in bytes, a value is allowed to
// start. Wide enough to tolerate layout whitespace between a label and its
// value, narrow enough not to capture a neighboring field.
const DefaultWindow = 240

// Candidate is one textual match proposing a value for a field, before
// selection. Ephemeral: it exists only during resolution of one field.
type Candidate struct {
	PatternID string
	Raw       string
	Position  int
	Priority  int
}

// Resolution is the outcome of resolving one field type in one document.
type Resolution struct {
	Field      patterns.FieldType
	Status     Status
	Winner     *Candidate
	Candidates []Candidate
}

// Resolver matches document text against the pattern bank. It holds no
// per-document state and is safe for concurrent use.
type Resolver struct {
	bank   *patterns.Bank
	window int
	logger *slog.Logger
}

// NewResolver creates a resolver over the given bank. A window of zero or
// less selects DefaultWindow.
func NewResolver(bank *patterns.Bank, window int, logger *slog.Logger) *Resolver {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{bank: bank, window: window, logger: logger}
}

// Resolve collects all candidates for the field type and applies the
// selection rule: lowest pattern priority wins; among equal priorities the
// earliest position wins; an exact tie on both with conflicting values is
// ambiguous and yields no winner. The result is deterministic for identical
// text and an unchanged bank.
func (r *Resolver) Resolve(text string, ft patterns.FieldType) Resolution {
	res := Resolution{Field: ft, Status: StatusMissing}

	for _, p := range r.bank.ForField(ft) {
		res.Candidates = append(res.Candidates, r.scan(text, p)...)
	}
	if len(res.Candidates) == 0 {
		return res
	}

	sort.SliceStable(res.Candidates, func(i, j int) bool {
		a, b := res.Candidates[i], res.Candidates[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Position < b.Position
	})

	top := res.Candidates[0]
	for _, c := range res.Candidates[1:] {
		if c.Priority != top.Priority || c.Position != top.Position {
			break
		}
		if c.Raw != top.Raw {
			r.logger.Debug("ambiguous field",
				"field", string(ft),
				"pattern_a", top.PatternID, "value_a", top.Raw,
				"pattern_b", c.PatternID, "value_b", c.Raw,
				"position", top.Position,
			)
			res.Status = StatusAmbiguous
			return res
		}
	}

	res.Status = StatusResolved
	res.Winner = &top
	return res
}

// ResolveAll resolves every known field type against the text
func (r *Resolver) ResolveAll(text string) map[patterns.FieldType]Resolution {
	out := make(map[patterns.FieldType]Resolution, len(patterns.FieldTypes()))
	for _, ft := range patterns.FieldTypes() {
		out[ft] = r.Resolve(text, ft)
	}
	return out
}

// scan finds every occurrence of the pattern's labels and, within the
// bounded window after each label, a value matching the pattern's shape.
// Label hits with no usable value in the window are dropped.
func (r *Resolver) scan(text string, p patterns.FieldPattern) []Candidate {
	var found []Candidate

	for _, loc := range p.LabelMatcher().FindAllStringIndex(text, -1) {
		end := loc[1] + r.window
		if end > len(text) {
			end = len(text)
		}
		window := text[loc[1]:end]

		vloc := p.ValueMatcher().FindStringIndex(window)
		if vloc == nil {
			continue
		}
		raw := strings.TrimSpace(window[vloc[0]:vloc[1]])
		if raw == "" {
			continue
		}

		found = append(found, Candidate{
			PatternID: p.ID,
			Raw:       raw,
			Position:  loc[0],
			Priority:  p.Priority,
		})
	}

	return found
}
