package patterns

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Bank is the ordered collection of field patterns the resolver scans with.
// It is built once at process start and never mutated afterwards, so it is
// safe for unsynchronized concurrent reads across documents.
type Bank struct {
	byField map[FieldType][]FieldPattern
}

// NewBank compiles the given patterns into a bank. Patterns are grouped per
// field type and ordered by (priority, id) so iteration order is stable.
func NewBank(pats []FieldPattern) (*Bank, error) {
	if len(pats) == 0 {
		return nil, fmt.Errorf("no patterns provided")
	}

	byField := make(map[FieldType][]FieldPattern)
	seen := make(map[string]bool, len(pats))
	for _, p := range pats {
		if err := p.compile(); err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate pattern id %q", p.ID)
		}
		seen[p.ID] = true
		byField[p.Field] = append(byField[p.Field], p)
	}

	for ft := range byField {
		group := byField[ft]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Priority != group[j].Priority {
				return group[i].Priority < group[j].Priority
			}
			return group[i].ID < group[j].ID
		})
	}

	return &Bank{byField: byField}, nil
}

// DefaultBank returns a bank compiled from the built-in rules
func DefaultBank() *Bank {
	bank, err := NewBank(defaultPatterns())
	if err != nil {
		// The built-in rules are covered by tests; failing to compile them
		// is a programming error.
		panic(fmt.Sprintf("built-in patterns invalid: %v", err))
	}
	return bank
}

// LoadBankFile reads a JSON array of field patterns and compiles it into a
// bank, replacing the built-in rules entirely. Adding a new label variant is
// a data change here, not a code change in the resolver.
func LoadBankFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	var pats []FieldPattern
	if err := json.Unmarshal(data, &pats); err != nil {
		return nil, fmt.Errorf("parse pattern file %s: %w", path, err)
	}

	bank, err := NewBank(pats)
	if err != nil {
		return nil, fmt.Errorf("pattern file %s: %w", path, err)
	}
	return bank, nil
}

// ForField returns the patterns for one field type in priority order. The
// returned slice must not be modified.
func (b *Bank) ForField(ft FieldType) []FieldPattern {
	return b.byField[ft]
}

// Size returns the total number of patterns in the bank
func (b *Bank) Size() int {
	n := 0
	for _, group := range b.byField {
		n += len(group)
	}
	return n
}
