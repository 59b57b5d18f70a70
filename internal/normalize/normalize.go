// Package normalize converts winning raw matches into canonical values:
// ISO dates, non-negative decimal amounts, trimmed identifier strings.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error records why a raw value could not be converted to canonical form.
// It downgrades the field to missing; it never aborts the document.
type Error struct {
	Field  string
	Raw    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot normalize %s value %q: %s", e.Field, e.Raw, e.Reason)
}

// Normalizer converts raw field matches to canonical form. DateFormats are
// tried in order; the first layout that parses to a valid calendar date
// wins. MonthFirst controls how an all-numeric date like 03/04/2024 is
// read when both readings are plausible.
type Normalizer struct {
	MonthFirst bool
}

// NewNormalizer returns a normalizer. monthFirst selects US-style
// month/day/year reading for ambiguous numeric dates.
func NewNormalizer(monthFirst bool) *Normalizer {
	return &Normalizer{MonthFirst: monthFirst}
}

// Identifier trims whitespace and surrounding punctuation from an invoice
// number or similar identifier.
func (n *Normalizer) Identifier(raw string) (string, error) {
	id := strings.Trim(strings.TrimSpace(raw), `:;,.#"'()[]`)
	if id == "" {
		return "", &Error{Field: "invoice_number", Raw: raw, Reason: "empty after trimming"}
	}
	return id, nil
}

// dateLayouts are tried in order against a cleaned-up raw date. Layouts
// using month-first numeric order are swapped in ahead of day-first when
// MonthFirst is set.
var dateLayouts = []string{
	"2006-01-02",
	"2 January 2006",
	"2 January, 2006",
	"2 Jan 2006",
	"2 Jan, 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
	"2006/01/02",
}

var monthFirstLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 January, 2006",
	"2 Jan 2006",
	"2 Jan, 2006",
	"01/02/2006",
	"01-02-2006",
	"01.02.2006",
	"01/02/06",
	"2006/01/02",
}

// Date parses the raw text against the accepted date formats and returns
// the canonical ISO form (2006-01-02). Already-canonical input is returned
// unchanged.
func (n *Normalizer) Date(raw string) (string, error) {
	cleaned := cleanDate(raw)
	if cleaned == "" {
		return "", &Error{Field: "date", Raw: raw, Reason: "empty after trimming"}
	}

	layouts := dateLayouts
	if n.MonthFirst {
		layouts = monthFirstLayouts
	}
	for _, layout := range layouts {
		// time.Parse validates calendar correctness: Feb 30 or a 14th
		// month fail here and fall through to the next layout.
		t, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		return t.Format("2006-01-02"), nil
	}

	return "", &Error{Field: "date", Raw: raw, Reason: "no accepted format matched"}
}

// cleanDate strips ordinal suffixes and collapses whitespace so textual
// dates like "14th March, 2024" line up with the fixed layouts.
func cleanDate(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `:;,."'`)
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		for i := 1; i <= 31; i++ {
			s = strings.ReplaceAll(s, fmt.Sprintf("%d%s", i, suffix), strconv.Itoa(i))
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// Amount strips currency symbols, resolves comma/dot separator conventions,
// and parses a non-negative decimal. A single separator followed by exactly
// two digits is the decimal point; when both separators appear the
// rightmost one is the decimal point; remaining separators are grouping.
func (n *Normalizer) Amount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	for _, cur := range []string{"USD", "EUR", "GBP", "INR", "usd", "eur", "gbp", "inr", "Rs.", "Rs", "rs.", "rs", "$", "€", "£", "₹"} {
		s = strings.TrimPrefix(s, cur)
		s = strings.TrimSuffix(s, cur)
		s = strings.TrimSpace(s)
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, &Error{Field: "total", Raw: raw, Reason: "no digits present"}
	}
	if strings.HasPrefix(s, "-") {
		return 0, &Error{Field: "total", Raw: raw, Reason: "negative amount"}
	}

	decimal := decimalSeparator(s)
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ',', '.':
			if byte(r) == decimal {
				b.WriteByte('.')
			}
			// grouping separator, dropped
		default:
			b.WriteRune(r)
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, &Error{Field: "total", Raw: raw, Reason: "not a decimal number"}
	}
	if v < 0 {
		return 0, &Error{Field: "total", Raw: raw, Reason: "negative amount"}
	}
	return v, nil
}

// decimalSeparator decides which of ',' or '.' is the decimal point in s.
// Zero means the number has no decimal part.
func decimalSeparator(s string) byte {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the rightmost is the decimal point.
		if lastDot > lastComma {
			return '.'
		}
		return ','
	case lastDot >= 0:
		if trailingDigits(s, lastDot) == 2 || strings.Count(s, ".") == 1 && trailingDigits(s, lastDot) != 3 {
			return '.'
		}
		return 0
	case lastComma >= 0:
		if trailingDigits(s, lastComma) == 2 || strings.Count(s, ",") == 1 && trailingDigits(s, lastComma) != 3 {
			return ','
		}
		return 0
	}
	return 0
}

// trailingDigits counts digits after the separator at position i
func trailingDigits(s string, i int) int {
	return len(s) - i - 1
}
