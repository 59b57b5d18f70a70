package normalize

import (
	"errors"
	"testing"
)

func TestNormalizer_Date(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		monthFirst bool
		want       string
		wantErr    bool
	}{
		{name: "iso passthrough", raw: "2024-03-14", want: "2024-03-14"},
		{name: "iso is idempotent", raw: "2024-12-01", want: "2024-12-01"},
		{name: "day month year", raw: "14/03/2024", want: "2024-03-14"},
		{name: "day month year dashes", raw: "14-03-2024", want: "2024-03-14"},
		{name: "day month year dots", raw: "14.03.2024", want: "2024-03-14"},
		{name: "us format when enabled", raw: "03/14/2024", monthFirst: true, want: "2024-03-14"},
		{name: "us format rejected when disabled", raw: "03/14/2024", wantErr: true},
		{name: "textual month", raw: "March 14, 2024", want: "2024-03-14"},
		{name: "textual month no comma", raw: "March 14 2024", want: "2024-03-14"},
		{name: "abbreviated month", raw: "Mar 14, 2024", want: "2024-03-14"},
		{name: "day first textual", raw: "14 March 2024", want: "2024-03-14"},
		{name: "ordinal suffix", raw: "14th March, 2024", want: "2024-03-14"},
		{name: "trailing punctuation", raw: "2024-03-14.", want: "2024-03-14"},
		{name: "invalid calendar date", raw: "30/02/2024", wantErr: true},
		{name: "month out of range", raw: "14/14/2024", wantErr: true},
		{name: "not a date", raw: "hello world", wantErr: true},
		{name: "empty", raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.monthFirst)
			got, err := n.Date(tt.raw)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				var nerr *Error
				if !errors.As(err, &nerr) {
					t.Errorf("expected *Error, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Date(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Amount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "dollar with thousands", raw: "$1,234.56", want: 1234.56},
		{name: "plain decimal", raw: "1234.56", want: 1234.56},
		{name: "decimal is idempotent", raw: "1234.56", want: 1234.56},
		{name: "european convention", raw: "1.234,56", want: 1234.56},
		{name: "comma decimal", raw: "99,50", want: 99.50},
		{name: "comma grouping only", raw: "1,234", want: 1234},
		{name: "dot grouping only", raw: "1.234", want: 1234},
		{name: "integer", raw: "250", want: 250},
		{name: "currency word", raw: "USD 42.00", want: 42},
		{name: "rupee prefix", raw: "Rs. 1,500", want: 1500},
		{name: "euro symbol", raw: "€89.99", want: 89.99},
		{name: "single decimal digit", raw: "5.5", want: 5.5},
		{name: "negative rejected", raw: "-10.00", wantErr: true},
		{name: "symbol only", raw: "$", wantErr: true},
		{name: "garbage", raw: "abc", wantErr: true},
		{name: "empty", raw: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(false)
			got, err := n.Amount(tt.raw)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Amount(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Identifier(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "clean", raw: "INV-2024-001", want: "INV-2024-001"},
		{name: "surrounding whitespace", raw: "  INV-7  ", want: "INV-7"},
		{name: "surrounding punctuation", raw: "#INV-7.", want: "INV-7"},
		{name: "already canonical", raw: "A100", want: "A100"},
		{name: "only punctuation", raw: ":#.", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(false)
			got, err := n.Identifier(tt.raw)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Identifier(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Field: "total", Raw: "abc", Reason: "not a decimal number"}
	want := `cannot normalize total value "abc": not a decimal number`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
