package patterns

// Shared value shapes. Amount shapes require at least one digit so a
// standalone currency symbol never matches on its own, and accept thousands
// grouping and a decimal part in either comma or dot convention.
const (
	identifierShape = `[A-Za-z0-9][A-Za-z0-9/\-_.]*`

	dateShape = `(?i)(?:` +
		`\d{4}-\d{2}-\d{2}` + // ISO
		`|\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}` + // numeric d/m/y or m/d/y
		`|(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}` +
		`|\d{1,2}(?:st|nd|rd|th)?\s+(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?\s+\d{4}` +
		`)`

	amountShape = `(?i)(?:USD|EUR|GBP|INR|Rs\.?|[$€£₹])?\s*\d+(?:[,. ]\d{3})*(?:[.,]\d{1,2})?`
)

// defaultPatterns returns the built-in recognition rules. Priority encodes
// which labels are more authoritative: an explicit "Invoice Number" label
// outranks a generic "Order No", even when the generic label occurs earlier
// in the text.
func defaultPatterns() []FieldPattern {
	return []FieldPattern{
		// Invoice number rules
		{
			ID:          "invoice_number_explicit",
			Field:       FieldInvoiceNumber,
			Labels:      []string{`invoice\s*(?:number|num\.?|no\.?)`, `invoice\s*#`, `inv\.?\s*(?:number|no\.?|#)`},
			ValueShape:  identifierShape,
			Priority:    1,
			Description: "Explicit invoice number label",
		},
		{
			ID:          "order_number",
			Field:       FieldInvoiceNumber,
			Labels:      []string{`order\s*(?:number|num\.?|no\.?)`, `order\s*#`},
			ValueShape:  identifierShape,
			Priority:    2,
			Description: "Order number used as invoice identifier",
		},
		{
			ID:          "reference_number",
			Field:       FieldInvoiceNumber,
			Labels:      []string{`reference\s*(?:number|no\.?)`, `ref\.?\s*(?:number|no\.?|#)`},
			ValueShape:  identifierShape,
			Priority:    3,
			Description: "Generic reference number fallback",
		},

		// Date rules
		{
			ID:          "invoice_date_explicit",
			Field:       FieldDate,
			Labels:      []string{`invoice\s*date`, `date\s+of\s+issue`, `issue\s*date`, `billing\s*date`},
			ValueShape:  dateShape,
			Priority:    1,
			Description: "Explicit invoice/issue date label",
		},
		{
			ID:          "date_generic",
			Field:       FieldDate,
			Labels:      []string{`dated?`},
			ValueShape:  dateShape,
			Priority:    2,
			Description: "Bare date label fallback",
		},

		// Total amount rules
		{
			ID:          "total_due_explicit",
			Field:       FieldTotal,
			Labels:      []string{`grand\s*total`, `total\s*(?:amount\s*)?due`, `amount\s*due`, `balance\s*due`, `total\s*payable`},
			ValueShape:  amountShape,
			Priority:    1,
			Description: "Explicit payable total label",
		},
		{
			ID:          "total_generic",
			Field:       FieldTotal,
			Labels:      []string{`total\s*amount`, `total`},
			ValueShape:  amountShape,
			Priority:    2,
			Description: "Generic total label",
		},
		{
			ID:          "amount_generic",
			Field:       FieldTotal,
			Labels:      []string{`amount`},
			ValueShape:  amountShape,
			Priority:    3,
			Description: "Bare amount label fallback",
		},
	}
}
