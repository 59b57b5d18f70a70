package descriptions

// Tool descriptions with practical examples and use cases

const (
	InvoiceExtractFileDescription = `Extract structured invoice fields (invoice number, date, total amount) from one PDF.

**When to use:** Need the key fields of a single invoice as structured data.

**Why it's useful:** Handles the wide variation in invoice layouts and labels, falls back to OCR for scanned documents, and normalizes dates to ISO form and amounts to plain decimals.

**Examples:**
• Extract fields from a specific file: "Extract the fields from invoices/acme-march.pdf"
• Answer a spot question: "What is the total amount on receipt-0042.pdf?"

**Best practices:** Check the per-field status in the response: 'ambiguous' or 'missing' fields and 'ocr' acquisition mode warrant manual review.`

	InvoiceExtractDirectoryDescription = `Extract invoice fields from every PDF in a directory and summarize the batch.

**When to use:** Need structured records for a whole folder of invoices at once.

**Why it's useful:** Each document is processed independently; one unreadable file never aborts the batch. The response includes complete/partial/failed counts plus the per-document records.

**Examples:**
• Bulk processing: "Process all invoices in the inbox directory"
• Triage: "How many invoices in ./2024-q3 failed extraction?"`

	InvoiceServerInfoDescription = `Get server information: configuration, available tools, and the PDF files visible in the configured directory.

**When to use:** Starting a session, or unsure which directory the server is pointed at.`
)
