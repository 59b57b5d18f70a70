package acquire

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// directResult is the outcome of a text-layer extraction pass
type directResult struct {
	text          string
	pages         int
	readablePages int
}

// directReader extracts the embedded text layer of a PDF page by page
type directReader struct {
	maxFileSize int64
}

func newDirectReader(maxFileSize int64) *directReader {
	return &directReader{maxFileSize: maxFileSize}
}

// extract concatenates page text in page order. A single corrupt page does
// not abort the document: its text is skipped and extraction continues.
// Only zero readable pages is an error.
func (r *directReader) extract(path string) (directResult, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return directResult{}, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return directResult{}, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return directResult{}, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if fileInfo.Size() == 0 {
		return directResult{}, fmt.Errorf("file is empty: %s", path)
	}
	if fileInfo.Size() > r.maxFileSize {
		return directResult{}, fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), r.maxFileSize)
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return directResult{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var builder strings.Builder
	res := directResult{pages: pdfReader.NumPage()}

	for pageNum := 1; pageNum <= res.pages; pageNum++ {
		content, err := extractPageText(pdfReader, pageNum)
		if err != nil {
			// Recoverable gap: skip this page and keep going.
			continue
		}
		res.readablePages++
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(content)
	}

	if res.readablePages == 0 {
		return res, fmt.Errorf("no readable pages in %s", path)
	}

	res.text = builder.String()
	return res, nil
}

// extractPageText reads one page's plain text. The underlying parser can
// panic on malformed content streams; that is converted into a page error.
func extractPageText(pdfReader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", pageNum, rec)
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d: null page object", pageNum)
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", pageNum, err)
	}
	return content, nil
}
