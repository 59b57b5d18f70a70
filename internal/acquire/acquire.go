// Package acquire obtains raw page text for invoice documents. It tries the
// PDF's embedded text layer first and falls back to rasterization plus OCR
// when the text yield is below the usability threshold.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Mode tags where a document's text came from
type Mode string

const (
	ModeDirect Mode = "direct"
	ModeOCR    Mode = "ocr"
)

// Document is one input PDF after text acquisition. Immutable once built.
type Document struct {
	Path  string
	Name  string
	Pages int
	Text  string
	Mode  Mode
	Yield int // non-whitespace character count of Text
}

// TextAcquisitionError means no page yielded usable text even after the OCR
// fallback. It is fatal to the document, never to the batch.
type TextAcquisitionError struct {
	Path   string
	Reason string
}

func (e *TextAcquisitionError) Error() string {
	return fmt.Sprintf("text acquisition failed for %s: %s", e.Path, e.Reason)
}

// Config holds acquisition tunables
type Config struct {
	YieldThreshold int   // min non-whitespace chars before OCR kicks in
	MaxFileSize    int64 // max PDF size in bytes
	OCRDPI         int
	PdftoppmBin    string
	TesseractBin   string
	TesseractLang  string
}

// Acquirer runs the two-stage acquisition pipeline: direct attempt, then a
// conditional OCR fallback governed by the yield threshold.
type Acquirer struct {
	cfg    Config
	reader *directReader
	ocr    *ocrEngine
	logger *slog.Logger
}

// NewAcquirer creates an acquirer with the given configuration. Zero values
// select the defaults (yield threshold 50, 100MB max file, 300 DPI).
func NewAcquirer(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.YieldThreshold <= 0 {
		cfg.YieldThreshold = 50
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 100 * 1024 * 1024
	}
	return &Acquirer{
		cfg:    cfg,
		reader: newDirectReader(cfg.MaxFileSize),
		ocr:    newOCREngine(cfg.PdftoppmBin, cfg.TesseractBin, cfg.TesseractLang, cfg.OCRDPI, execRunner{logger: logger}),
		logger: logger,
	}
}

// WithRunner swaps the command runner used for rasterization and OCR.
// Intended for tests.
func (a *Acquirer) WithRunner(r Runner) *Acquirer {
	a.ocr = newOCREngine(a.cfg.PdftoppmBin, a.cfg.TesseractBin, a.cfg.TesseractLang, a.cfg.OCRDPI, r)
	return a
}

// Acquire returns the full concatenated page text for the document at path,
// tagged with the acquisition mode that produced it.
func (a *Acquirer) Acquire(ctx context.Context, path string) (*Document, error) {
	// Structural validation up front. A file that fails strict validation
	// may still rasterize, so this only logs.
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		a.logger.Warn("pdf validation failed, continuing", "path", path, "error", err)
	}

	direct, directErr := a.reader.extract(path)
	yield := nonWhitespaceLen(direct.text)

	if directErr == nil && yield >= a.cfg.YieldThreshold {
		a.logger.Debug("direct extraction ok",
			"path", path, "pages", direct.pages, "readable_pages", direct.readablePages, "yield", yield)
		return &Document{
			Path:  path,
			Name:  baseName(path),
			Pages: direct.pages,
			Text:  direct.text,
			Mode:  ModeDirect,
			Yield: yield,
		}, nil
	}

	if directErr != nil {
		a.logger.Info("direct extraction failed, trying ocr", "path", path, "error", directErr)
	} else {
		a.logger.Info("text yield below threshold, trying ocr",
			"path", path, "yield", yield, "threshold", a.cfg.YieldThreshold)
	}

	ocr, err := a.ocr.extract(ctx, path)
	if err != nil {
		return nil, &TextAcquisitionError{Path: path, Reason: err.Error()}
	}
	ocrYield := nonWhitespaceLen(ocr.text)
	if ocrYield < a.cfg.YieldThreshold {
		return nil, &TextAcquisitionError{
			Path:   path,
			Reason: fmt.Sprintf("ocr yield %d below threshold %d", ocrYield, a.cfg.YieldThreshold),
		}
	}

	pages := ocr.pages
	if direct.pages > pages {
		pages = direct.pages
	}
	a.logger.Debug("ocr extraction ok",
		"path", path, "pages", pages, "readable_pages", ocr.readablePages, "yield", ocrYield)
	return &Document{
		Path:  path,
		Name:  baseName(path),
		Pages: pages,
		Text:  ocr.text,
		Mode:  ModeOCR,
		Yield: ocrYield,
	}, nil
}

func baseName(path string) string {
	return filepath.Base(path)
}

// nonWhitespaceLen is the yield metric: the count of non-whitespace runes
func nonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
