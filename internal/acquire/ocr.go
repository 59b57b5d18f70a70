package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ocrResult is the outcome of a rasterize-and-recognize pass
type ocrResult struct {
	text          string
	pages         int
	readablePages int
}

// ocrEngine rasterizes PDF pages and runs them through optical character
// recognition. Both steps shell out (pdftoppm, tesseract) through the
// Runner so tests can stub them. Rasterized pages live in a temp directory
// that is removed on every exit path.
type ocrEngine struct {
	pdftoppm  string
	tesseract string
	lang      string
	dpi       int
	runner    Runner
}

func newOCREngine(pdftoppm, tesseract, lang string, dpi int, runner Runner) *ocrEngine {
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	if tesseract == "" {
		tesseract = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &ocrEngine{pdftoppm: pdftoppm, tesseract: tesseract, lang: lang, dpi: dpi, runner: runner}
}

// extract rasterizes every page to PNG and recognizes each one. A page
// whose recognition fails is skipped; only zero recognized pages is an
// error.
func (e *ocrEngine) extract(ctx context.Context, path string) (ocrResult, error) {
	tmpDir, err := os.MkdirTemp("", "invoice-ocr-*")
	if err != nil {
		return ocrResult{}, fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.pdftoppm, "-r", fmt.Sprintf("%d", e.dpi), "-png", path, prefix)
	if err != nil {
		return ocrResult{}, fmt.Errorf("rasterize %s: %w (%s)", path, err, strings.TrimSpace(string(errb)))
	}

	// pdftoppm names pages prefix-1.png, prefix-2.png, ...
	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if len(images) == 0 {
		return ocrResult{}, fmt.Errorf("rasterize %s: no pages rendered", path)
	}

	var builder strings.Builder
	res := ocrResult{pages: len(images)}
	for _, img := range images {
		out, _, err := e.runner.Run(ctx, e.tesseract, img, "stdout", "-l", e.lang)
		if err != nil {
			continue
		}
		res.readablePages++
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(string(out))
	}

	if res.readablePages == 0 {
		return res, fmt.Errorf("ocr %s: no pages recognized", path)
	}

	res.text = builder.String()
	return res, nil
}
