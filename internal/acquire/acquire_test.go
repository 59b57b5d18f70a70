package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner stubs pdftoppm and tesseract. The pdftoppm stub writes the
// page images the real binary would, so the glob in the OCR engine finds
// them; the tesseract stub returns canned page text.
type fakeRunner struct {
	pages        int
	pageText     map[int]string // 1-based page -> recognized text
	failPages    map[int]bool   // 1-based page -> tesseract fails
	rasterizeErr error
	calls        []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)

	switch name {
	case "pdftoppm":
		if f.rasterizeErr != nil {
			return nil, []byte("Syntax Error: couldn't read xref table"), f.rasterizeErr
		}
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			img := fmt.Sprintf("%s-%d.png", prefix, i)
			if err := os.WriteFile(img, []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil

	case "tesseract":
		img := args[0]
		var page int
		fmt.Sscanf(filepath.Base(img), "page-%d.png", &page)
		if f.failPages[page] {
			return nil, []byte("Error in pixReadStream"), errors.New("exit status 1")
		}
		return []byte(f.pageText[page]), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected command %q", name)
}

// garbagePDF writes a file that the direct text-layer reader cannot open,
// forcing the OCR fallback.
func garbagePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not really a pdf"), 0o600))
	return path
}

func TestAcquirer_OCRFallback(t *testing.T) {
	runner := &fakeRunner{
		pages: 2,
		pageText: map[int]string{
			1: "Invoice Number: INV-42\nInvoice Date: 2024-03-14\n",
			2: "Grand Total: $99.00\n",
		},
	}
	a := NewAcquirer(Config{YieldThreshold: 10}, nil).WithRunner(runner)

	doc, err := a.Acquire(context.Background(), garbagePDF(t))
	require.NoError(t, err)

	assert.Equal(t, ModeOCR, doc.Mode)
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, "scan.pdf", doc.Name)
	assert.Contains(t, doc.Text, "INV-42")
	assert.Contains(t, doc.Text, "$99.00")
	assert.Equal(t, nonWhitespaceLen(doc.Text), doc.Yield)
	assert.Contains(t, runner.calls, "pdftoppm")
}

func TestAcquirer_OCRSkipsUnreadablePages(t *testing.T) {
	runner := &fakeRunner{
		pages: 3,
		pageText: map[int]string{
			1: "Invoice Number: INV-1 with enough surrounding text\n",
			3: "Total: 12.00 and some more characters here\n",
		},
		failPages: map[int]bool{2: true},
	}
	a := NewAcquirer(Config{YieldThreshold: 10}, nil).WithRunner(runner)

	doc, err := a.Acquire(context.Background(), garbagePDF(t))
	require.NoError(t, err)

	assert.Equal(t, 3, doc.Pages)
	assert.Contains(t, doc.Text, "INV-1")
	assert.Contains(t, doc.Text, "12.00")
}

func TestAcquirer_RasterizeFailureIsAcquisitionError(t *testing.T) {
	runner := &fakeRunner{rasterizeErr: errors.New("exit status 1")}
	a := NewAcquirer(Config{}, nil).WithRunner(runner)

	_, err := a.Acquire(context.Background(), garbagePDF(t))
	require.Error(t, err)

	var aerr *TextAcquisitionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Reason, "rasterize")
}

func TestAcquirer_OCRYieldBelowThreshold(t *testing.T) {
	runner := &fakeRunner{
		pages:    1,
		pageText: map[int]string{1: "a b"},
	}
	a := NewAcquirer(Config{YieldThreshold: 50}, nil).WithRunner(runner)

	_, err := a.Acquire(context.Background(), garbagePDF(t))
	require.Error(t, err)

	var aerr *TextAcquisitionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Reason, "below threshold")
}

func TestAcquirer_NoPagesRecognized(t *testing.T) {
	runner := &fakeRunner{
		pages:     1,
		failPages: map[int]bool{1: true},
	}
	a := NewAcquirer(Config{}, nil).WithRunner(runner)

	_, err := a.Acquire(context.Background(), garbagePDF(t))
	require.Error(t, err)

	var aerr *TextAcquisitionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Reason, "no pages recognized")
}

func TestAcquirer_ConfigDefaults(t *testing.T) {
	a := NewAcquirer(Config{}, nil)
	assert.Equal(t, 50, a.cfg.YieldThreshold)
	assert.Equal(t, int64(100*1024*1024), a.cfg.MaxFileSize)
}

func TestNonWhitespaceLen(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"abc", 3},
		{" a b c ", 3},
		{"Invoice\nNo: 7", 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nonWhitespaceLen(tt.in), "input %q", tt.in)
	}
}

func TestTextAcquisitionError_Message(t *testing.T) {
	err := &TextAcquisitionError{Path: "/tmp/x.pdf", Reason: "no pages recognized"}
	assert.Equal(t, "text acquisition failed for /tmp/x.pdf: no pages recognized", err.Error())
}
