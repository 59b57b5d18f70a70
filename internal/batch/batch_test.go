package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/invoice-extractor/internal/acquire"
	"github.com/docuflow/invoice-extractor/internal/extract"
	"github.com/docuflow/invoice-extractor/internal/normalize"
	"github.com/docuflow/invoice-extractor/internal/patterns"
	"github.com/docuflow/invoice-extractor/internal/resolve"
)

func newTestRunner(t *testing.T, workers int) *Runner {
	t.Helper()
	engine := extract.NewEngine(
		acquire.NewAcquirer(acquire.Config{}, nil),
		resolve.NewResolver(patterns.DefaultBank(), 0, nil),
		normalize.NewNormalizer(false),
		nil,
	)
	return NewRunner(engine, workers, nil)
}

// writeUnreadablePDFs seeds a directory with files carrying a .pdf extension
// but no parseable content; their records must come back failed, not error.
func writeUnreadablePDFs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("garbage"), 0o600))
	}
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	writeUnreadablePDFs(t, dir, "b.pdf", "a.PDF", "c.pdf")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o750))

	files, err := findPDFs(dir)
	require.NoError(t, err)

	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "a.PDF"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.pdf"), files[1])
	assert.Equal(t, filepath.Join(dir, "c.pdf"), files[2])
}

func TestFindPDFs_MissingDirectory(t *testing.T) {
	_, err := findPDFs(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read input directory")
}

func TestRunner_ContainsDocumentFailures(t *testing.T) {
	dir := t.TempDir()
	writeUnreadablePDFs(t, dir, "one.pdf", "two.pdf")

	result, err := newTestRunner(t, 1).Run(context.Background(), dir)
	require.NoError(t, err, "document failures must not abort the batch")

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, dir, result.Directory)
	assert.False(t, result.StartedAt.IsZero())

	assert.Equal(t, 2, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.Failed)
	assert.Equal(t, 0, result.Summary.Complete)

	require.Len(t, result.Documents, 2)
	for name, rec := range result.Documents {
		assert.Equal(t, extract.StatusFailed, rec.Status, "record %s", name)
		assert.NotEmpty(t, rec.Error, "record %s", name)
	}
}

func TestRunner_EmptyDirectory(t *testing.T) {
	result, err := newTestRunner(t, 1).Run(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Summary.Total)
	assert.Empty(t, result.Documents)
}

func TestRunner_MissingDirectoryAborts(t *testing.T) {
	_, err := newTestRunner(t, 1).Run(context.Background(), "/no/such/dir")
	require.Error(t, err)
}

func TestRunner_ParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	writeUnreadablePDFs(t, dir, "a.pdf", "b.pdf", "c.pdf")

	seq, err := newTestRunner(t, 1).Run(context.Background(), dir)
	require.NoError(t, err)
	par, err := newTestRunner(t, 4).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, seq.Summary, par.Summary)
	assert.Len(t, par.Documents, len(seq.Documents))
	for name := range seq.Documents {
		assert.Contains(t, par.Documents, name)
	}
}

func TestRunner_Cancellation(t *testing.T) {
	dir := t.TempDir()
	writeUnreadablePDFs(t, dir, "a.pdf", "b.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestRunner(t, 1).Run(ctx, dir)
	require.NoError(t, err)

	// Nothing started, so nothing is recorded.
	assert.Equal(t, 0, result.Summary.Total)
	assert.Empty(t, result.Documents)
}

func TestArtifactRoundTrip(t *testing.T) {
	num := "INV-1"
	date := "2024-03-14"
	amount := 99.95
	result := &Result{
		RunID:     "run-123",
		Directory: "/invoices",
		Documents: map[string]*extract.Record{
			"a.pdf": {
				File:          "a.pdf",
				Pages:         1,
				Mode:          acquire.ModeDirect,
				InvoiceNumber: &num,
				InvoiceDate:   &date,
				TotalAmount:   &amount,
				Status:        extract.StatusComplete,
			},
		},
		Summary: Summary{Total: 1, Complete: 1},
	}

	path := filepath.Join(t.TempDir(), "out", "records.json")
	require.NoError(t, WriteArtifact(path, result))

	loaded, err := ReadArtifact(path)
	require.NoError(t, err)

	assert.Equal(t, result.RunID, loaded.RunID)
	assert.Equal(t, result.Summary, loaded.Summary)
	require.Contains(t, loaded.Documents, "a.pdf")
	rec := loaded.Documents["a.pdf"]
	require.NotNil(t, rec.InvoiceNumber)
	assert.Equal(t, "INV-1", *rec.InvoiceNumber)
	require.NotNil(t, rec.TotalAmount)
	assert.Equal(t, 99.95, *rec.TotalAmount)
	assert.Equal(t, extract.StatusComplete, rec.Status)
}

func TestReadArtifact_Errors(t *testing.T) {
	_, err := ReadArtifact(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = ReadArtifact(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse artifact")
}
