// Package batch runs the extraction engine over a directory of invoice
// PDFs and persists the aggregate record artifact consumed by the
// transcription workflows.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/internal/extract"
)

// Summary counts per-document outcomes for the whole run
type Summary struct {
	Total    int `json:"total"`
	Complete int `json:"complete"`
	Partial  int `json:"partial"`
	Failed   int `json:"failed"`
}

// Result is the batch output artifact: one record per document, indexed by
// file name, plus run identity and the outcome summary.
type Result struct {
	RunID     string                     `json:"run_id"`
	Directory string                     `json:"directory"`
	StartedAt time.Time                  `json:"started_at"`
	Documents map[string]*extract.Record `json:"documents"`
	Summary   Summary                    `json:"summary"`
}

// Runner processes all PDFs in a directory. Documents are independent, so
// they may be processed in parallel; the pattern bank behind the engine is
// immutable shared state and needs no locking.
type Runner struct {
	engine  *extract.Engine
	workers int
	logger  *slog.Logger
}

// NewRunner creates a batch runner. workers <= 1 selects sequential
// processing.
func NewRunner(engine *extract.Engine, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{engine: engine, workers: workers, logger: logger}
}

// Run extracts every PDF in the directory. Per-document failures land in
// that document's record; only infrastructure errors (missing directory)
// abort the run.
func (r *Runner) Run(ctx context.Context, dir string) (*Result, error) {
	files, err := findPDFs(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Directory: dir,
		StartedAt: time.Now().UTC(),
		Documents: make(map[string]*extract.Record, len(files)),
	}

	r.logger.Info("batch started", "run_id", result.RunID, "dir", dir, "files", len(files), "workers", r.workers)

	records := make([]*extract.Record, len(files))
	if r.workers == 1 {
		for i, f := range files {
			records[i] = r.extractOne(ctx, f)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, r.workers)
		for i, f := range files {
			wg.Add(1)
			go func(i int, f string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				records[i] = r.extractOne(ctx, f)
			}(i, f)
		}
		wg.Wait()
	}

	for _, rec := range records {
		if rec == nil {
			continue // cancelled before this document started
		}
		result.Documents[rec.File] = rec
		result.Summary.Total++
		switch rec.Status {
		case extract.StatusComplete:
			result.Summary.Complete++
		case extract.StatusPartial:
			result.Summary.Partial++
		case extract.StatusFailed:
			result.Summary.Failed++
		}
	}

	r.logger.Info("batch finished",
		"run_id", result.RunID,
		"total", result.Summary.Total,
		"complete", result.Summary.Complete,
		"partial", result.Summary.Partial,
		"failed", result.Summary.Failed,
	)
	return result, nil
}

// extractOne isolates a single document: a panic or error there must not
// take down the batch.
func (r *Runner) extractOne(ctx context.Context, path string) *extract.Record {
	rec, err := r.engine.ExtractFile(ctx, path)
	if err != nil {
		// Only context cancellation reaches here.
		r.logger.Warn("document abandoned", "path", path, "error", err)
		return nil
	}
	return rec
}

// findPDFs lists the PDF files in dir in a stable order
func findPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read input directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
