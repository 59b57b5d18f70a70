package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/docuflow/invoice-extractor/internal/extract"
)

// SheetConfig configures the browser-sheet workflow
type SheetConfig struct {
	URL      string
	Headless bool
	Timeout  time.Duration // per-record typing budget
}

// SheetTranscriber types record fields into a web-based spreadsheet over
// the devtools protocol: each field is typed into the focused cell, Tab
// advances to the next column, Enter moves to the next row.
type SheetTranscriber struct {
	cfg     SheetConfig
	ctx     context.Context
	cancels []context.CancelFunc
	logger  *slog.Logger
}

// NewSheetTranscriber starts the browser and opens the sheet
func NewSheetTranscriber(cfg SheetConfig, logger *slog.Logger) (*SheetTranscriber, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("sheet URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	t := &SheetTranscriber{
		cfg:     cfg,
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		logger:  logger,
	}

	openCtx, cancel := context.WithTimeout(browserCtx, 60*time.Second)
	defer cancel()
	if err := chromedp.Run(openCtx,
		chromedp.Navigate(cfg.URL),
		chromedp.WaitReady("body"),
	); err != nil {
		t.closeBrowser()
		return nil, fmt.Errorf("open sheet %s: %w", cfg.URL, err)
	}

	logger.Info("sheet opened", "url", cfg.URL, "headless", cfg.Headless)
	return t, nil
}

// Transcribe types one record into the current row of the sheet
func (t *SheetTranscriber) Transcribe(ctx context.Context, rec *extract.Record) (Outcome, error) {
	runCtx, cancel := context.WithTimeout(t.ctx, t.cfg.Timeout)
	defer cancel()

	// Honor caller cancellation even though typing runs on the browser
	// context.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	fields := []string{
		fieldOrEmpty(rec.InvoiceNumber),
		fieldOrEmpty(rec.InvoiceDate),
		amountOrEmpty(rec.TotalAmount),
	}

	var actions []chromedp.Action
	for i, v := range fields {
		actions = append(actions, chromedp.KeyEvent(v))
		if i < len(fields)-1 {
			actions = append(actions, chromedp.KeyEvent(kb.Tab))
		}
	}
	actions = append(actions, chromedp.KeyEvent(kb.Enter))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return Outcome{}, fmt.Errorf("type record for %s: %w", rec.File, err)
	}

	t.logger.Debug("record typed", "file", rec.File)
	return Outcome{File: rec.File, OK: true, Detail: "typed into sheet"}, nil
}

// Close shuts the browser down
func (t *SheetTranscriber) Close() error {
	t.closeBrowser()
	return nil
}

func (t *SheetTranscriber) closeBrowser() {
	for _, cancel := range t.cancels {
		cancel()
	}
}
