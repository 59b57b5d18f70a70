// invoice-fields is a small debugging tool: it extracts the fields of a
// single invoice PDF and prints the record as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/docuflow/invoice-extractor/internal/acquire"
	"github.com/docuflow/invoice-extractor/internal/extract"
	"github.com/docuflow/invoice-extractor/internal/normalize"
	"github.com/docuflow/invoice-extractor/internal/patterns"
	"github.com/docuflow/invoice-extractor/internal/resolve"
)

var (
	monthFirst = flag.Bool("month-first", false, "Read ambiguous numeric dates as month/day/year")
	threshold  = flag.Int("yield-threshold", 50, "Non-whitespace char count below which OCR fallback runs")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <invoice.pdf>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	acquirer := acquire.NewAcquirer(acquire.Config{YieldThreshold: *threshold}, logger)
	resolver := resolve.NewResolver(patterns.DefaultBank(), 0, logger)
	engine := extract.NewEngine(acquirer, resolver, normalize.NewNormalizer(*monthFirst), logger)

	rec, err := engine.ExtractFile(context.Background(), flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding record: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
