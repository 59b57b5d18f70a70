package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeBatch = "batch"
	ModeMCP   = "mcp"

	// Transcription target constants
	TranscribeNone  = "none"
	TranscribeExcel = "excel"
	TranscribeSheet = "sheet"

	// Default values
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB
	DefaultYieldThreshold = 50
	DefaultResolverWindow = 240
	DefaultOCRDPI         = 300
	DefaultWorkers        = 1
)

// Config holds all configuration for the invoice extractor
type Config struct {
	// Run configuration
	Mode     string // "batch" or "mcp"
	InputDir string
	Output   string // batch artifact path

	// Extraction configuration
	PatternFile    string // optional JSON pattern bank override
	YieldThreshold int    // non-whitespace chars below which OCR kicks in
	ResolverWindow int    // max bytes between a label and its value
	MaxFileSize    int64  // maximum PDF file size in bytes
	MonthFirst     bool   // read ambiguous numeric dates as month/day/year
	Workers        int    // parallel documents in a batch

	// OCR configuration
	OCRDPI        int
	PdftoppmBin   string
	TesseractBin  string
	TesseractLang string

	// Transcription configuration
	Transcribe    string // "none", "excel" or "sheet"
	ExcelPath     string
	SheetURL      string
	SheetHeadless bool

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeBatch,
		InputDir:       currentDir,
		Output:         "invoices.json",
		YieldThreshold: DefaultYieldThreshold,
		ResolverWindow: DefaultResolverWindow,
		MaxFileSize:    DefaultMaxFileSize,
		MonthFirst:     false,
		Workers:        DefaultWorkers,
		OCRDPI:         DefaultOCRDPI,
		PdftoppmBin:    "pdftoppm",
		TesseractBin:   "tesseract",
		TesseractLang:  "eng",
		Transcribe:     TranscribeNone,
		ExcelPath:      "invoices.xlsx",
		SheetHeadless:  true,
		Version:        "1.0.0",
		ServerName:     "invoice-extractor",
		LogLevel:       DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.InputDir != "" {
		if expandedPath, err := filepath.Abs(cfg.InputDir); err == nil {
			cfg.InputDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("INVOICE")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("dir", cfg.InputDir)
	viper.SetDefault("output", cfg.Output)
	viper.SetDefault("patterns", cfg.PatternFile)
	viper.SetDefault("yield_threshold", cfg.YieldThreshold)
	viper.SetDefault("window", cfg.ResolverWindow)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("month_first", cfg.MonthFirst)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("ocr_dpi", cfg.OCRDPI)
	viper.SetDefault("pdftoppm", cfg.PdftoppmBin)
	viper.SetDefault("tesseract", cfg.TesseractBin)
	viper.SetDefault("ocr_lang", cfg.TesseractLang)
	viper.SetDefault("transcribe", cfg.Transcribe)
	viper.SetDefault("excel", cfg.ExcelPath)
	viper.SetDefault("sheet_url", cfg.SheetURL)
	viper.SetDefault("sheet_headless", cfg.SheetHeadless)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'batch' to process a directory, 'mcp' to serve extraction tools over stdio")
	pflag.String("dir", cfg.InputDir, "Directory containing invoice PDF files")
	pflag.String("output", cfg.Output, "Path of the batch record artifact (JSON)")
	pflag.String("patterns", cfg.PatternFile, "Optional JSON file replacing the built-in pattern bank")
	pflag.Int("yield-threshold", cfg.YieldThreshold, "Non-whitespace character count below which OCR fallback runs")
	pflag.Int("window", cfg.ResolverWindow, "Maximum distance in bytes between a field label and its value")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Bool("month-first", cfg.MonthFirst, "Read ambiguous numeric dates as month/day/year (US convention)")
	pflag.Int("workers", cfg.Workers, "Number of documents processed in parallel")
	pflag.Int("ocr-dpi", cfg.OCRDPI, "Rasterization DPI for the OCR fallback")
	pflag.String("pdftoppm", cfg.PdftoppmBin, "pdftoppm binary name or path")
	pflag.String("tesseract", cfg.TesseractBin, "tesseract binary name or path")
	pflag.String("ocr-lang", cfg.TesseractLang, "Tesseract language")
	pflag.String("transcribe", cfg.Transcribe, "Transcription target after extraction: 'none', 'excel' or 'sheet'")
	pflag.String("excel", cfg.ExcelPath, "Target workbook path for excel transcription")
	pflag.String("sheet-url", cfg.SheetURL, "Web spreadsheet URL for sheet transcription")
	pflag.Bool("sheet-headless", cfg.SheetHeadless, "Run the browser headless for sheet transcription")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("output", pflag.Lookup("output"))
	_ = viper.BindPFlag("patterns", pflag.Lookup("patterns"))
	_ = viper.BindPFlag("yield_threshold", pflag.Lookup("yield-threshold"))
	_ = viper.BindPFlag("window", pflag.Lookup("window"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("month_first", pflag.Lookup("month-first"))
	_ = viper.BindPFlag("workers", pflag.Lookup("workers"))
	_ = viper.BindPFlag("ocr_dpi", pflag.Lookup("ocr-dpi"))
	_ = viper.BindPFlag("pdftoppm", pflag.Lookup("pdftoppm"))
	_ = viper.BindPFlag("tesseract", pflag.Lookup("tesseract"))
	_ = viper.BindPFlag("ocr_lang", pflag.Lookup("ocr-lang"))
	_ = viper.BindPFlag("transcribe", pflag.Lookup("transcribe"))
	_ = viper.BindPFlag("excel", pflag.Lookup("excel"))
	_ = viper.BindPFlag("sheet_url", pflag.Lookup("sheet-url"))
	_ = viper.BindPFlag("sheet_headless", pflag.Lookup("sheet-headless"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nInvoice Extractor - parses invoice PDFs into structured records\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/invoices                        # extract, write invoices.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=./in --transcribe=excel --excel=out.xlsx # extract and fill a workbook\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=./in --transcribe=sheet --sheet-url=URL  # extract and fill a web sheet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=mcp --dir=/path/to/invoices             # serve extraction tools over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (prefix INVOICE_):\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_DIR              Input directory\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_OUTPUT           Artifact path\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_YIELD_THRESHOLD  OCR fallback threshold\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_MONTH_FIRST      US-style numeric dates\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_LOGLEVEL         Log level\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.InputDir = viper.GetString("dir")
	cfg.Output = viper.GetString("output")
	cfg.PatternFile = viper.GetString("patterns")
	cfg.YieldThreshold = viper.GetInt("yield_threshold")
	cfg.ResolverWindow = viper.GetInt("window")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MonthFirst = viper.GetBool("month_first")
	cfg.Workers = viper.GetInt("workers")
	cfg.OCRDPI = viper.GetInt("ocr_dpi")
	cfg.PdftoppmBin = viper.GetString("pdftoppm")
	cfg.TesseractBin = viper.GetString("tesseract")
	cfg.TesseractLang = viper.GetString("ocr_lang")
	cfg.Transcribe = viper.GetString("transcribe")
	cfg.ExcelPath = viper.GetString("excel")
	cfg.SheetURL = viper.GetString("sheet_url")
	cfg.SheetHeadless = viper.GetBool("sheet_headless")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeBatch && c.Mode != ModeMCP {
		return errors.New("mode must be either 'batch' or 'mcp'")
	}

	if c.InputDir == "" {
		return errors.New("input directory cannot be empty")
	}
	info, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("cannot access input directory %s: %w", c.InputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path is not a directory: %s", c.InputDir)
	}

	if c.YieldThreshold <= 0 {
		return errors.New("yield threshold must be positive")
	}
	if c.ResolverWindow <= 0 {
		return errors.New("resolver window must be positive")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.OCRDPI < 72 {
		return errors.New("ocr dpi must be at least 72")
	}

	switch c.Transcribe {
	case TranscribeNone:
	case TranscribeExcel:
		if c.ExcelPath == "" {
			return errors.New("excel transcription requires a workbook path")
		}
	case TranscribeSheet:
		if c.SheetURL == "" {
			return errors.New("sheet transcription requires a sheet URL")
		}
	default:
		return fmt.Errorf("invalid transcription target: %s", c.Transcribe)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsMCPMode returns true when the extractor serves tools over stdio
func (c *Config) IsMCPMode() bool {
	return c.Mode == ModeMCP
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, InputDir: %s, Output: %s, YieldThreshold: %d, Window: %d, Workers: %d, Transcribe: %s}",
		c.Mode, c.InputDir, c.Output, c.YieldThreshold, c.ResolverWindow, c.Workers, c.Transcribe)
}
