package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"quickbills/constants"
	"quickbills/internal/acquire"
	"quickbills/internal/common"
	"quickbills/internal/export"
	"quickbills/internal/ingest"
	"quickbills/internal/invoice"
	"quickbills/internal/llm"
	"quickbills/internal/llm/gemini"
	"quickbills/internal/llm/openai"
	"quickbills/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		file     = flag.String("file", "", "invoice/receipt file to process (pdf, jpg, png, heic)")
		dir      = flag.String("dir", "", "process every supported document under this directory into one export")
		out      = flag.String("out", "", "output file path (defaults to <file>.csv / <dir>/invoices.csv)")
		format   = flag.String("format", "csv", "export format: csv | xlsx")
		provider = flag.String("provider", "", "interpretation engine: openai | gemini (defaults to LLM_PROVIDER)")
		dumpText = flag.Bool("dump-text", false, "print the acquired raw text to stderr for debugging")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if (*file == "") == (*dir == "") {
		printError("Error: exactly one of -file or -dir is required\n")
		os.Exit(1)
	}
	if *format != "csv" && *format != "xlsx" {
		printError("Error: -format must be csv or xlsx\n")
		os.Exit(1)
	}

	// Setup logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// .env is optional; the environment wins when both are present
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env file")
	}

	cfg := common.LoadConfig()
	if *provider != "" {
		cfg.LLM.Provider = *provider
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	extractor := acquire.NewExtractor(acquire.Config{
		Tesseract:          cfg.Acquire.Tesseract,
		TesseractLang:      cfg.Acquire.TesseractLang,
		TessdataDir:        cfg.Acquire.TessdataDir,
		UpscaleThresholdPx: cfg.Acquire.UpscaleThresholdPx,
		UpscaleFactor:      cfg.Acquire.UpscaleFactor,
	}, logger)

	var engine llm.InvoiceExtractor
	switch cfg.LLM.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize gemini client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("gemini client close error", "error", err)
			}
		}()
		engine = client
	default:
		engine = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	}
	logger.Info("interpretation engine ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	validator := invoice.NewValidator(cfg.Invoice.ReconcileTolerance, cfg.Invoice.DefaultCurrency, logger)
	processor := pipeline.NewProcessor(logger, extractor, engine, validator, pipeline.Config{
		AllowedCategories: constants.AsStringSlice(),
		DefaultCurrency:   cfg.Invoice.DefaultCurrency,
	})

	if *dir != "" {
		runBatch(ctx, logger, processor, *dir, *out, *format)
		return
	}

	res, err := processor.ProcessFile(ctx, *file)
	if err != nil {
		logger.Error("processing failed", "file", *file, "error", err)
		switch {
		case common.IsEmptyContent(err):
			printError("Error: no extractable text in %s (scanned PDF? try re-submitting as an image)\n", *file)
		case common.IsInterpretation(err):
			printError("Error: interpretation engine failed; the document was not charged against, retry later\n")
		case common.IsSchemaError(err):
			printError("Error: engine output did not satisfy the invoice schema: %v\n", err)
		default:
			printError("Error: %v\n", err)
		}
		os.Exit(1)
	}

	if *dumpText {
		printError("--- raw text (%s) ---\n%s\n---\n", res.RawText.Method, res.RawText.Text)
	}

	if *out == "" {
		*out = defaultOutPath(*file, *format)
	}

	if err := writeExport(*out, *format, []invoice.Record{res.Record}, logger); err != nil {
		logger.Error("export failed", "path", *out, "error", err)
		os.Exit(1)
	}

	summary, _ := json.MarshalIndent(map[string]any{
		"vendor":                 res.Record.VendorName,
		"invoice_number":         res.Record.InvoiceNumber,
		"total_amount":           res.Record.TotalAmount,
		"currency":               res.Record.Currency,
		"items":                  len(res.Record.Items),
		"reconciliation_warning": res.Record.ReconciliationWarning,
		"output":                 *out,
	}, "", "  ")
	fmt.Println(string(summary))
}

// runBatch processes every supported document under root into one combined
// export. Per-file failures are logged and skipped; the batch only fails
// outright when nothing could be processed.
func runBatch(ctx context.Context, logger *slog.Logger, processor *pipeline.Processor, root, out, format string) {
	paths, stats, err := ingest.ListDocuments(root, true)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		printError("Error: no supported documents under %s\n", root)
		os.Exit(1)
	}
	logger.Info("batch.start", "root", root, "matched", stats.Matched, "skipped", stats.Skipped)

	var records []invoice.Record
	failed := 0
	for _, path := range paths {
		res, err := processor.ProcessFile(ctx, path)
		if err != nil {
			failed++
			logger.Error("batch.file.failed", "file", path, "error", err)
			continue
		}
		records = append(records, res.Record)
	}
	if len(records) == 0 {
		printError("Error: all %d documents failed\n", failed)
		os.Exit(1)
	}

	if out == "" {
		out = filepath.Join(root, "invoices."+format)
	}
	if err := writeExport(out, format, records, logger); err != nil {
		logger.Error("export failed", "path", out, "error", err)
		os.Exit(1)
	}

	summary, _ := json.MarshalIndent(map[string]any{
		"processed": len(records),
		"failed":    failed,
		"output":    out,
	}, "", "  ")
	fmt.Println(string(summary))
}

func writeExport(out, format string, records []invoice.Record, logger *slog.Logger) error {
	var payload []byte
	switch format {
	case "xlsx":
		var err error
		payload, err = export.XLSXAll(records, logger)
		if err != nil {
			return err
		}
	default:
		payload = export.CSVAll(records)
	}
	return os.WriteFile(out, payload, 0o644)
}

// defaultOutPath swaps the document's extension for the export format's.
func defaultOutPath(path, format string) string {
	if ext := filepath.Ext(path); ext != "" {
		return strings.TrimSuffix(path, ext) + "." + format
	}
	return path + "." + format
}
