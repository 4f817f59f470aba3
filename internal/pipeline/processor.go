package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"quickbills/internal/acquire"
	"quickbills/internal/invoice"
	"quickbills/internal/llm"
)

// TextAcquirer is stage 1: document file -> raw text.
type TextAcquirer interface {
	Extract(ctx context.Context, path string) (acquire.RawText, error)
}

// Processor coordinates text acquisition, interpretation and validation for
// one document at a time. It is stateless between documents; independent
// instances may run concurrently.
type Processor struct {
	logger    *slog.Logger
	acquirer  TextAcquirer
	extractor llm.InvoiceExtractor
	validator *invoice.Validator

	allowedCategories []string
	defaultCurrency   string
}

type Config struct {
	AllowedCategories []string
	DefaultCurrency   string // default "USD"
}

func NewProcessor(
	logger *slog.Logger,
	acquirer TextAcquirer,
	extractor llm.InvoiceExtractor,
	validator *invoice.Validator,
	cfg Config,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	return &Processor{
		logger:            logger,
		acquirer:          acquirer,
		extractor:         extractor,
		validator:         validator,
		allowedCategories: cfg.AllowedCategories,
		defaultCurrency:   cfg.DefaultCurrency,
	}
}

// Result carries the validated record plus the raw text for callers that
// surface it for debugging. RawText ownership transfers to the caller here.
type Result struct {
	Record  invoice.Record
	RawText acquire.RawText
	RawJSON []byte
}

// ProcessFile runs the full pipeline for one document. Acquisition,
// interpretation and schema failures abort with their distinguishing error
// kind; no partial record is ever returned on those paths. Reconciliation
// mismatches do not fail: they ride along as a warning on the record.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	p.logger.Info("pipeline.start", "req_id", rid, "path", path)

	raw, err := p.acquirer.Extract(ctx, path)
	if err != nil {
		p.logger.Error("pipeline.acquire.failed", "req_id", rid, "path", path, "error", err)
		return Result{}, err
	}
	p.logger.Debug("pipeline.acquire.ok",
		"req_id", rid,
		"method", raw.Method,
		"pages", raw.Pages,
		"text_bytes", len(raw.Text),
		"confidence", raw.Confidence,
	)

	req := llm.ExtractRequest{
		RawText:           raw.Text,
		FilenameHint:      filepath.Base(path),
		AllowedCategories: p.allowedCategories,
		DefaultCurrency:   p.defaultCurrency,
		PrepConfidence:    raw.Confidence,
	}
	fields, rawJSON, err := p.extractor.ExtractInvoice(ctx, req)
	if err != nil {
		p.logger.Error("pipeline.interpret.failed", "req_id", rid, "path", path, "error", err)
		return Result{}, err
	}

	rec, err := p.validator.Validate(fields)
	if err != nil {
		p.logger.Error("pipeline.validate.failed", "req_id", rid, "path", path, "error", err)
		return Result{}, err
	}

	p.logger.Info("pipeline.ok",
		"req_id", rid,
		"vendor", rec.VendorName,
		"invoice_number", rec.InvoiceNumber,
		"total", rec.TotalAmount,
		"items", len(rec.Items),
		"reconciled", rec.ReconciliationWarning == "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{Record: rec, RawText: raw, RawJSON: rawJSON}, nil
}
