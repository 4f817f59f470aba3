package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"quickbills/constants"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string

	UpscaleThresholdPx int     // upscale when the smaller dimension is below this; default 2000
	UpscaleFactor      float64 // default 2.0
}

// RawText is the linearized text obtained from one document. It lives for a
// single pipeline invocation.
type RawText struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE
	Method     string // "pdf-text" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32 // informational only, never drives logic
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.UpscaleThresholdPx <= 0 {
		cfg.UpscaleThresholdPx = 2000
	}
	if cfg.UpscaleFactor <= 1 {
		cfg.UpscaleFactor = 2.0
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (RawText, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("acquire.start", "path", path, "ext", ext)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("acquire.unsupported_extension", "extension", ext)
		return RawText{}, fmt.Errorf("unsupported extension: %q", ext)
	}
}
