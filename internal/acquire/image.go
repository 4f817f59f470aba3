package acquire

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"

	"quickbills/constants"
	"quickbills/internal/common"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (RawText, error) {
	src, err := decodeImage(path)
	if err != nil {
		e.logger.Error("acquire.image.decode_failed", "path", path, "error", err)
		return RawText{SourceType: constants.IMAGE}, common.AcquisitionError("decode image", err)
	}

	pre := e.preprocess(src)

	// tesseract reads from disk; scope the temp file to this call
	tmpDir, err := os.MkdirTemp("", "qb-ocr-*")
	if err != nil {
		return RawText{SourceType: constants.IMAGE}, common.AcquisitionError("temp dir", err)
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			e.logger.Warn("acquire.image.tmp_cleanup_failed", "dir", tmpDir, "error", rerr)
		}
	}()

	tmpPNG := filepath.Join(tmpDir, "page.png")
	if err := imaging.Save(pre, tmpPNG); err != nil {
		return RawText{SourceType: constants.IMAGE}, common.AcquisitionError("write preprocessed image", err)
	}

	txt, warns, err := e.tesseractOCR(ctx, tmpPNG)
	if err != nil {
		return RawText{SourceType: constants.IMAGE, Warnings: warns}, common.AcquisitionError("tesseract", err)
	}
	txt = Normalize(txt)
	if strings.TrimSpace(txt) == "" {
		e.logger.Warn("acquire.image.empty_ocr_output", "path", path)
		return RawText{SourceType: constants.IMAGE, Warnings: warns},
			common.EmptyContentError("ocr produced no text")
	}

	return RawText{
		Text:       txt,
		Pages:      1,
		SourceType: constants.IMAGE,
		Method:     "image-ocr",
		Language:   e.cfg.TesseractLang,
		Warnings:   warns,
		Confidence: heuristicConfidence(txt),
	}, nil
}

// preprocess prepares a photo for recognition: upscale small captures with a
// quality-preserving filter, flatten to luminance, then boost local contrast.
// Hard binarization is deliberately avoided: it eats thin glyphs such as
// decimal points, which this domain cannot afford to lose.
func (e *Extractor) preprocess(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	short := w
	if h < w {
		short = h
	}

	img := imaging.Clone(src)
	if short < e.cfg.UpscaleThresholdPx {
		img = imaging.Resize(img, int(float64(w)*e.cfg.UpscaleFactor), 0, imaging.Lanczos)
	}
	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	return img
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if constants.IsHEICExt(filepath.Ext(path)) {
		img, err := heic.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode heic: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
