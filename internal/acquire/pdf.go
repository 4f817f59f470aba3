package acquire

import (
	"strings"

	"context"

	"github.com/ledongthuc/pdf"

	"quickbills/constants"
	"quickbills/internal/common"
)

// extractPDF reads the text layer page by page. An empty result signals a
// scanned/non-text PDF, not a processing bug, and surfaces as EMPTY_CONTENT.
func (e *Extractor) extractPDF(ctx context.Context, path string) (RawText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		e.logger.Error("acquire.pdf.open_failed", "path", path, "error", err)
		return RawText{SourceType: constants.PDF}, common.AcquisitionError("open pdf", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("acquire.pdf.close_failed", "path", path, "error", cerr)
		}
	}()

	var b strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return RawText{SourceType: constants.PDF}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			e.logger.Warn("acquire.pdf.page_failed", "path", path, "page", i, "error", err)
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
				b.WriteString(" ")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	text := Normalize(b.String())
	if strings.TrimSpace(text) == "" {
		e.logger.Warn("acquire.pdf.empty_text_layer", "path", path, "pages", numPages)
		return RawText{SourceType: constants.PDF, Pages: numPages},
			common.EmptyContentError("pdf has no text layer")
	}

	return RawText{
		Text:       text,
		Pages:      numPages,
		SourceType: constants.PDF,
		Method:     "pdf-text",
		Confidence: 1.0,
	}, nil
}
