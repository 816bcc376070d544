package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxLocalPages bounds in-process extraction; anything past this many pages
// is left to the remote OCR fallback.
const MaxLocalPages = 20

// extractPDFText pulls plain text out of a PDF page by page, pages separated
// by a blank line. A corrupt or non-parseable file yields an empty string,
// never a panic, so the selector can fall back to OCR.
func extractPDFText(data []byte) (text string, pages int) {
	defer func() {
		// The pdf package panics on some malformed cross-reference tables.
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0
	}

	pageCount := reader.NumPage()
	limit := pageCount
	if limit > MaxLocalPages {
		limit = MaxLocalPages
	}

	var b strings.Builder
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(strings.Join(strings.Fields(pageText), " "))
		if pageText == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(pageText)
	}

	return b.String(), pageCount
}
