package analyzer

import (
	"bytes"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// PDFExtractor reads text page by page. Corrupt or image-only documents come
// back as errors here and are absorbed into empty text by the registry.
type PDFExtractor struct {
	maxPages int
}

func NewPDFExtractor() PDFExtractor {
	return PDFExtractor{maxPages: 0}
}

func (PDFExtractor) Formats() []string {
	return []string{"pdf"}
}

func (e PDFExtractor) Decode(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", fmt.Errorf("missing %%PDF header")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	var out strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if e.maxPages > 0 && i > e.maxPages {
			break
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// One unreadable page does not void the rest of the document.
			continue
		}
		out.WriteString(text)
		out.WriteString("\n")
	}

	return out.String(), nil
}
