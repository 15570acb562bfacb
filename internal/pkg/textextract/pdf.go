package textextract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts text page by page. Pages without a text layer are skipped,
// so a scanned document yields "" and no error.
func PDF(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
