package extract

import (
	"bytes"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
)

// pdfText returns the plain text of every page, one paragraph per page.
// Pages that fail to decode are skipped.
func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("read pdf: %v", p)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, content)
	}
	return joinParagraphs(pages), nil
}
