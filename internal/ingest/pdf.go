package ingest

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// loadPDF returns one Document per page, numbered from 1.
func loadPDF(path string) (docs []Document, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			docs, err = nil, fmt.Errorf("read PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	docs = make([]Document, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		pageNum := i
		docs = append(docs, Document{
			Content:  text,
			Metadata: Metadata{Source: path, Page: &pageNum},
		})
	}
	return docs, nil
}
