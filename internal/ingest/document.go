// Package ingest loads source files into ordered documents ready for chunking.
package ingest

// Document is a unit of loaded text: one PDF page, one CSV/XLSX row, one NDJSON
// record or one whole text file.
type Document struct {
	Content  string
	Metadata Metadata
}

// Metadata locates a document within its source file.
type Metadata struct {
	// Source is the file path as it was reached from the ingest path.
	Source string
	// Page is the 1-based PDF page, nil otherwise.
	Page *int
	// Row is the 0-based data row for tabular sources, nil otherwise.
	Row *int
	// Sheet names the XLSX worksheet a row came from.
	Sheet string
}
