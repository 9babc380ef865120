package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// loadCSV returns one Document per data row. The first row is the header.
func loadCSV(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	var docs []Document
	for row := 0; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", row, err)
		}
		rowNum := row
		docs = append(docs, Document{
			Content:  formatRow(header, record),
			Metadata: Metadata{Source: path, Row: &rowNum},
		})
	}
	return docs, nil
}

// loadExcel returns one Document per data row of every sheet, in sheet order.
// The first row of each sheet is its header.
func loadExcel(path string) ([]Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var docs []Document
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		header := rows[0]
		for i, record := range rows[1:] {
			content := formatRow(header, record)
			if content == "" {
				continue
			}
			rowNum := i
			docs = append(docs, Document{
				Content:  content,
				Metadata: Metadata{Source: path, Row: &rowNum, Sheet: sheet},
			})
		}
	}
	return docs, nil
}

// formatRow renders a record as "header: value" lines. Cells beyond the header
// are keyed by their 1-based column number; empty trailing cells are omitted.
func formatRow(header, record []string) string {
	lines := make([]string, 0, len(record))
	for i, value := range record {
		key := ""
		if i < len(header) {
			key = strings.TrimSpace(header[i])
		}
		if key == "" {
			key = fmt.Sprintf("column %d", i+1)
		}
		if value == "" && i >= len(header) {
			continue
		}
		lines = append(lines, key+": "+strings.TrimSpace(value))
	}
	return strings.Join(lines, "\n")
}
