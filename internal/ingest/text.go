package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// maxRecordSize bounds a single NDJSON line.
const maxRecordSize = 16 * 1024 * 1024

// loadPlain returns the whole file as one Document. Invalid UTF-8 sequences
// are replaced with the replacement character.
func loadPlain(path string) ([]Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\ufffd")
	}
	return []Document{{
		Content:  text,
		Metadata: Metadata{Source: path},
	}}, nil
}

// loadNDJSON returns one Document per non-empty line. Objects render as
// "key: value" lines in field order; other values render as their JSON text.
func loadNDJSON(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxRecordSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			return nil, fmt.Errorf("line %d: invalid JSON", lineNum)
		}
		row := len(docs)
		docs = append(docs, Document{
			Content:  renderRecord(gjson.Parse(line)),
			Metadata: Metadata{Source: path, Row: &row},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read NDJSON: %w", err)
	}
	return docs, nil
}

func renderRecord(v gjson.Result) string {
	if !v.IsObject() {
		if v.Type == gjson.String {
			return v.Str
		}
		return v.Raw
	}
	var lines []string
	v.ForEach(func(key, value gjson.Result) bool {
		s := value.Raw
		if value.Type == gjson.String {
			s = value.Str
		}
		lines = append(lines, key.Str+": "+s)
		return true
	})
	return strings.Join(lines, "\n")
}
