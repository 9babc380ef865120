package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// DefaultExtensions lists every format the loader understands.
var DefaultExtensions = []string{".pdf", ".csv", ".xlsx", ".ndjson", ".jsonl", ".txt", ".md"}

// Loader reads files and directories into Documents.
type Loader struct {
	extensions []string
	logger     *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for skipped and failed files.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithExtensions restricts loading to the given extensions (e.g. ".pdf").
// Extensions the loader has no reader for are still skipped.
func WithExtensions(exts []string) LoaderOption {
	return func(ld *Loader) {
		if len(exts) > 0 {
			ld.extensions = exts
		}
	}
}

// NewLoader creates a Loader for all supported formats.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		extensions: DefaultExtensions,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Supports reports whether path has an extension the loader will read.
func (l *Loader) Supports(path string) bool {
	return matchExtension(path, l.extensions) && readerFor(path) != nil
}

// LoadAll loads every path in order. Documents from files that loaded are
// returned alongside the combined error of the files that did not.
func (l *Loader) LoadAll(paths []string) ([]Document, error) {
	var docs []Document
	var errs error
	for _, p := range paths {
		d, err := l.Load(p)
		docs = append(docs, d...)
		errs = multierr.Append(errs, err)
	}
	return docs, errs
}

// Load reads a file or walks a directory recursively in lexical order.
// A failing file does not stop the walk; its error is aggregated.
func (l *Loader) Load(path string) ([]Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if !info.IsDir() {
		return l.LoadFile(path)
	}

	var docs []Document
	var errs error
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("load %s: %w", p, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !l.Supports(p) {
			l.logger.Debug("skipping unsupported file", zap.String("path", p))
			return nil
		}
		fileDocs, err := l.LoadFile(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		docs = append(docs, fileDocs...)
		return nil
	})
	errs = multierr.Append(errs, walkErr)

	return docs, errs
}

// LoadFile reads a single file according to its extension.
func (l *Loader) LoadFile(path string) ([]Document, error) {
	read := readerFor(path)
	if read == nil || !matchExtension(path, l.extensions) {
		return nil, fmt.Errorf("load %s: %w", path, ErrUnsupportedFormat)
	}

	docs, err := read(path)
	if err != nil {
		l.logger.Warn("failed to load file", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	l.logger.Debug("loaded file", zap.String("path", path), zap.Int("documents", len(docs)))
	return docs, nil
}

type readFunc func(path string) ([]Document, error)

func readerFor(path string) readFunc {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF
	case ".csv":
		return loadCSV
	case ".xlsx":
		return loadExcel
	case ".ndjson", ".jsonl":
		return loadNDJSON
	case ".txt", ".md":
		return loadPlain
	}
	return nil
}

func matchExtension(path string, extensions []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
