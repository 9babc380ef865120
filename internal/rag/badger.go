package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"
)

const chunkPrefix = "chunk/"

var (
	ErrStoreClosed = errors.New("vector store is closed")
)

// badgerLoggerAdapter adapts a zap logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Errorf(msg, items...)
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warnf(msg, items...)
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debugf(msg, items...)
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debugf(msg, items...)
}

// BadgerStore implements VectorStore on an embedded BadgerDB directory.
// Search is an exact scan using squared Euclidean distance.
type BadgerStore struct {
	mu        sync.RWMutex
	db        *badger.DB
	path      string
	dimension int
	logger    *zap.Logger
}

// NewBadgerStore opens (creating if needed) a store in the directory at path.
func NewBadgerStore(path string, dimension int, logger *zap.Logger) (*BadgerStore, error) {
	if dimension <= 0 {
		return nil, ErrInvalidDimension
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &BadgerStore{
		path:      path,
		dimension: dimension,
		logger:    logger,
	}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BadgerStore) open() error {
	info, err := os.Stat(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(s.path, 0755); err != nil {
			return err
		}
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.path)
	}

	opts := badger.DefaultOptions(s.path)
	opts.Logger = &badgerLoggerAdapter{logger: s.logger.Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	s.db = db
	return nil
}

// Insert stores records in one write batch. Existing keys are left untouched.
func (s *BadgerStore) Insert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrStoreClosed
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(rec.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %s: expected %d, got %d", ErrInvalidDimension, rec.ID, s.dimension, len(rec.Embedding))
		}
		val, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInsertFailed, err)
		}
		if err := wb.Set([]byte(chunkPrefix+rec.ID), val); err != nil {
			return fmt.Errorf("%w: %v", ErrInsertFailed, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return nil
}

// Flush syncs written data to disk.
func (s *BadgerStore) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrStoreClosed
	}
	return s.db.Sync()
}

// Search scans every stored chunk and returns the topK nearest to queryVector.
func (s *BadgerStore) Search(ctx context.Context, queryVector []float32, topK int) ([]RetrievalResult, error) {
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, s.dimension, len(queryVector))
	}
	if topK <= 0 {
		return []RetrievalResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	var results []RetrievalResult
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec ChunkRecord
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			results = append(results, RetrievalResult{
				Chunk:    rec.Chunk,
				Distance: squaredL2(queryVector, rec.Embedding),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	// Stable on ties so equal distances keep key order.
	slices.SortStableFunc(results, func(a, b RetrievalResult) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	if results == nil {
		results = []RetrievalResult{}
	}
	return results, nil
}

// Query returns the stored content hash of every ID that exists.
func (s *BadgerStore) Query(ctx context.Context, ids []string) (map[string]string, error) {
	found := make(map[string]string)
	if len(ids) == 0 {
		return found, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte(chunkPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var rec ChunkRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			found[id] = rec.ContentHash
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	return found, nil
}

// Count returns the number of stored chunks.
func (s *BadgerStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrStoreClosed
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Reset closes the database, deletes the store directory and reopens it empty.
func (s *BadgerStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close store before reset: %w", err)
		}
		s.db = nil
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("failed to delete store at %s: %w", s.path, err)
	}
	s.logger.Info("store cleared", zap.String("path", s.path))
	return s.open()
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// squaredL2 returns the squared Euclidean distance between a and b.
func squaredL2(a, b []float32) float64 {
	var sum float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
