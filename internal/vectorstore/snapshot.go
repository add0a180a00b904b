package vectorstore

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/document"
)

// snapshotVersion guards the on-disk format. Bump on incompatible
// layout changes.
const snapshotVersion = 1

// snapshotFile is the serialized form of a SnapshotStore.
type snapshotFile struct {
	Version   int
	Dimension int
	Records   []Record
}

// SnapshotStore is an in-memory Store whose full record set round-trips
// through a single snapshot file. Similarity search is a linear scan
// over all records, which is the intended trade-off at single-tenant,
// file-backed scale.
//
// Ties in similarity score are broken by insertion order, earlier
// records first.
type SnapshotStore struct {
	mu        sync.RWMutex
	records   []Record
	dimension int
	logger    *zap.Logger
}

// NewSnapshotStore creates an empty SnapshotStore. A nil logger falls
// back to a no-op logger.
func NewSnapshotStore(logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{logger: logger}
}

// Add appends a record. The first added vector fixes the store's
// dimension; later vectors of a different size fail with
// ErrDimensionMismatch.
func (s *SnapshotStore) Add(vector []float32, segment document.TextSegment) (string, error) {
	if len(vector) == 0 {
		return "", fmt.Errorf("%w: empty vector", ErrInvalidConfig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(vector)
	} else if len(vector) != s.dimension {
		return "", fmt.Errorf("%w: store holds %d-dimensional vectors, got %d",
			ErrDimensionMismatch, s.dimension, len(vector))
	}

	record := Record{
		ID:      uuid.NewString(),
		Vector:  append([]float32(nil), vector...),
		Segment: document.TextSegment{
			Text:     segment.Text,
			Metadata: document.CopyMetadata(segment.Metadata),
		},
	}
	s.records = append(s.records, record)
	return record.ID, nil
}

// FindRelevant implements the Store search contract.
func (s *SnapshotStore) FindRelevant(query []float32, maxResults int, minScore float64) ([]Match, error) {
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: max results must be positive, got %d", ErrInvalidConfig, maxResults)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return []Match{}, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: store holds %d-dimensional vectors, query has %d",
			ErrDimensionMismatch, s.dimension, len(query))
	}

	matches := make([]Match, 0, len(s.records))
	for _, r := range s.records {
		score, err := cosineSimilarity(query, r.Vector)
		if err != nil {
			return nil, err
		}
		if score < minScore {
			continue
		}
		matches = append(matches, Match{ID: r.ID, Segment: r.Segment, Score: score})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// Count returns the number of stored records.
func (s *SnapshotStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Dimension returns the store's vector dimension, 0 while empty.
func (s *SnapshotStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// SaveFile writes the full record set to path. The write goes through a
// temp file in the same directory followed by a rename, so an existing
// snapshot is never left half-written.
func (s *SnapshotStore) SaveFile(path string) error {
	s.mu.RLock()
	snap := snapshotFile{
		Version:   snapshotVersion,
		Dimension: s.dimension,
		Records:   s.records,
	}
	s.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot %s: %w", path, err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("path", path),
		zap.Int("records", len(snap.Records)),
	)
	return nil
}

// LoadFile reads a snapshot from path into a new SnapshotStore.
// A missing path fails with ErrNotFound, an undecodable file with
// ErrCorruptSnapshot.
func LoadFile(path string, logger *zap.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	defer f.Close()

	var snap snapshotFile
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptSnapshot, path, snap.Version)
	}

	store := &SnapshotStore{
		records:   snap.Records,
		dimension: snap.Dimension,
		logger:    logger,
	}
	logger.Debug("snapshot loaded",
		zap.String("path", path),
		zap.Int("records", len(snap.Records)),
	)
	return store, nil
}
