// Package ingest orchestrates the load → split → embed → store pipeline
// for single files, URLs, and directory trees.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/document"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/splitter"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// Config holds the default splitter parameters for store ingestion.
type Config struct {
	MaxChunkSize int    `koanf:"max_chunk_size"`
	Overlap      int    `koanf:"overlap"`
	TokenModel   string `koanf:"token_model"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxChunkSize == 0 {
		c.MaxChunkSize = 2000
	}
	if c.Overlap == 0 {
		c.Overlap = 200
	}
	if c.TokenModel == "" {
		c.TokenModel = embeddings.DefaultTokenModel
	}
}

// Pipeline wires a loader, a splitter and an embedder into one
// ingestion path. Each call runs synchronously to completion;
// independent calls against different stores are safe to run in
// parallel.
type Pipeline struct {
	loader   *document.Loader
	splitter *splitter.Splitter
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// NewPipeline creates a Pipeline. A nil logger falls back to a no-op
// logger.
func NewPipeline(loader *document.Loader, split *splitter.Splitter, embedder embeddings.Embedder, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{loader: loader, splitter: split, embedder: embedder, logger: logger}
}

// IngestFile loads one source, splits it, embeds every segment and adds
// the records to store. It returns the number of segments added. Any
// failure fails the whole call; nothing added before the failure is
// rolled back.
func (p *Pipeline) IngestFile(ctx context.Context, source string, kind document.SourceKind, store vectorstore.Store) (int, error) {
	doc, err := p.loader.Load(ctx, source, kind)
	if err != nil {
		return 0, err
	}

	segments, err := p.splitter.Split(*doc)
	if err != nil {
		return 0, fmt.Errorf("splitting %s: %w", source, err)
	}

	for _, segment := range segments {
		vector, err := p.embedder.Embed(ctx, segment.Text)
		if err != nil {
			return 0, fmt.Errorf("embedding segment of %s: %w", source, err)
		}
		if _, err := store.Add(vector, segment); err != nil {
			return 0, fmt.Errorf("storing segment of %s: %w", source, err)
		}
	}

	p.logger.Debug("ingested source",
		zap.String("source", source),
		zap.String("kind", string(kind)),
		zap.Int("segments", len(segments)),
	)
	return len(segments), nil
}

// FolderResult reports what a folder ingestion did. Ingestion is not
// transactional across files: skipped counts make partial completion
// observable.
type FolderResult struct {
	FilesFound    int `json:"filesFound"`
	FilesIngested int `json:"filesIngested"`
	FilesSkipped  int `json:"filesSkipped"`
	SegmentsAdded int `json:"segmentsAdded"`
}

// IngestFolder walks dir recursively and ingests every regular file as
// kind. Per-file failures (blank files, parse errors) are logged and
// skipped so one bad file does not abort the rest; only a failure to
// enumerate the tree itself fails the call.
//
// URL sources have no meaning inside a directory walk and are rejected
// up front.
func (p *Pipeline) IngestFolder(ctx context.Context, dir string, kind document.SourceKind, store vectorstore.Store) (*FolderResult, error) {
	if kind == document.KindURL {
		return nil, fmt.Errorf("%w: folder ingestion does not support %q", document.ErrUnsupportedSourceKind, kind)
	}

	result := &FolderResult{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}

		result.FilesFound++
		added, err := p.IngestFile(ctx, path, kind, store)
		if err != nil {
			// Per-file failures never abort the walk; the skip count
			// makes them observable to the caller.
			p.logger.Warn("skipping file",
				zap.String("path", path),
				zap.Error(err),
			)
			result.FilesSkipped++
			return nil
		}
		result.FilesIngested++
		result.SegmentsAdded += added
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	p.logger.Info("folder ingested",
		zap.String("dir", dir),
		zap.Int("files_found", result.FilesFound),
		zap.Int("files_ingested", result.FilesIngested),
		zap.Int("files_skipped", result.FilesSkipped),
	)
	return result, nil
}
