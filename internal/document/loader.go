package document

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// Loader turns a source reference (file path or URL) into a Document.
// Text and PDF extraction go through langchaingo's document loaders;
// URL sources are fetched and reduced to readable plain text.
type Loader struct {
	client *http.Client
	logger *zap.Logger
}

// NewLoader creates a Loader. A nil client falls back to
// http.DefaultClient, a nil logger to a no-op logger.
func NewLoader(client *http.Client, logger *zap.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, logger: logger}
}

// Load reads and extracts plain text from the given source according to
// its kind. The returned document carries origin metadata: file name,
// full path and directory for files, the source URL for web pages.
//
// Sources that yield no text after extraction fail with ErrBlankDocument.
func (l *Loader) Load(ctx context.Context, source string, kind SourceKind) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch kind {
	case KindText:
		doc, err = l.loadText(ctx, source)
	case KindPDF:
		doc, err = l.loadPDF(ctx, source)
	case KindURL:
		doc, err = l.loadURL(ctx, source)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSourceKind, kind)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrBlankDocument, source)
	}
	return doc, nil
}

func (l *Loader) loadText(ctx context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	pages, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing text %s: %w", path, err)
	}
	return &Document{
		Text:     joinPages(pages, "\n\n"),
		Metadata: fileMetadata(path),
	}, nil
}

func (l *Loader) loadPDF(ctx context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pages, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing pdf %s: %w", path, err)
	}
	return &Document{
		Text:     joinPages(pages, "\n\n"),
		Metadata: fileMetadata(path),
	}, nil
}

func (l *Loader) loadURL(ctx context.Context, source string) (*Document, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing url %s: %w", source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", source, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", source, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", source, err)
	}

	l.logger.Debug("loaded url document",
		zap.String("url", source),
		zap.String("title", article.Title),
	)

	return &Document{
		Text: article.TextContent,
		Metadata: map[string]string{
			MetaURL: source,
		},
	}, nil
}

func fileMetadata(path string) map[string]string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return map[string]string{
		MetaFileName:              filepath.Base(abs),
		MetaFullPath:              abs,
		MetaAbsoluteDirectoryPath: filepath.Dir(abs),
	}
}

func joinPages(pages []schema.Document, sep string) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.PageContent) == "" {
			continue
		}
		parts = append(parts, p.PageContent)
	}
	return strings.Join(parts, sep)
}
