// Package document defines the units flowing through the ingestion
// pipeline: loaded documents, split text segments, and the source kinds
// the loader understands.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// Metadata keys recorded on loaded documents and carried into every
// segment derived from them.
const (
	MetaFileName              = "file_name"
	MetaFullPath              = "full_path"
	MetaAbsoluteDirectoryPath = "absolute_directory_path"
	MetaURL                   = "url"
	MetaIndex                 = "index"
)

// Sentinel errors for document loading.
var (
	// ErrBlankDocument is returned when a source yields no extractable text.
	ErrBlankDocument = errors.New("blank document")

	// ErrUnsupportedSourceKind is returned for source kinds the loader
	// does not understand.
	ErrUnsupportedSourceKind = errors.New("unsupported source kind")
)

// SourceKind identifies how a source should be loaded and parsed.
type SourceKind string

const (
	KindText SourceKind = "text"
	KindPDF  SourceKind = "pdf"
	KindURL  SourceKind = "url"
)

// ParseSourceKind maps a string to a SourceKind, case-insensitively.
// Unknown values return ErrUnsupportedSourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindText:
		return KindText, nil
	case KindPDF:
		return KindPDF, nil
	case KindURL:
		return KindURL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSourceKind, s)
	}
}

// Document is one ingested source unit: extracted text plus origin
// metadata. Treated as immutable once loaded.
type Document struct {
	Text     string
	Metadata map[string]string
}

// TextSegment is the atomic retrieval unit: a bounded piece of a
// document's text with a copy of the parent's metadata.
type TextSegment struct {
	Text     string
	Metadata map[string]string
}

// CopyMetadata returns an independent copy of m. A nil map copies to an
// empty, non-nil map so segments always carry a usable metadata map.
func CopyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
