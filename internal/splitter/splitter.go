// Package splitter chunks document text into bounded, overlapping
// segments for embedding and retrieval.
//
// Splitting is recursive: paragraph boundaries are tried first, then
// sentence boundaries, then raw rune windows, always preferring the
// largest structural boundary that keeps a chunk within the configured
// size. Size is measured by a pluggable LengthFunc so chunk bounds can
// follow model token limits rather than byte counts.
package splitter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/ragd/internal/document"
)

// Sentinel errors for splitting.
var (
	// ErrBlankInput is returned for empty or whitespace-only documents.
	ErrBlankInput = errors.New("blank input")

	// ErrInvalidConfig indicates invalid chunk size or overlap parameters.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// LengthFunc measures text in the unit the embedding and completion
// backends bill by, typically model tokens.
type LengthFunc func(text string) int

// RuneLength measures text in Unicode code points. It is the fallback
// when no tokenizer-backed LengthFunc is supplied.
func RuneLength(text string) int {
	return len([]rune(text))
}

// Config holds splitter parameters.
type Config struct {
	// MaxChunkSize is the upper bound for a single segment, in
	// LengthFunc units. Must be positive.
	MaxChunkSize int `koanf:"max_chunk_size"`

	// Overlap is the amount of trailing context from one segment that
	// seeds the next, in LengthFunc units. Must be smaller than
	// MaxChunkSize.
	Overlap int `koanf:"overlap"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size must be positive, got %d", ErrInvalidConfig, c.MaxChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.MaxChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than max chunk size %d", ErrInvalidConfig, c.Overlap, c.MaxChunkSize)
	}
	return nil
}

var (
	paragraphRe = regexp.MustCompile(`\n{2,}`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)
)

// Splitter produces deterministic segment sequences: identical input and
// configuration always yield identical boundaries and text.
type Splitter struct {
	cfg    Config
	length LengthFunc
}

// New creates a Splitter. A nil length function falls back to RuneLength.
func New(cfg Config, length LengthFunc) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if length == nil {
		length = RuneLength
	}
	return &Splitter{cfg: cfg, length: length}, nil
}

// Split chunks the document's text into ordered segments, each carrying
// a copy of the document's metadata plus its own index. Empty or
// whitespace-only documents fail with ErrBlankInput.
func (s *Splitter) Split(doc document.Document) ([]document.TextSegment, error) {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, ErrBlankInput
	}

	chunks := s.split(text, 0)

	segments := make([]document.TextSegment, 0, len(chunks))
	for i, chunk := range chunks {
		meta := document.CopyMetadata(doc.Metadata)
		meta[document.MetaIndex] = strconv.Itoa(i)
		segments = append(segments, document.TextSegment{Text: chunk, Metadata: meta})
	}
	return segments, nil
}

// split descends the boundary ladder: level 0 splits on paragraphs,
// level 1 on sentences, anything deeper on raw runes.
func (s *Splitter) split(text string, level int) []string {
	if s.length(text) <= s.cfg.MaxChunkSize {
		return []string{text}
	}

	var (
		units []string
		sep   string
	)
	switch level {
	case 0:
		units = splitUnits(paragraphRe.Split(text, -1))
		sep = "\n\n"
	case 1:
		units = splitUnits(sentenceRe.FindAllString(text, -1))
		sep = " "
	default:
		return s.splitRunes(text)
	}

	if len(units) <= 1 {
		return s.split(text, level+1)
	}
	return s.pack(units, sep, level)
}

// pack greedily joins units into chunks no larger than MaxChunkSize.
// When a chunk closes, the overlap tail of its text seeds the next one.
// Units that alone exceed the bound recurse one level deeper.
func (s *Splitter) pack(units []string, sep string, level int) []string {
	var chunks []string
	var cur string

	for _, unit := range units {
		if s.length(unit) > s.cfg.MaxChunkSize {
			if cur != "" {
				chunks = append(chunks, cur)
				cur = ""
			}
			chunks = append(chunks, s.split(unit, level+1)...)
			continue
		}

		if cur == "" {
			cur = s.seed(chunks, unit, sep)
			continue
		}
		if cand := cur + sep + unit; s.length(cand) <= s.cfg.MaxChunkSize {
			cur = cand
			continue
		}
		chunks = append(chunks, cur)
		cur = s.seed(chunks, unit, sep)
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}

// seed starts a new chunk with the overlap tail of the previously
// emitted chunk, falling back to the bare unit when the combination
// would not fit.
func (s *Splitter) seed(chunks []string, unit, sep string) string {
	if len(chunks) == 0 {
		return unit
	}
	tail := s.overlapTail(chunks[len(chunks)-1])
	if tail == "" {
		return unit
	}
	if cand := tail + sep + unit; s.length(cand) <= s.cfg.MaxChunkSize {
		return cand
	}
	return unit
}

// splitRunes windows text rune by rune, used when no structural
// boundary keeps a piece within bounds.
func (s *Splitter) splitRunes(text string) []string {
	var chunks []string
	var cur string

	for _, r := range text {
		cand := cur + string(r)
		if cur == "" || s.length(cand) <= s.cfg.MaxChunkSize {
			cur = cand
			continue
		}
		chunks = append(chunks, cur)
		cur = s.overlapTail(cur) + string(r)
		if s.length(cur) > s.cfg.MaxChunkSize {
			cur = string(r)
		}
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}

// overlapTail returns the longest suffix of chunk measuring at most
// Overlap length units, on a rune boundary.
func (s *Splitter) overlapTail(chunk string) string {
	if s.cfg.Overlap <= 0 {
		return ""
	}
	runes := []rune(chunk)
	lo := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		if s.length(string(runes[i:])) > s.cfg.Overlap {
			break
		}
		lo = i
	}
	if lo == len(runes) {
		return ""
	}
	return string(runes[lo:])
}

// splitUnits trims unit candidates and drops the empty ones.
func splitUnits(raw []string) []string {
	units := make([]string, 0, len(raw))
	for _, u := range raw {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		units = append(units, u)
	}
	return units
}
