package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		input   string
		want    SourceKind
		wantErr bool
	}{
		{input: "text", want: KindText},
		{input: "pdf", want: KindPDF},
		{input: "url", want: KindURL},
		{input: "TEXT", want: KindText},
		{input: " pdf ", want: KindPDF},
		{input: "docx", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSourceKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedSourceKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCopyMetadata(t *testing.T) {
	src := map[string]string{"a": "1"}
	dst := CopyMetadata(src)
	dst["a"] = "2"
	dst["b"] = "3"

	assert.Equal(t, "1", src["a"])
	assert.NotContains(t, src, "b")

	assert.NotNil(t, CopyMetadata(nil))
}

func TestLoader_LoadText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "some file content")
	loader := NewLoader(nil, nil)

	doc, err := loader.Load(context.Background(), path, KindText)
	require.NoError(t, err)
	assert.Equal(t, "some file content", doc.Text)

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.Metadata[MetaFileName])
	assert.Equal(t, abs, doc.Metadata[MetaFullPath])
	assert.Equal(t, filepath.Dir(abs), doc.Metadata[MetaAbsoluteDirectoryPath])
}

func TestLoader_LoadTextBlank(t *testing.T) {
	loader := NewLoader(nil, nil)

	for _, content := range []string{"", "   \n\t  "} {
		path := writeFile(t, t.TempDir(), "empty.txt", content)
		_, err := loader.Load(context.Background(), path, KindText)
		assert.ErrorIs(t, err, ErrBlankDocument)
	}
}

func TestLoader_LoadTextMissingFile(t *testing.T) {
	loader := NewLoader(nil, nil)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), KindText)
	assert.Error(t, err)
}

func TestLoader_LoadUnsupportedKind(t *testing.T) {
	loader := NewLoader(nil, nil)
	_, err := loader.Load(context.Background(), "whatever", SourceKind("docx"))
	assert.ErrorIs(t, err, ErrUnsupportedSourceKind)
}

func TestLoader_LoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Post</title></head><body>
			<article><h1>Post</h1>
			<p>This is the first paragraph of the article body with enough words to count.</p>
			<p>And a second paragraph so the extractor has real content to keep.</p>
			</article></body></html>`))
	}))
	defer srv.Close()

	loader := NewLoader(srv.Client(), nil)
	doc, err := loader.Load(context.Background(), srv.URL, KindURL)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "first paragraph of the article body")
	assert.Equal(t, srv.URL, doc.Metadata[MetaURL])
	assert.NotContains(t, doc.Metadata, MetaFileName)
}

func TestLoader_LoadURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	loader := NewLoader(srv.Client(), nil)
	_, err := loader.Load(context.Background(), srv.URL, KindURL)
	assert.Error(t, err)
}

func TestLoader_LoadURLUnreachable(t *testing.T) {
	loader := NewLoader(&http.Client{}, nil)
	_, err := loader.Load(context.Background(), "http://127.0.0.1:1/none", KindURL)
	assert.Error(t, err)
}
