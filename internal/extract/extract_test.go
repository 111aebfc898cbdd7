package extract

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-screener/internal/errs"
)

type stubParser struct {
	pages []string
	err   error
	uri   string
	calls int
}

func (s *stubParser) Parse(_ context.Context, r io.Reader, opts ...parser.Option) ([]*schema.Document, error) {
	s.calls++
	s.uri = parser.GetCommonOptions(nil, opts...).URI
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	docs := make([]*schema.Document, 0, len(s.pages))
	for _, p := range s.pages {
		docs = append(docs, &schema.Document{Content: p})
	}
	return docs, nil
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		expect Format
		err    error
	}{
		{path: "cv.pdf", expect: FormatPDF},
		{path: "dir/CV.PDF", expect: FormatPDF},
		{path: "cv.docx", expect: FormatDOCX},
		{path: "cv.Docx", expect: FormatDOCX},
		{path: "cv.txt", err: errs.ErrUnsupportedFormat},
		{path: "cv.doc", err: errs.ErrUnsupportedFormat},
		{path: "cv", err: errs.ErrUnsupportedFormat},
		{path: "pdf", err: errs.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, err := FormatOf(tt.path)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	stub := &stubParser{}
	e, err := New(context.Background(), nil, WithParsers(stub, stub))
	require.NoError(t, err)

	path := writeFile(t, "resume.txt", []byte("plain text resume"))

	_, err = e.Extract(context.Background(), path)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, errs.ErrExtraction)
	assert.Zero(t, stub.calls)
}

func TestExtractPDFPages(t *testing.T) {
	stub := &stubParser{pages: []string{"page one", "page two"}}
	e, err := New(context.Background(), nil, WithParsers(stub, nil))
	require.NoError(t, err)

	path := writeFile(t, "jane.pdf", []byte("%PDF-1.4"))

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "jane.pdf", doc.Name)
	assert.Equal(t, FormatPDF, doc.Format)
	assert.Equal(t, []string{"page one", "page two"}, doc.Pages)
	assert.Equal(t, 16, doc.Chars())
	assert.Equal(t, path, stub.uri)
}

func TestExtractMissingFile(t *testing.T) {
	stub := &stubParser{}
	e, err := New(context.Background(), nil, WithParsers(stub, nil))
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.ErrorIs(t, err, errs.ErrExtraction)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractParserFailureIsWrapped(t *testing.T) {
	cause := errors.New("xref table corrupt")
	stub := &stubParser{err: cause}
	e, err := New(context.Background(), nil, WithParsers(stub, nil))
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), writeFile(t, "broken.pdf", []byte("garbage")))
	require.ErrorIs(t, err, errs.ErrExtraction)
	assert.ErrorIs(t, err, cause)
}

func TestExtractCorruptPDFWithDefaultParser(t *testing.T) {
	e, err := New(context.Background(), nil)
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), writeFile(t, "broken.pdf", []byte("definitely not a pdf")))
	require.ErrorIs(t, err, errs.ErrExtraction)
}

func TestExtractDOCX(t *testing.T) {
	e, err := New(context.Background(), nil, WithParsers(&stubParser{}, nil))
	require.NoError(t, err)

	path := writeDOCX(t, "john.docx", `<w:p><w:r><w:t>John Smith</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Senior</w:t></w:r><w:r><w:t xml:space="preserve"> Engineer</w:t></w:r></w:p>`)

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, doc.Format)
	assert.Equal(t, []string{"John Smith\nSenior Engineer"}, doc.Pages)
}

func TestExtractCorruptDOCX(t *testing.T) {
	e, err := New(context.Background(), nil, WithParsers(&stubParser{}, nil))
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), writeFile(t, "broken.docx", []byte("PK not really a zip")))
	require.ErrorIs(t, err, errs.ErrExtraction)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
