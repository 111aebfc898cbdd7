// Package extract turns resume files into ordered page texts.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/errs"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

const defaultParseTimeout = 30 * time.Second

// Document is the extracted content of one resume file.
type Document struct {
	Name   string
	Path   string
	Format Format
	Pages  []string
}

// Chars returns the number of runes over all pages.
func (d *Document) Chars() int {
	total := 0
	for _, page := range d.Pages {
		total += utf8.RuneCountInString(page)
	}
	return total
}

// FormatOf infers the document format from the file extension only.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", errs.UnsupportedFormat(path, ext)
	}
}

type Extractor struct {
	pdf     parser.Parser
	docx    parser.Parser
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Extractor)

// WithParsers replaces the per-format parsers. Nil values keep the defaults.
func WithParsers(pdfParser, docxParser parser.Parser) Option {
	return func(e *Extractor) {
		if pdfParser != nil {
			e.pdf = pdfParser
		}
		if docxParser != nil {
			e.docx = docxParser
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func New(ctx context.Context, logger *zap.Logger, options ...Option) (*Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Extractor{
		docx:    &DOCXParser{},
		timeout: defaultParseTimeout,
		logger:  logger,
	}

	for _, option := range options {
		option(e)
	}

	if e.pdf == nil {
		p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
		if err != nil {
			return nil, fmt.Errorf("create pdf parser: %w", err)
		}
		e.pdf = p
	}

	return e, nil
}

// Extract reads the file at path and returns its pages in document order.
func (e *Extractor) Extract(ctx context.Context, path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var p parser.Parser
	switch format {
	case FormatPDF:
		p = e.pdf
	case FormatDOCX:
		p = e.docx
	}

	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, errs.Extraction(path, err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := parse(ctx, p, file, path)
	if err != nil {
		return nil, errs.Extraction(path, err)
	}

	doc := &Document{
		Name:   filepath.Base(path),
		Path:   path,
		Format: format,
		Pages:  make([]string, 0, len(docs)),
	}
	for _, d := range docs {
		if d == nil {
			continue
		}
		doc.Pages = append(doc.Pages, d.Content)
	}

	e.logger.Debug("document extracted",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("pages", len(doc.Pages)),
		zap.Int("chars", doc.Chars()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return doc, nil
}

type parseResult struct {
	docs []*schema.Document
	err  error
}

// parse runs p in its own goroutine. The pdf decoder ignores ctx and may
// panic or loop on malformed objects, so the deadline is enforced here and a
// panic becomes an error. A parser stuck past the deadline is abandoned.
func parse(ctx context.Context, p parser.Parser, r io.Reader, path string) ([]*schema.Document, error) {
	done := make(chan parseResult, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- parseResult{err: fmt.Errorf("parser panic: %v", rec)}
			}
		}()

		docs, err := p.Parse(ctx, r, parser.WithURI(path))
		done <- parseResult{docs: docs, err: err}
	}()

	select {
	case res := <-done:
		return res.docs, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
