// Package normalize bounds extracted resume text to the evaluation budget.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/resume-screener/internal/errs"
)

const (
	DefaultChunkSize    = 3000
	DefaultChunkOverlap = 200
	DefaultMaxChunks    = 2

	pageSeparator = "\n"
)

// Text is the bounded text handed to the evaluator.
type Text struct {
	Content string
	// Tokens is the token count of Content.
	Tokens int
	// Total is the token count of the whole document before truncation.
	Total     int
	Truncated bool
}

type Normalizer struct {
	tokenizer    Tokenizer
	chunkSize    int
	chunkOverlap int
	maxChunks    int
}

type Option func(*Normalizer)

func WithTokenizer(t Tokenizer) Option {
	return func(n *Normalizer) {
		if t != nil {
			n.tokenizer = t
		}
	}
}

// WithChunking overrides the chunk geometry the budget is derived from.
// Non-positive sizes and negative overlaps are ignored.
func WithChunking(size, overlap, maxChunks int) Option {
	return func(n *Normalizer) {
		if size <= 0 || maxChunks <= 0 || overlap < 0 {
			return
		}
		n.chunkSize = size
		n.chunkOverlap = overlap
		n.maxChunks = maxChunks
	}
}

// New returns a Normalizer counting with the r50k_base vocabulary unless
// WithTokenizer says otherwise.
func New(options ...Option) *Normalizer {
	n := &Normalizer{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		maxChunks:    DefaultMaxChunks,
	}

	for _, option := range options {
		option(n)
	}
	if n.tokenizer == nil {
		n.tokenizer = defaultTok()
	}

	return n
}

// Budget is the number of leading tokens kept: the span covered by the
// first maxChunks chunks when consecutive chunks overlap by chunkOverlap.
func (n *Normalizer) Budget() int {
	if n.chunkSize <= 0 || n.maxChunks <= 0 {
		return 0
	}

	stride := n.chunkSize - n.chunkOverlap
	if stride <= 0 {
		return n.chunkSize
	}

	return n.chunkSize + (n.maxChunks-1)*stride
}

// Normalize joins the pages in order and keeps the leading Budget tokens.
// A document without any non-blank page is rejected with ErrEmptyDocument.
func (n *Normalizer) Normalize(pages []string) (Text, error) {
	if isBlank(pages) {
		return Text{}, errs.EmptyDocument("")
	}

	var builder strings.Builder
	for _, page := range pages {
		builder.WriteString(page)
		builder.WriteString(pageSeparator)
	}
	joined := builder.String()

	ends := n.tokenizer.Ends(joined)
	budget := n.Budget()

	text := Text{Total: len(ends), Tokens: len(ends)}
	if len(ends) > budget {
		// byte-level tokens may stop inside a rune; drop them until the cut is clean
		keep := budget
		for keep > 0 && !utf8.RuneStart(joined[ends[keep-1]]) {
			keep--
		}
		cut := 0
		if keep > 0 {
			cut = ends[keep-1]
		}
		joined = joined[:cut]
		text.Tokens = keep
		text.Truncated = true
	}

	text.Content = strings.TrimRightFunc(joined, unicode.IsSpace)
	return text, nil
}

func isBlank(pages []string) bool {
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			return false
		}
	}
	return true
}
