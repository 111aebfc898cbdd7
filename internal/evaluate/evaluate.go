// Package evaluate asks a hosted model for a qualitative resume review.
package evaluate

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/errs"
	"github.com/spigell/resume-screener/internal/logger"
)

const (
	Temperature     float32 = 0.5
	MaxOutputTokens         = 4096

	DefaultMaxLogLength = 200
	DefaultTimeout      = 60 * time.Second

	placeholder = "{{RESUME_TEXT}}"
)

//go:embed prompt.md
var promptTemplate string

type Evaluator struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
	timeout   time.Duration
}

type Option func(*Evaluator)

// WithTimeout bounds a single provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		if d >= 0 {
			e.timeout = d
		}
	}
}

func WithMaxLogLength(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxLogLen = n
		}
	}
}

func New(generator ai.Generator, log *zap.Logger, opts ...Option) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}

	e := &Evaluator{
		generator: generator,
		logger:    log,
		maxLogLen: DefaultMaxLogLength,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate sends text through the rubric prompt and returns the trimmed
// answer. Every failure is an errs.ErrEvaluation.
func (e *Evaluator) Evaluate(ctx context.Context, text string) (string, error) {
	if e == nil || e.generator == nil {
		return "", errs.Evaluation(errors.New("evaluator has no completion provider"))
	}

	prompt := BuildPrompt(text)

	e.logger.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.Preview(prompt, e.maxLogLen)),
	)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	started := time.Now()
	raw, err := e.generator.GenerateContent(ctx, prompt, ai.Options{
		Temperature:     Temperature,
		MaxOutputTokens: MaxOutputTokens,
	})
	if err != nil {
		return "", errs.Evaluation(err)
	}

	evaluation := strings.TrimSpace(raw)
	if evaluation == "" {
		return "", errs.Evaluation(errors.New("provider returned an empty evaluation"))
	}

	e.logger.Debug("generate content response",
		zap.Duration("took", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(evaluation)),
		zap.String("response_preview", logger.Preview(evaluation, e.maxLogLen)),
	)

	return evaluation, nil
}

// BuildPrompt substitutes text into the evaluation rubric.
func BuildPrompt(text string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n" + placeholder + "\n\nSUMMARY:"
	}
	return strings.Replace(template, placeholder, text, 1)
}
