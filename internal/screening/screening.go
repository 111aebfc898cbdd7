// Package screening runs the extract, normalize, evaluate and classify
// stages once per resume and collects the outcomes in input order.
package screening

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-screener/internal/classify"
	"github.com/spigell/resume-screener/internal/errs"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/normalize"
)

type Extractor interface {
	Extract(ctx context.Context, path string) (*extract.Document, error)
}

type Normalizer interface {
	Normalize(pages []string) (normalize.Text, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, text string) (string, error)
}

// Stage names the pipeline step an outcome failed in.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageEvaluate  Stage = "evaluate"
)

// Result is the screening verdict for one resume.
type Result struct {
	Resume         string
	Evaluation     string
	Recommendation classify.Recommendation
}

// Outcome is what one pipeline run produced: a Result, or the error and
// the stage it happened in.
type Outcome struct {
	Path   string
	Resume string
	Result *Result
	Err    error
	Stage  Stage
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total       int
	Shortlisted int
	Rejected    int
	Failed      int
}

// Batch holds the outcomes of one Run in input order.
type Batch struct {
	RunID    string
	Outcomes []Outcome
}

// Results returns the successful results in input order.
func (b *Batch) Results() []Result {
	results := make([]Result, 0, len(b.Outcomes))
	for _, o := range b.Outcomes {
		if o.OK() {
			results = append(results, *o.Result)
		}
	}
	return results
}

// Failures returns the failed outcomes in input order.
func (b *Batch) Failures() []Outcome {
	var failures []Outcome
	for _, o := range b.Outcomes {
		if !o.OK() {
			failures = append(failures, o)
		}
	}
	return failures
}

func (b *Batch) Summary() Summary {
	s := Summary{Total: len(b.Outcomes)}
	for _, o := range b.Outcomes {
		switch {
		case !o.OK():
			s.Failed++
		case o.Result.Recommendation == classify.Shortlist:
			s.Shortlisted++
		default:
			s.Rejected++
		}
	}
	return s
}

// ProgressFunc is called after each resume with the number finished so far.
type ProgressFunc func(done, total int, outcome Outcome)

type Screener struct {
	extractor  Extractor
	normalizer Normalizer
	evaluator  Evaluator
	logger     *zap.Logger
	workers    int
	progress   ProgressFunc
}

type Option func(*Screener)

// WithWorkers sets how many resumes are screened at once. Values below two
// keep the run sequential.
func WithWorkers(n int) Option {
	return func(s *Screener) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(s *Screener) {
		s.progress = fn
	}
}

func New(extractor Extractor, normalizer Normalizer, evaluator Evaluator, log *zap.Logger, opts ...Option) *Screener {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Screener{
		extractor:  extractor,
		normalizer: normalizer,
		evaluator:  evaluator,
		logger:     log,
		workers:    1,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run screens every path independently. A failing resume never stops the
// batch; its error is kept in the matching Outcome. The returned error is
// only set when ctx was cancelled.
func (s *Screener) Run(ctx context.Context, paths []string) (*Batch, error) {
	batch := &Batch{
		RunID:    uuid.NewString(),
		Outcomes: make([]Outcome, len(paths)),
	}

	log := logger.ForRun(s.logger, batch.RunID)
	log.Info("screening started", zap.Int("resumes", len(paths)), zap.Int("workers", s.workers))

	var (
		mu   sync.Mutex
		done int
	)
	finish := func(i int, o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		batch.Outcomes[i] = o
		done++
		if s.progress != nil {
			s.progress(done, len(paths), o)
		}
	}

	if s.workers <= 1 {
		for i, path := range paths {
			finish(i, s.screen(ctx, batch.RunID, path))
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(s.workers)
		for i, path := range paths {
			g.Go(func() error {
				finish(i, s.screen(ctx, batch.RunID, path))
				return nil
			})
		}
		_ = g.Wait()
	}

	summary := batch.Summary()
	log.Info("screening finished",
		zap.Int("total", summary.Total),
		zap.Int("shortlisted", summary.Shortlisted),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
	)

	return batch, ctx.Err()
}

func (s *Screener) screen(ctx context.Context, runID, path string) (out Outcome) {
	name := filepath.Base(path)
	out = Outcome{Path: path, Resume: name}
	log := logger.ForResume(s.logger, runID, name)

	fail := func(stage Stage, err error) Outcome {
		out.Stage = stage
		out.Err = err
		out.Result = nil
		log.Error("resume failed", zap.String("stage", string(stage)), zap.Error(err))
		return out
	}

	// A panicking stage fails only its own resume.
	stage := StageExtract
	defer func() {
		if r := recover(); r != nil {
			out = fail(stage, &errs.Error{
				Kind:    stageKind(stage),
				Op:      string(stage),
				Subject: path,
				Err:     fmt.Errorf("panic: %v", r),
			})
		}
	}()

	if err := ctx.Err(); err != nil {
		return fail(stage, err)
	}

	doc, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return fail(stage, err)
	}

	stage = StageNormalize
	text, err := s.normalizer.Normalize(doc.Pages)
	if err != nil {
		return fail(stage, err)
	}
	if text.Truncated {
		log.Info("resume truncated", zap.Int("tokens", text.Tokens), zap.Int("total_tokens", text.Total))
	}

	stage = StageEvaluate
	evaluation, err := s.evaluator.Evaluate(ctx, text.Content)
	if err != nil {
		return fail(stage, err)
	}

	recommendation := classify.Recommend(evaluation)
	out.Result = &Result{
		Resume:         name,
		Evaluation:     evaluation,
		Recommendation: recommendation,
	}

	log.Info("resume screened", zap.String("recommendation", recommendation.String()))

	return out
}

func stageKind(stage Stage) error {
	if stage == StageEvaluate {
		return errs.ErrEvaluation
	}
	return errs.ErrExtraction
}
