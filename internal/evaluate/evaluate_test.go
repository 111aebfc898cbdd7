package evaluate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/errs"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	lastOpts   ai.Options
	deadline   bool
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	s.lastPrompt = prompt
	s.lastOpts = opts
	_, s.deadline = ctx.Deadline()
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestEvaluatorEvaluate(t *testing.T) {
	stub := &stubGenerator{response: "\n  The candidate has strong backend experience.  \n"}
	evaluator := New(stub, nil)

	got, err := evaluator.Evaluate(context.Background(), "Jane Doe\nGo, Kubernetes")
	require.NoError(t, err)

	assert.Equal(t, "The candidate has strong backend experience.", got)
	assert.Equal(t, ai.Options{Temperature: 0.5, MaxOutputTokens: 4096}, stub.lastOpts)
	assert.True(t, stub.deadline, "expected the provider call to carry a deadline")
	assert.Contains(t, stub.lastPrompt, "------------\nJane Doe\nGo, Kubernetes\n------------")
	assert.NotContains(t, stub.lastPrompt, placeholder)
}

func TestEvaluatorWrapsProviderFailure(t *testing.T) {
	cause := errors.New("429 rate limited")
	evaluator := New(&stubGenerator{err: cause}, nil)

	_, err := evaluator.Evaluate(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrEvaluation)
	require.ErrorIs(t, err, cause)
}

func TestEvaluatorEmptyResponse(t *testing.T) {
	_, err := New(&stubGenerator{response: " \n "}, nil).Evaluate(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrEvaluation)
}

func TestEvaluatorWithoutGenerator(t *testing.T) {
	_, err := New(nil, nil).Evaluate(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrEvaluation)
}

func TestEvaluatorNoTimeout(t *testing.T) {
	stub := &stubGenerator{response: "ok"}
	_, err := New(stub, nil, WithTimeout(0)).Evaluate(context.Background(), "text")
	require.NoError(t, err)
	assert.False(t, stub.deadline)
}

func TestEvaluatorLogsPreviews(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: strings.Repeat("a", 50)}

	evaluator := New(stub, zap.New(core), WithMaxLogLength(10), WithTimeout(time.Second))
	_, err := evaluator.Evaluate(context.Background(), "text")
	require.NoError(t, err)

	responses := logs.FilterMessage("generate content response").All()
	require.Len(t, responses, 1)
	assert.Equal(t, strings.Repeat("a", 10)+"...", responses[0].ContextMap()["response_preview"])

	requests := logs.FilterMessage("generate content request").All()
	require.Len(t, requests, 1)
	assert.Len(t, requests[0].ContextMap()["prompt_preview"], 13)
}

func TestBuildPromptRubric(t *testing.T) {
	prompt := BuildPrompt("resume body")

	for _, criterion := range []string{
		"Relevant Skills", "Experience", "Education",
		"Certifications", "Projects", "Communication Skills",
	} {
		assert.Contains(t, prompt, criterion)
	}
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "SUMMARY:"))
	assert.Equal(t, 1, strings.Count(prompt, "resume body"))
}
