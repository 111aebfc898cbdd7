package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"google.golang.org/genai"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/errs"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), "  ", "", nil)
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestGeneratorGenerateContent(t *testing.T) {
	models := &fakeModels{resp: textResponse("The candidate shows", "", " strong Go skills. ")}
	gen := newGenerator(models, "", nil)

	out, err := gen.GenerateContent(context.Background(), "  evaluate  ", ai.Options{Temperature: 0.5, MaxOutputTokens: 4096})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "The candidate shows\nstrong Go skills." {
		t.Fatalf("unexpected output %q", out)
	}
	if models.model != DefaultModel {
		t.Fatalf("expected default model %q, got %q", DefaultModel, models.model)
	}
	if models.config == nil || models.config.Temperature == nil || *models.config.Temperature != 0.5 {
		t.Fatalf("expected temperature 0.5, got %+v", models.config)
	}
	if models.config.MaxOutputTokens != 4096 {
		t.Fatalf("expected max output tokens 4096, got %d", models.config.MaxOutputTokens)
	}
	if len(models.contents) != 1 || models.contents[0].Parts[0].Text != "evaluate" {
		t.Fatalf("unexpected contents: %+v", models.contents)
	}
}

func TestGeneratorErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		models *fakeModels
		prompt string
	}{
		{
			name:   "api error",
			models: &fakeModels{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}},
			prompt: "prompt",
		},
		{
			name:   "empty candidates",
			models: &fakeModels{resp: &genai.GenerateContentResponse{}},
			prompt: "prompt",
		},
		{
			name:   "blank text",
			models: &fakeModels{resp: textResponse("   ")},
			prompt: "prompt",
		},
		{
			name:   "nil response",
			models: &fakeModels{},
			prompt: "prompt",
		},
		{
			name:   "empty prompt",
			models: &fakeModels{resp: textResponse("ok")},
			prompt: " ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen := newGenerator(tt.models, "gemini-pro", nil)
			if _, err := gen.GenerateContent(context.Background(), tt.prompt, ai.Options{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestGeneratorEmptyPromptSkipsCall(t *testing.T) {
	models := &fakeModels{resp: textResponse("ok")}
	gen := newGenerator(models, "gemini-pro", nil)

	_, _ = gen.GenerateContent(context.Background(), "", ai.Options{})
	if models.calls != 0 {
		t.Fatalf("expected no api calls, got %d", models.calls)
	}
}

func TestGeneratorModel(t *testing.T) {
	if got := newGenerator(&fakeModels{}, " gemini-pro ", nil).Model(); got != "gemini-pro" {
		t.Fatalf("unexpected model %q", got)
	}

	var nilGen *Generator
	if nilGen.Model() != "" {
		t.Fatalf("expected empty model for nil generator")
	}
}
