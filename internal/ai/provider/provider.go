// Package provider builds the configured completion backend.
package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/ai/groq"
	"github.com/spigell/resume-screener/internal/errs"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/secrets"
)

// Credentials holds the per-provider connection settings.
type Credentials struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

// Settings selects a provider and carries the credentials for each.
type Settings struct {
	Provider string      `mapstructure:"provider"`
	Groq     Credentials `mapstructure:"groq"`
	Gemini   Credentials `mapstructure:"gemini"`
}

// NewGenerator resolves the api key of the selected provider and creates its
// client. A missing key is an errs.ErrConfiguration and no client is built.
func NewGenerator(ctx context.Context, settings Settings, log *zap.Logger) (ai.Generator, error) {
	if log == nil {
		log = zap.NewNop()
	}

	name := strings.ToLower(strings.TrimSpace(settings.Provider))
	if name == "" {
		name = ai.ProviderGroq
	}

	switch name {
	case ai.ProviderGroq:
		key, err := secrets.Load(secrets.Source{
			Name:  "groq api key",
			Value: settings.Groq.APIKey,
			File:  settings.Groq.APIKeyFile,
			Hint:  "set GROQ_API_KEY or ai.groq.api-key-file",
		})
		if err != nil {
			return nil, err
		}

		model := settings.Groq.Model
		if strings.TrimSpace(model) == "" {
			model = groq.DefaultModel
		}

		client, err := groq.New(key, model, logger.ForProvider(log, name, model))
		if err != nil {
			return nil, err
		}
		if base := strings.TrimSpace(settings.Groq.BaseURL); base != "" {
			client.BaseURL = base
		}
		return client, nil

	case ai.ProviderGemini:
		key, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: settings.Gemini.APIKey,
			File:  settings.Gemini.APIKeyFile,
			Hint:  "set GEMINI_API_KEY or ai.gemini.api-key-file",
		})
		if err != nil {
			return nil, err
		}

		model := settings.Gemini.Model
		if strings.TrimSpace(model) == "" {
			model = gemini.DefaultModel
		}

		gen, err := gemini.NewGenerator(ctx, key, model, logger.ForProvider(log, name, model))
		if err != nil {
			return nil, err
		}
		return gen, nil

	default:
		return nil, errs.Configuration("unknown ai provider %q (expected %s or %s)", settings.Provider, ai.ProviderGroq, ai.ProviderGemini)
	}
}
