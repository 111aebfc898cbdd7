package secrets

import (
	"os"
	"strings"

	"github.com/spigell/resume-screener/internal/errs"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value, usually coming from an environment
	// variable bound in the configuration layer.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
	// Hint is appended to the error when no secret could be resolved.
	Hint string
}

// Load returns the trimmed secret from src. Every failure is an
// errs.ErrConfiguration so that callers can stop before any network call.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	value := src.Value
	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errs.Configuration("reading %s from file %q: %w", name, file, err)
		}
		value = string(data)
	}

	secret := strings.TrimSpace(value)
	if secret != "" {
		return secret, nil
	}

	hint := ""
	if h := strings.TrimSpace(src.Hint); h != "" {
		hint = " (" + h + ")"
	}

	if file != "" {
		return "", errs.Configuration("%s file %q is empty%s", name, file, hint)
	}
	return "", errs.Configuration("%s is not configured%s", name, hint)
}
