// Package ingestion expands command line arguments into resume paths.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
)

// Collector expands files and directories into an ordered list of resume paths.
type Collector struct {
	exclude []string
	logger  *zap.Logger
}

// New creates a collector. Exclude patterns are matched with filepath.Match
// against the base name of every candidate.
func New(logger *zap.Logger, exclude ...string) (*Collector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	patterns := make([]string, 0, len(exclude))
	for _, p := range exclude {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q: %w", p, err)
		}
		patterns = append(patterns, p)
	}

	return &Collector{exclude: patterns, logger: logger}, nil
}

// Collect keeps the argument order. A directory is replaced by its .pdf and
// .docx files in lexical order, without descending into subdirectories.
// Other paths are kept as given, even when they do not exist or have an
// unsupported extension, so the extractor reports them per resume.
func (c *Collector) Collect(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}

		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			if c.excluded(arg) {
				continue
			}
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %q: %w", arg, err)
		}

		found := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if _, err := extract.FormatOf(name); err != nil {
				continue
			}
			if c.excluded(name) {
				continue
			}
			paths = append(paths, filepath.Join(arg, name))
			found++
		}

		c.logger.Debug("expanded directory", zap.String("path", arg), zap.Int("resumes", found))
	}

	return paths, nil
}

func (c *Collector) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range c.exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			c.logger.Info("excluding resume", zap.String("path", path), zap.String("pattern", pattern))
			return true
		}
	}
	return false
}
