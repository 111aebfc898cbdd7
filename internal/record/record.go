// Package record persists screening results as a flat table.
package record

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/resume-screener/internal/errs"
	"github.com/spigell/resume-screener/internal/screening"
)

const (
	DefaultPath = "output/evaluations.csv"

	extXLSX = ".xlsx"
)

// Header is the first row of every written table.
var Header = []string{"Resume", "Evaluation", "Recommendation"}

// Write stores results at path, replacing any existing file. The format is
// chosen by extension: .xlsx produces a workbook, anything else CSV.
// Every failure is an errs.ErrPersistence.
func Write(path string, results []screening.Result) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Persistence(path, err)
		}
	}

	var err error
	if IsXLSX(path) {
		err = writeXLSX(path, results)
	} else {
		err = writeCSV(path, results)
	}
	if err != nil {
		return errs.Persistence(path, err)
	}

	return nil
}

// IsXLSX reports whether path names a workbook.
func IsXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), extXLSX)
}

func row(r screening.Result) []string {
	return []string{r.Resume, r.Evaluation, string(r.Recommendation)}
}
