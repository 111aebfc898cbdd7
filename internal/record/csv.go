package record

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spigell/resume-screener/internal/screening"
)

func writeCSV(path string, results []screening.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	records := make([][]string, 0, len(results)+1)
	records = append(records, Header)
	for _, r := range results {
		records = append(records, row(r))
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	return nil
}
