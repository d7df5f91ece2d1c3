package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vietddude/orchestrator/internal/core/domain"
)

// WriteCSV writes records as a CSV file with the canonical header.
func WriteCSV(path string, records []domain.WalletAnalytics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(domain.CSVHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := w.Write(records[i].CSVRow()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(path string, records []domain.WalletAnalytics) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteRaw writes a pre-rendered dataset (e.g. a CSV export body) verbatim.
func WriteRaw(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
