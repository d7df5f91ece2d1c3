package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/vietddude/orchestrator/internal/core/domain"
)

func sampleRecords() []domain.WalletAnalytics {
	return []domain.WalletAnalytics{
		{
			Address:                 "0x742d35Cc6634C0532925a3b8D4C9db96c4b4d8b6",
			AvgMinBetweenReceivedTx: 42.5,
			SentTxCount:             12,
			TotalEtherBalance:       -0.25,
		},
		{
			Address: "0x8C89a6bf53346A146192C0bE2f32b8C5f4F269C0",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := WriteCSV(path, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2 records", len(rows))
	}
	if rows[0][0] != "address" {
		t.Errorf("header = %v", rows[0])
	}
	if len(rows[0]) != len(domain.CSVHeader()) {
		t.Errorf("header width = %d, want %d", len(rows[0]), len(domain.CSVHeader()))
	}
	if rows[1][0] != "0x742d35Cc6634C0532925a3b8D4C9db96c4b4d8b6" {
		t.Errorf("row 1 address = %q", rows[1][0])
	}
	if rows[1][2] != "42.5" {
		t.Errorf("row 1 avg_min_between_received_tx = %q, want 42.5", rows[1][2])
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := WriteJSON(path, sampleRecords()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var records []domain.WalletAnalytics
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].SentTxCount != 12 {
		t.Errorf("sent_tx_count = %d, want 12", records[0].SentTxCount)
	}
}
