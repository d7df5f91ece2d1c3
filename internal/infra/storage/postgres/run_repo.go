package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vietddude/orchestrator/internal/core/domain"
)

// RunRepo persists collection runs and their records.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new PostgreSQL collection-run repository.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRun inserts one collection run, assigning it an id if unset.
func (r *RunRepo) SaveRun(ctx context.Context, run *domain.CollectionRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO collection_runs (id, source, requested, collected, failed, invalid, started_at, finished_at)
		VALUES (:id, :source, :requested, :collected, :failed, :invalid, :started_at, :finished_at)`,
		run)
	if err != nil {
		return fmt.Errorf("failed to save collection run: %w", err)
	}
	return nil
}

// SaveRecords upserts the collected analytics rows for a run.
func (r *RunRepo) SaveRecords(ctx context.Context, runID string, records []domain.WalletAnalytics) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const stmt = `
		INSERT INTO wallet_analytics (
			run_id, address,
			avg_min_between_sent_tx, avg_min_between_received_tx, time_diff_first_last_mins,
			sent_tx_count, received_tx_count, created_contracts_count,
			max_value_received, avg_value_received, avg_value_sent,
			total_ether_sent, total_ether_received, total_ether_balance
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		ON CONFLICT (address) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			avg_min_between_sent_tx = EXCLUDED.avg_min_between_sent_tx,
			avg_min_between_received_tx = EXCLUDED.avg_min_between_received_tx,
			time_diff_first_last_mins = EXCLUDED.time_diff_first_last_mins,
			sent_tx_count = EXCLUDED.sent_tx_count,
			received_tx_count = EXCLUDED.received_tx_count,
			created_contracts_count = EXCLUDED.created_contracts_count,
			max_value_received = EXCLUDED.max_value_received,
			avg_value_received = EXCLUDED.avg_value_received,
			avg_value_sent = EXCLUDED.avg_value_sent,
			total_ether_sent = EXCLUDED.total_ether_sent,
			total_ether_received = EXCLUDED.total_ether_received,
			total_ether_balance = EXCLUDED.total_ether_balance`

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, stmt,
			runID, rec.Address,
			rec.AvgMinBetweenSentTx, rec.AvgMinBetweenReceivedTx, rec.TimeDiffFirstLastMins,
			rec.SentTxCount, rec.ReceivedTxCount, rec.CreatedContractsCount,
			rec.MaxValueReceived, rec.AvgValueReceived, rec.AvgValueSent,
			rec.TotalEtherSent, rec.TotalEtherReceived, rec.TotalEtherBalance,
		); err != nil {
			return fmt.Errorf("failed to save record for %s: %w", rec.Address, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// GetRecords returns the stored analytics rows for a run, in address order.
func (r *RunRepo) GetRecords(ctx context.Context, runID string) ([]domain.WalletAnalytics, error) {
	var records []domain.WalletAnalytics
	err := r.db.SelectContext(ctx, &records, `
		SELECT address,
			avg_min_between_sent_tx, avg_min_between_received_tx, time_diff_first_last_mins,
			sent_tx_count, received_tx_count, created_contracts_count,
			max_value_received, avg_value_received, avg_value_sent,
			total_ether_sent, total_ether_received, total_ether_balance
		FROM wallet_analytics WHERE run_id = $1 ORDER BY address`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	return records, nil
}
