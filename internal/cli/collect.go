package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vietddude/orchestrator/internal/analytics"
	"github.com/vietddude/orchestrator/internal/analytics/collect"
	"github.com/vietddude/orchestrator/internal/core/domain"
	redisclient "github.com/vietddude/orchestrator/internal/infra/redis"
	"github.com/vietddude/orchestrator/internal/infra/storage/postgres"
	"github.com/vietddude/orchestrator/internal/output"
)

var (
	singleAddr    string
	addressesFile string
	outputPath    string
	batchSize     int
	outputFormat  string
	apiURL        string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect wallet analytics data in bulk",
	Long:  `Collect fetches analytics for a single wallet or for a file of addresses (one per line), batching and pacing requests against the backend API.`,
	Run:   runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&singleAddr, "single", "", "single wallet address to analyze")
	collectCmd.Flags().StringVar(&addressesFile, "addresses", "", "file containing wallet addresses (one per line)")
	collectCmd.Flags().StringVar(&outputPath, "output", "wallet_analytics.csv", "output filename")
	collectCmd.Flags().IntVar(&batchSize, "batch-size", 0, "batch size for bulk requests (default from config)")
	collectCmd.Flags().StringVar(&outputFormat, "format", "csv", "output format (csv or json)")
	collectCmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (default from config)")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if outputFormat != "csv" && outputFormat != "json" {
		slog.Error("Invalid format", "format", outputFormat)
		os.Exit(1)
	}
	if singleAddr == "" && addressesFile == "" {
		_ = cmd.Help()
		os.Exit(1)
	}

	base := cfg.API.BaseURL
	if apiURL != "" {
		base = apiURL
	}
	retry := analytics.RetryConfig{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialDelay:    cfg.Retry.InitialDelay,
		MaxDelay:        cfg.Retry.MaxDelay,
		BackoffMultiple: cfg.Retry.BackoffMultiple,
	}
	client := analytics.NewClient(base, cfg.API.Timeout, retry)

	ctx := context.Background()

	if singleAddr != "" {
		collectSingle(ctx, client, singleAddr)
		return
	}

	addresses, err := loadAddressFile(addressesFile)
	if err != nil {
		slog.Error("Failed to read address file", "file", addressesFile, "error", err)
		os.Exit(1)
	}

	size := cfg.Collect.BatchSize
	if batchSize > 0 {
		size = batchSize
	}

	// Small CSV runs fit one export call; everything else goes through the
	// paced batch path.
	if outputFormat == "csv" {
		valid, invalid := domain.FilterAddresses(addresses)
		if len(valid) == 0 {
			slog.Error("No valid addresses found", "invalid", invalid)
			os.Exit(1)
		}
		if len(valid) <= cfg.Collect.ExportLimit {
			if exportDataset(ctx, client, valid, invalid) {
				return
			}
			slog.Warn("Export failed, falling back to batch collection")
		}
	}

	collector := collect.New(client, collect.Config{BatchSize: size, Pacing: cfg.Collect.Pacing})

	if cfg.Redis.URL != "" {
		cache, err := redisclient.NewCache(cfg.Redis, cfg.Collect.CacheTTL)
		if err != nil {
			slog.Warn("Failed to connect to Redis, cache disabled", "error", err)
		} else {
			defer func() {
				_ = cache.Close()
			}()
			collector.SetCache(cache)
		}
	}

	startedAt := time.Now()
	report, err := collector.Collect(ctx, addresses)
	if err != nil {
		if errors.Is(err, collect.ErrNoValidAddresses) {
			slog.Error("No valid addresses found", "invalid", report.Invalid)
		} else {
			slog.Error("Collection aborted", "error", err)
		}
		os.Exit(1)
	}

	if err := writeReport(report); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}

	persistReport(ctx, cfg.Database, report, startedAt)

	slog.Info("Collection complete",
		"collected", len(report.Records),
		"failed", len(report.Failures),
		"invalid", report.Invalid,
		"cache_hits", report.CacheHit,
		"batches", report.Batches,
		"output", outputPath)
	for _, f := range report.Failures {
		slog.Warn("Address not collected", "address", f.Address, "reason", f.Reason)
	}
}

func collectSingle(ctx context.Context, client *analytics.Client, addr string) {
	if !domain.ValidAddress(addr) {
		slog.Error("Invalid address format", "address", addr)
		os.Exit(1)
	}

	slog.Info("Fetching analytics", "address", addr)
	rec, err := client.WalletAnalytics(ctx, addr)
	if err != nil {
		slog.Error("Failed to fetch data", "address", addr, "error", err)
		os.Exit(1)
	}

	if outputFormat == "json" {
		data, _ := json.MarshalIndent(rec, "", "  ")
		fmt.Println(string(data))
		return
	}

	if err := output.WriteCSV(outputPath, []domain.WalletAnalytics{*rec}); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
	slog.Info("Data saved", "output", outputPath)
}

func exportDataset(ctx context.Context, client *analytics.Client, valid []string, invalid int) bool {
	data, err := client.ExportDataset(ctx, valid, outputPath)
	if err != nil {
		slog.Warn("Export request failed", "error", err)
		return false
	}
	if err := output.WriteRaw(outputPath, data); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
	slog.Info("Dataset exported", "addresses", len(valid), "invalid", invalid, "output", outputPath)
	return true
}

func writeReport(report *collect.Report) error {
	if outputFormat == "json" {
		return output.WriteJSON(outputPath, report.Records)
	}
	return output.WriteCSV(outputPath, report.Records)
}

// persistReport records the run in postgres when a database is configured.
func persistReport(ctx context.Context, dbCfg postgres.Config, report *collect.Report, startedAt time.Time) {
	if dbCfg.URL == "" {
		return
	}

	db, err := postgres.NewDB(ctx, dbCfg)
	if err != nil {
		slog.Warn("Failed to connect to database, run not persisted", "error", err)
		return
	}
	defer func() {
		_ = db.Close()
	}()

	run := &domain.CollectionRun{
		ID:         uuid.NewString(),
		Source:     addressesFile,
		Requested:  len(report.Records) + len(report.Failures) + report.Invalid,
		Collected:  len(report.Records),
		Failed:     len(report.Failures),
		Invalid:    report.Invalid,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}

	repo := postgres.NewRunRepo(db)
	if err := repo.SaveRun(ctx, run); err != nil {
		slog.Warn("Failed to persist collection run", "error", err)
		return
	}
	if err := repo.SaveRecords(ctx, run.ID, report.Records); err != nil {
		slog.Warn("Failed to persist records", "error", err)
		return
	}
	slog.Info("Run persisted", "run_id", run.ID)
}

func loadAddressFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var addresses []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			addresses = append(addresses, line)
		}
	}
	return addresses, nil
}
