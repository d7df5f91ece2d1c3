package collect

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vietddude/orchestrator/internal/analytics"
	"github.com/vietddude/orchestrator/internal/core/domain"
	"github.com/vietddude/orchestrator/internal/metrics"
)

// ErrNoValidAddresses indicates local validation rejected every candidate.
var ErrNoValidAddresses = errors.New("no valid addresses found")

// API is the slice of the analytics client the collector drives.
type API interface {
	BulkAnalytics(ctx context.Context, addresses []string) (*analytics.BulkResult, error)
}

// Cache resolves analytics records collected recently, skipping the network
// for addresses it already knows.
type Cache interface {
	Get(ctx context.Context, address string) (*domain.WalletAnalytics, bool, error)
	Set(ctx context.Context, rec *domain.WalletAnalytics) error
}

// Config holds collection pacing settings.
type Config struct {
	BatchSize int
	Pacing    time.Duration
}

// Failure records one address that could not be collected.
type Failure struct {
	Address string `json:"address"`
	Reason  string `json:"reason"`
}

// Report is the merged outcome of one collection run. Every valid input
// address lands in exactly one of Records or Failures.
type Report struct {
	Records  []domain.WalletAnalytics
	Failures []Failure
	Invalid  int
	Batches  int
	CacheHit int
}

// Collector partitions a large address list into batches and drives the
// analytics API one batch at a time. Batching is strictly sequential with
// fixed pacing between batches: the remote service's rate limiting is
// untrusted, so no address may be lost or duplicated for throughput's sake.
type Collector struct {
	api   API
	cfg   Config
	cache Cache
	log   *slog.Logger
}

// New creates a collector.
func New(api API, cfg Config) *Collector {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &Collector{api: api, cfg: cfg, log: slog.Default()}
}

// SetCache attaches an optional analytics cache.
func (c *Collector) SetCache(cache Cache) { c.cache = cache }

// Collect validates candidates, fetches analytics batch by batch and merges
// the results. A batch that exhausts its retries marks each of its
// addresses failed and the run continues; the error return is reserved for
// "nothing to do" and cancellation.
func (c *Collector) Collect(ctx context.Context, candidates []string) (*Report, error) {
	valid, invalid := domain.FilterAddresses(candidates)
	report := &Report{Invalid: invalid}
	if invalid > 0 {
		metrics.InvalidAddressesTotal.Add(float64(invalid))
		c.log.Warn("Skipping invalid addresses", "count", invalid)
	}
	if len(valid) == 0 {
		return report, ErrNoValidAddresses
	}

	pending := valid
	if c.cache != nil {
		pending = c.resolveFromCache(ctx, valid, report)
	}

	batches := Partition(pending, c.cfg.BatchSize)
	for i, batch := range batches {
		c.log.Info("Processing batch", "batch", i+1, "total", len(batches), "addresses", len(batch))

		res, err := c.api.BulkAnalytics(ctx, batch)
		if err != nil {
			// Batch-level failure is non-fatal to the run.
			metrics.BatchFailuresTotal.Inc()
			c.log.Warn("Batch failed", "batch", i+1, "error", err)
			for _, addr := range batch {
				report.Failures = append(report.Failures, Failure{Address: addr, Reason: err.Error()})
			}
		} else {
			c.merge(ctx, batch, res, report)
		}

		report.Batches++
		metrics.BatchesTotal.Inc()

		if i == len(batches)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-time.After(c.cfg.Pacing):
		}
	}

	metrics.RecordsCollectedTotal.Add(float64(len(report.Records)))
	return report, nil
}

// resolveFromCache moves cache hits straight into the report and returns
// the addresses still needing a fetch.
func (c *Collector) resolveFromCache(ctx context.Context, addresses []string, report *Report) []string {
	var pending []string
	for _, addr := range addresses {
		rec, ok, err := c.cache.Get(ctx, addr)
		if err != nil {
			c.log.Debug("Cache lookup failed", "address", addr, "error", err)
		}
		if ok {
			report.Records = append(report.Records, *rec)
			report.CacheHit++
			metrics.CacheHitsTotal.Inc()
			continue
		}
		pending = append(pending, addr)
	}
	return pending
}

// merge folds one successful bulk reply into the report, reconciling the
// reply against the batch so no address is dropped or counted twice.
func (c *Collector) merge(ctx context.Context, batch []string, res *analytics.BulkResult, report *Report) {
	member := make(map[string]bool, len(batch))
	for _, addr := range batch {
		member[addr] = true
	}
	covered := make(map[string]bool, len(batch))

	// Pass-through: record order matches the service's response order.
	for _, rec := range res.Records {
		if covered[rec.Address] {
			continue
		}
		covered[rec.Address] = true
		report.Records = append(report.Records, rec)
		if c.cache != nil {
			r := rec
			if err := c.cache.Set(ctx, &r); err != nil {
				c.log.Debug("Cache store failed", "address", rec.Address, "error", err)
			}
		}
	}

	for _, itemErr := range res.Errors {
		if !member[itemErr.Address] || covered[itemErr.Address] {
			continue
		}
		covered[itemErr.Address] = true
		report.Failures = append(report.Failures, Failure{Address: itemErr.Address, Reason: itemErr.Message})
	}

	// Anything the service neither returned nor rejected is still a failure.
	for _, addr := range batch {
		if !covered[addr] {
			report.Failures = append(report.Failures, Failure{Address: addr, Reason: "not returned by service"})
		}
	}
}
