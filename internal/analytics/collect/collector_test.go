package collect

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/orchestrator/internal/analytics"
	"github.com/vietddude/orchestrator/internal/core/domain"
)

type fakeAPI struct {
	calls   [][]string
	handler func(batch []string) (*analytics.BulkResult, error)
}

func (f *fakeAPI) BulkAnalytics(_ context.Context, addresses []string) (*analytics.BulkResult, error) {
	f.calls = append(f.calls, addresses)
	return f.handler(addresses)
}

// echoAll returns one record per requested address.
func echoAll(batch []string) (*analytics.BulkResult, error) {
	res := &analytics.BulkResult{Count: len(batch)}
	for _, addr := range batch {
		res.Records = append(res.Records, domain.WalletAnalytics{Address: addr})
	}
	return res, nil
}

func newTestCollector(api API, batchSize int) *Collector {
	return New(api, Config{BatchSize: batchSize, Pacing: 0})
}

// assertExactlyOnce checks the core invariant: every valid input address
// appears in exactly one of Records or Failures.
func assertExactlyOnce(t *testing.T, valid []string, report *Report) {
	t.Helper()
	seen := make(map[string]int)
	for _, r := range report.Records {
		seen[r.Address]++
	}
	for _, f := range report.Failures {
		seen[f.Address]++
	}
	for _, addr := range valid {
		if seen[addr] != 1 {
			t.Errorf("address %s appears %d times, want exactly 1", addr, seen[addr])
		}
	}
	if len(report.Records)+len(report.Failures) != len(valid) {
		t.Errorf("records+failures = %d, want %d",
			len(report.Records)+len(report.Failures), len(valid))
	}
}

func TestCollector_BatchingAndOrder(t *testing.T) {
	addrs := genAddrs(250)
	api := &fakeAPI{handler: echoAll}

	report, err := newTestCollector(api, 100).Collect(context.Background(), addrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Scenario: 250 addresses, batch size 100 -> batches of 100, 100, 50.
	if len(api.calls) != 3 {
		t.Fatalf("batches = %d, want 3", len(api.calls))
	}
	for i, want := range []int{100, 100, 50} {
		if len(api.calls[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(api.calls[i]), want)
		}
	}

	if len(report.Records) != 250 {
		t.Errorf("records = %d, want 250", len(report.Records))
	}
	for i, rec := range report.Records {
		if rec.Address != addrs[i] {
			t.Fatalf("record %d out of order", i)
		}
	}
	assertExactlyOnce(t, addrs, report)
}

func TestCollector_BatchFailureIsNonFatal(t *testing.T) {
	addrs := genAddrs(30)
	exhausted := &analytics.ExhaustedError{Op: "bulk", Attempts: 3, Last: &analytics.StatusError{Code: 503}}

	batchNum := 0
	api := &fakeAPI{handler: func(batch []string) (*analytics.BulkResult, error) {
		batchNum++
		if batchNum == 2 {
			return nil, exhausted
		}
		return echoAll(batch)
	}}

	report, err := newTestCollector(api, 10).Collect(context.Background(), addrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// All three batches ran despite the middle one failing.
	if len(api.calls) != 3 {
		t.Fatalf("batches = %d, want 3", len(api.calls))
	}
	if len(report.Records) != 20 {
		t.Errorf("records = %d, want 20", len(report.Records))
	}
	if len(report.Failures) != 10 {
		t.Errorf("failures = %d, want 10", len(report.Failures))
	}
	for _, f := range report.Failures {
		if f.Reason == "" {
			t.Error("failure missing reason")
		}
	}
	assertExactlyOnce(t, addrs, report)
}

func TestCollector_FiltersInvalidAddressesLocally(t *testing.T) {
	valid := genAddrs(3)
	candidates := append([]string{"0xabc"}, valid...)

	api := &fakeAPI{handler: echoAll}
	report, err := newTestCollector(api, 10).Collect(context.Background(), candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Invalid != 1 {
		t.Errorf("invalid = %d, want 1", report.Invalid)
	}
	for _, call := range api.calls {
		for _, addr := range call {
			if addr == "0xabc" {
				t.Error("invalid address reached the network")
			}
		}
	}
	assertExactlyOnce(t, valid, report)
}

func TestCollector_NoValidAddresses(t *testing.T) {
	api := &fakeAPI{handler: echoAll}
	report, err := newTestCollector(api, 10).Collect(context.Background(), []string{"0xabc", "nope"})

	if !errors.Is(err, ErrNoValidAddresses) {
		t.Fatalf("error = %v, want ErrNoValidAddresses", err)
	}
	if report.Invalid != 2 {
		t.Errorf("invalid = %d, want 2", report.Invalid)
	}
	if len(api.calls) != 0 {
		t.Error("no network call should be made")
	}
}

func TestCollector_ReconcilesServiceReply(t *testing.T) {
	addrs := genAddrs(4)
	api := &fakeAPI{handler: func(batch []string) (*analytics.BulkResult, error) {
		// Service returns a record for [0], reports an error for [1],
		// silently drops [2] and [3].
		return &analytics.BulkResult{
			Records: []domain.WalletAnalytics{{Address: batch[0]}},
			Errors:  []analytics.ItemError{{Address: batch[1], Message: "no transactions found"}},
			Count:   1,
		}, nil
	}}

	report, err := newTestCollector(api, 10).Collect(context.Background(), addrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Records) != 1 {
		t.Errorf("records = %d, want 1", len(report.Records))
	}
	if len(report.Failures) != 3 {
		t.Fatalf("failures = %d, want 3", len(report.Failures))
	}
	if report.Failures[0].Reason != "no transactions found" {
		t.Errorf("failure reason = %q", report.Failures[0].Reason)
	}
	for _, f := range report.Failures[1:] {
		if f.Reason != "not returned by service" {
			t.Errorf("dropped address reason = %q", f.Reason)
		}
	}
	assertExactlyOnce(t, addrs, report)
}

type fakeCache struct {
	store map[string]*domain.WalletAnalytics
	sets  int
}

func (f *fakeCache) Get(_ context.Context, address string) (*domain.WalletAnalytics, bool, error) {
	rec, ok := f.store[address]
	return rec, ok, nil
}

func (f *fakeCache) Set(_ context.Context, rec *domain.WalletAnalytics) error {
	f.store[rec.Address] = rec
	f.sets++
	return nil
}

func TestCollector_CacheHitsSkipNetwork(t *testing.T) {
	addrs := genAddrs(5)
	cache := &fakeCache{store: map[string]*domain.WalletAnalytics{
		addrs[0]: {Address: addrs[0], SentTxCount: 7},
		addrs[3]: {Address: addrs[3]},
	}}

	api := &fakeAPI{handler: echoAll}
	c := newTestCollector(api, 10)
	c.SetCache(cache)

	report, err := c.Collect(context.Background(), addrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.CacheHit != 2 {
		t.Errorf("cache hits = %d, want 2", report.CacheHit)
	}
	if len(api.calls) != 1 || len(api.calls[0]) != 3 {
		t.Fatalf("expected one batch of 3 misses, got %v", api.calls)
	}
	// Fetched records were written back to the cache.
	if cache.sets != 3 {
		t.Errorf("cache sets = %d, want 3", cache.sets)
	}
	assertExactlyOnce(t, addrs, report)
}
