package supervise

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vietddude/orchestrator/internal/metrics"
)

// Endpoint identifies where a supervised service should become reachable.
type Endpoint struct {
	Host       string
	Port       int
	HealthPath string
	MaxWait    time.Duration
}

// URL builds the probe target. HealthPath is optional; the root path is
// enough to prove the port is listening.
func (e Endpoint) URL() string {
	path := e.HealthPath
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("http://%s:%d%s", e.Host, e.Port, path)
}

// Probe polls an endpoint until it answers or the deadline elapses.
//
// Any completed HTTP exchange counts as ready, error statuses included: the
// probe proves liveness of the port, not correctness of the endpoint.
type Probe struct {
	Interval time.Duration
	client   *http.Client
}

// NewProbe creates a probe with a fixed 1s polling interval.
func NewProbe() *Probe {
	return &Probe{
		Interval: 1 * time.Second,
		client:   &http.Client{Timeout: 2 * time.Second},
	}
}

// Wait polls the endpoint once per interval until the first completed
// exchange or until MaxWait worth of attempts have been spent. It returns
// true on the poll immediately following the first success.
func (p *Probe) Wait(ctx context.Context, name string, ep Endpoint) bool {
	attempts := int(ep.MaxWait / p.Interval)
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		metrics.ProbeAttemptsTotal.WithLabelValues(name).Inc()
		if p.check(ctx, ep.URL()) {
			return true
		}

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(p.Interval):
		}
	}
	return false
}

func (p *Probe) check(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
