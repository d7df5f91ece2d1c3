package supervise

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

func endpointFor(t *testing.T, rawURL string, maxWait time.Duration) Endpoint {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return Endpoint{Host: host, Port: port, MaxWait: maxWait}
}

// deadPort returns a port nothing is listening on.
func deadPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func testProbe() *Probe {
	p := NewProbe()
	p.Interval = 20 * time.Millisecond
	return p
}

func TestProbe_ReadyOnOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if !testProbe().Wait(context.Background(), "backend", endpointFor(t, server.URL, time.Second)) {
		t.Error("expected ready")
	}
}

func TestProbe_ReadyOnErrorStatus(t *testing.T) {
	// The probe proves the port is listening, not that the request succeeded,
	// so 404/500 still count as ready.
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		if !testProbe().Wait(context.Background(), "backend", endpointFor(t, server.URL, time.Second)) {
			t.Errorf("expected ready for status %d", code)
		}
		server.Close()
	}
}

func TestProbe_FalseOnDeadline(t *testing.T) {
	ep := Endpoint{Host: "127.0.0.1", Port: deadPort(t), MaxWait: 100 * time.Millisecond}

	start := time.Now()
	if testProbe().Wait(context.Background(), "backend", ep) {
		t.Error("expected not ready")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("probe did not respect deadline, took %v", elapsed)
	}
}

func TestProbe_ReadyAfterLateBind(t *testing.T) {
	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	port := server.Listener.Addr().(*net.TCPAddr).Port

	// Start the listener only after a couple of probe intervals.
	go func() {
		time.Sleep(60 * time.Millisecond)
		server.Start()
	}()
	defer server.Close()

	ep := Endpoint{Host: "127.0.0.1", Port: port, MaxWait: 2 * time.Second}
	if !testProbe().Wait(context.Background(), "backend", ep) {
		t.Error("expected ready once the port was bound")
	}
}

func TestEndpoint_URL(t *testing.T) {
	ep := Endpoint{Host: "localhost", Port: 8080}
	if got := ep.URL(); got != "http://localhost:8080/" {
		t.Errorf("URL() = %q", got)
	}

	ep.HealthPath = "/health"
	if got := ep.URL(); got != "http://localhost:8080/health" {
		t.Errorf("URL() = %q", got)
	}
}
