package fplfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fplstats/fpl-stats/internal/platform/logging"
	"github.com/fplstats/fpl-stats/internal/platform/resilience"
	"github.com/fplstats/fpl-stats/internal/usecase"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
}

func TestFetchBootstrap_ReturnsRawBody(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/bootstrap-static/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"events":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	raw, err := client.FetchBootstrap(context.Background())
	if err != nil {
		t.Fatalf("fetch bootstrap: %v", err)
	}
	if string(raw) != `{"events":[]}` {
		t.Fatalf("unexpected body: %s", raw)
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("expected exactly 1 upstream request, got %d", got)
	}
}

func TestFetchBootstrap_NonSuccessStatusDoesNotRetry(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchBootstrap(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency-unavailable, got %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("a failed fetch must not be retried, got %d requests", got)
	}
}

func TestFetchBootstrap_OpenBreakerShedsRequests(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Logger:  logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      resilience.DefaultCircuitBreakerConfig().OpenTimeout,
			HalfOpenLimit:    1,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchBootstrap(context.Background()); err == nil {
			t.Fatalf("request %d: expected error", i)
		}
	}

	_, err := client.FetchBootstrap(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency-unavailable from open breaker, got %v", err)
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("open breaker must not reach upstream, got %d requests", got)
	}
}
