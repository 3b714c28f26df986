package primaryodds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samlafell/mlbcore/internal/collectors"
	"github.com/samlafell/mlbcore/pkg/contracts"
)

func TestCollector_CollectEmitsOneRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"games":[]}`))
	}))
	defer srv.Close()

	c := New(collectors.Config{
		BaseURL:                 srv.URL,
		Timeout:                 time.Second,
		RateLimitRPS:            100,
		Burst:                   10,
		RetryMaxAttempts:        2,
		RetryInitialBackoff:     time.Millisecond,
		CircuitBreakerThreshold: 5,
		CircuitBreakerCooldown:  time.Second,
	})

	window := contracts.Window{Since: time.Now().Add(-time.Hour), Until: time.Now()}
	records, errs := c.Collect(context.Background(), window)

	var got int
	for range records {
		got++
	}
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("got %d records, want 1", got)
	}
	if c.Name() != "primary_odds" {
		t.Errorf("Name() = %q, want primary_odds", c.Name())
	}
}

func TestCollector_CollectPropagatesFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(collectors.Config{
		BaseURL:                 srv.URL,
		Timeout:                 time.Second,
		RateLimitRPS:            100,
		Burst:                   10,
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		CircuitBreakerThreshold: 5,
		CircuitBreakerCooldown:  time.Second,
	})

	window := contracts.Window{Since: time.Now().Add(-time.Hour), Until: time.Now()}
	records, errs := c.Collect(context.Background(), window)

	var sawErr bool
	for range records {
		t.Error("did not expect any records on fetch failure")
	}
	for range errs {
		sawErr = true
	}
	if !sawErr {
		t.Error("expected an error on the error channel")
	}
}
