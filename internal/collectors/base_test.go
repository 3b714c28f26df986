package collectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

func TestBase_FetchJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	b := NewBase(Config{
		Name:                    "test_source",
		BaseURL:                 srv.URL,
		Timeout:                 time.Second,
		RateLimitRPS:            100,
		RateLimitRPH:            0,
		Burst:                   10,
		RetryMaxAttempts:        2,
		RetryInitialBackoff:     time.Millisecond,
		CircuitBreakerThreshold: 5,
		CircuitBreakerCooldown:  time.Second,
	})

	payload, err := b.FetchJSON(context.Background(), "/v1/test")
	if err != nil {
		t.Fatalf("FetchJSON returned error: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("payload[status] = %v, want ok", payload["status"])
	}

	snapshot, _ := b.HealthProbe(context.Background())
	if snapshot.LastOutcome != models.OutcomeOK {
		t.Errorf("LastOutcome = %v, want ok", snapshot.LastOutcome)
	}
	if snapshot.CircuitState != models.CircuitClosed {
		t.Errorf("CircuitState = %v, want closed", snapshot.CircuitState)
	}
}

func TestBase_FetchJSON_ServerErrorRetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewBase(Config{
		Name:                    "flaky_source",
		BaseURL:                 srv.URL,
		Timeout:                 time.Second,
		RateLimitRPS:            100,
		Burst:                   10,
		RetryMaxAttempts:        3,
		RetryInitialBackoff:     time.Millisecond,
		CircuitBreakerThreshold: 10,
		CircuitBreakerCooldown:  time.Second,
	})

	_, err := b.FetchJSON(context.Background(), "/v1/test")
	if err == nil {
		t.Fatal("expected error after exhausting retries against a 500 response")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 retry attempts", calls)
	}

	snapshot, _ := b.HealthProbe(context.Background())
	if snapshot.LastOutcome != models.OutcomeNetworkError {
		t.Errorf("LastOutcome = %v, want network_error", snapshot.LastOutcome)
	}
}

func TestBase_WrapRaw(t *testing.T) {
	b := NewBase(Config{Name: "test_source", BaseURL: "http://example.invalid", Burst: 1, RetryMaxAttempts: 1})
	raw := b.WrapRaw("ext-1", map[string]interface{}{"a": 1})
	if raw.Source != "test_source" {
		t.Errorf("Source = %q, want test_source", raw.Source)
	}
	if raw.ExternalID != "ext-1" {
		t.Errorf("ExternalID = %q, want ext-1", raw.ExternalID)
	}
	if raw.ParseStatus != models.ParseOK {
		t.Errorf("ParseStatus = %q, want ok", raw.ParseStatus)
	}
	if raw.BatchID == "" {
		t.Error("expected a non-empty BatchID")
	}
}
