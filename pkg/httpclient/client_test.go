package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/agora/pkg/httpclient"
)

func TestNoRetriesByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := httpclient.New(time.Second)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := httpclient.New(5*time.Second,
		httpclient.WithMaxRetries(2),
		httpclient.WithRetryWait(time.Millisecond, 5*time.Millisecond),
	)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || calls.Load() != 3 {
		t.Errorf("status = %d, calls = %d", resp.StatusCode, calls.Load())
	}
}

func TestRateLimitNotRetried(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests}
	retry, err := httpclient.RetryPolicy(context.Background(), resp, nil)
	if retry || err != nil {
		t.Errorf("retry = %v, err = %v", retry, err)
	}

	resp = &http.Response{StatusCode: http.StatusServiceUnavailable}
	retry, _ = httpclient.RetryPolicy(context.Background(), resp, nil)
	if !retry {
		t.Error("503 should be retryable")
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := httpclient.New(50 * time.Millisecond)
	if _, err := client.Get(srv.URL); err == nil {
		t.Error("expected timeout error")
	}
}
