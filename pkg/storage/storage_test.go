package storage_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/JaimeStill/agora/pkg/storage"
)

func TestKeyFromURL(t *testing.T) {
	base := "https://acct.blob.core.windows.net/post-images/"

	tests := []struct {
		url  string
		key  string
		want bool
	}{
		{base + "posts/a.png", "posts/a.png", true},
		{"https://cdn.example.com/a.png", "", false},
		{base, "", false},
		{base + "../secret", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			key, ok := storage.KeyFromURL(base, tt.url)
			if ok != tt.want || key != tt.key {
				t.Errorf("KeyFromURL = (%q, %v), want (%q, %v)", key, ok, tt.key, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	disabled := storage.Config{}
	if err := disabled.Finalize(nil); err != nil {
		t.Fatalf("disabled config: %v", err)
	}
	if disabled.Enabled() || disabled.ContainerName != "post-images" {
		t.Errorf("disabled = %+v", disabled)
	}

	missing := storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
	if err := missing.Finalize(nil); err == nil {
		t.Error("expected error without public_url")
	}

	t.Setenv("TEST_STORAGE_URL", "http://127.0.0.1:10000/devstoreaccount1/post-images")
	ok := storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
	if err := ok.Finalize(&storage.Env{PublicURL: "TEST_STORAGE_URL"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{storage.ErrUnsupported, http.StatusBadRequest},
		{storage.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{storage.ErrDisabled, http.StatusServiceUnavailable},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
