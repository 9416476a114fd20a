package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/agora/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusCreated, map[string]int{"status": 2})

	if rec.Code != http.StatusCreated {
		t.Errorf("code = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var body map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != 2 {
		t.Errorf("status = %d, want 2", body["status"])
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	handlers.RespondError(rec, logger, http.StatusForbidden, errors.New("permission denied"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d, want 403", rec.Code)
	}

	var body handlers.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "permission denied" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Content string `json:"content"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"content":"hello"}`))
		got, err := handlers.DecodeJSON[payload](req)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Content != "hello" {
			t.Errorf("content = %q", got.Content)
		}
	})

	t.Run("empty", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		if _, err := handlers.DecodeJSON[payload](req); !errors.Is(err, handlers.ErrEmptyBody) {
			t.Errorf("err = %v, want ErrEmptyBody", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"content":`))
		if _, err := handlers.DecodeJSON[payload](req); err == nil {
			t.Error("expected error")
		}
	})
}
