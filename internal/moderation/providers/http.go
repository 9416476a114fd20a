package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JaimeStill/agora/internal/moderation"
)

const maxResponseBytes = 1 << 20

// postJSON sends body to url and decodes a 2xx response into out. Every
// failure is returned as a *moderation.ProviderError.
func postJSON(ctx context.Context, client *http.Client, provider, url string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &moderation.ProviderError{Provider: provider, Kind: moderation.KindUnknown, Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &moderation.ProviderError{Provider: provider, Kind: moderation.KindUnknown, Message: "build request", Err: err}
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &moderation.ProviderError{Provider: provider, Kind: moderation.KindUnavailable, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &moderation.ProviderError{Provider: provider, Kind: moderation.KindUnavailable, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &moderation.ProviderError{
			Provider: provider,
			Kind:     moderation.KindFromStatus(resp.StatusCode),
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, errorMessage(data)),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &moderation.ProviderError{Provider: provider, Kind: moderation.KindUnknown, Message: "decode response", Err: err}
	}
	return nil
}

// errorMessage extracts a readable message from the error bodies the
// supported APIs return.
func errorMessage(body []byte) string {
	var withString struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &withString) == nil && withString.Error != "" {
		return withString.Error
	}

	var withObject struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &withObject) == nil && withObject.Error.Message != "" {
		return withObject.Error.Message
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		return "empty response"
	}
	return text
}
