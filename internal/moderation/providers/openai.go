package providers

import (
	"context"
	"net/http"
	"strings"

	"github.com/JaimeStill/agora/internal/moderation"
)

var openAISensitive = []string{
	"hate", "hate/threatening",
	"self-harm",
	"sexual", "sexual/minors",
	"violence", "violence/graphic",
}

// OpenAI classifies text with the OpenAI moderation endpoint.
type OpenAI struct {
	cfg    OpenAIConfig
	client *http.Client
}

func NewOpenAI(cfg OpenAIConfig, client *http.Client) *OpenAI {
	return &OpenAI{cfg: cfg, client: client}
}

func (o *OpenAI) Name() string  { return "openai" }
func (o *OpenAI) Priority() int { return o.cfg.Priority }
func (o *OpenAI) Enabled() bool { return o.cfg.APIKey != "" }

type openAIResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

func (o *OpenAI) Classify(ctx context.Context, text string) (moderation.Result, error) {
	body := map[string]string{"input": text}
	if o.cfg.Model != "" {
		body["model"] = o.cfg.Model
	}
	header := http.Header{"Authorization": {"Bearer " + o.cfg.APIKey}}
	url := strings.TrimSuffix(o.cfg.BaseURL, "/") + "/v1/moderations"

	var resp openAIResponse
	if err := postJSON(ctx, o.client, o.Name(), url, header, body, &resp); err != nil {
		return moderation.Result{}, err
	}
	if len(resp.Results) == 0 {
		return moderation.Result{}, &moderation.ProviderError{
			Provider: o.Name(), Kind: moderation.KindUnknown, Message: "response contained no results",
		}
	}

	r := resp.Results[0]
	flagged := []string{}
	for _, c := range openAISensitive {
		if r.Categories[c] {
			flagged = append(flagged, c)
		}
	}

	confidence := r.CategoryScores
	if confidence == nil {
		confidence = map[string]float64{}
	}

	return moderation.Result{
		IsSafe:            !r.Flagged,
		FlaggedCategories: flagged,
		Confidence:        confidence,
		Provider:          o.Name(),
	}, nil
}
