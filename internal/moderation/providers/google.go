package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/agora/internal/moderation"
)

var perspectiveThresholds = map[string]float64{
	"TOXICITY":        0.7,
	"SEVERE_TOXICITY": 0.5,
	"INSULT":          0.7,
	"THREAT":          0.7,
	"PROFANITY":       0.7,
	"IDENTITY_ATTACK": 0.7,
}

// Google classifies text with the Perspective comment analyzer.
type Google struct {
	cfg    GoogleConfig
	client *http.Client
}

func NewGoogle(cfg GoogleConfig, client *http.Client) *Google {
	return &Google{cfg: cfg, client: client}
}

func (g *Google) Name() string  { return "google" }
func (g *Google) Priority() int { return g.cfg.Priority }
func (g *Google) Enabled() bool { return g.cfg.APIKey != "" }

type perspectiveResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

func (g *Google) Classify(ctx context.Context, text string) (moderation.Result, error) {
	attrs := make(map[string]struct{}, len(perspectiveThresholds))
	for name := range perspectiveThresholds {
		attrs[name] = struct{}{}
	}
	body := map[string]any{
		"comment":             map[string]string{"text": text},
		"requestedAttributes": attrs,
		"doNotStore":          true,
	}
	endpoint := strings.TrimSuffix(g.cfg.BaseURL, "/") +
		"/v1alpha1/comments:analyze?key=" + url.QueryEscape(g.cfg.APIKey)

	var resp perspectiveResponse
	if err := postJSON(ctx, g.client, g.Name(), endpoint, nil, body, &resp); err != nil {
		return moderation.Result{}, err
	}

	result := moderation.Result{
		IsSafe:            true,
		FlaggedCategories: []string{},
		Confidence:        make(map[string]float64, len(resp.AttributeScores)),
		Provider:          g.Name(),
	}
	for _, name := range sortedKeys(perspectiveThresholds) {
		score, ok := resp.AttributeScores[name]
		if !ok {
			continue
		}
		category := strings.ToLower(name)
		result.Confidence[category] = score.SummaryScore.Value
		if score.SummaryScore.Value >= perspectiveThresholds[name] {
			result.FlaggedCategories = append(result.FlaggedCategories, category)
			result.IsSafe = false
		}
	}
	return result, nil
}
