package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/JaimeStill/agora/internal/moderation"
)

// Score thresholds per toxic-bert label. Only the checked labels can flag
// text; the remaining scores are reported as confidence.
var huggingFaceThresholds = map[string]float64{
	"toxic":         0.7,
	"severe_toxic":  0.5,
	"obscene":       0.7,
	"threat":        0.7,
	"insult":        0.7,
	"identity_hate": 0.7,
	"violence":      0.7,
	"sexual":        0.7,
}

var huggingFaceChecked = []string{"toxic", "threat", "severe_toxic", "insult", "obscene"}

// HuggingFace classifies text with a Hugging Face inference model.
type HuggingFace struct {
	cfg    HuggingFaceConfig
	client *http.Client
}

func NewHuggingFace(cfg HuggingFaceConfig, client *http.Client) *HuggingFace {
	return &HuggingFace{cfg: cfg, client: client}
}

func (h *HuggingFace) Name() string  { return "huggingface" }
func (h *HuggingFace) Priority() int { return h.cfg.Priority }
func (h *HuggingFace) Enabled() bool { return h.cfg.APIKey != "" }

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (h *HuggingFace) Classify(ctx context.Context, text string) (moderation.Result, error) {
	body := map[string]any{
		"inputs": text,
		"options": map[string]bool{
			"wait_for_model": true,
			"use_cache":      false,
		},
	}
	header := http.Header{"Authorization": {"Bearer " + h.cfg.APIKey}}
	url := strings.TrimSuffix(h.cfg.BaseURL, "/") + "/models/" + h.cfg.Model

	var raw json.RawMessage
	if err := postJSON(ctx, h.client, h.Name(), url, header, body, &raw); err != nil {
		return moderation.Result{}, err
	}

	scores, err := decodeLabelScores(raw)
	if err != nil {
		return moderation.Result{}, &moderation.ProviderError{
			Provider: h.Name(), Kind: moderation.KindUnknown, Message: "unexpected response shape", Err: err,
		}
	}

	result := moderation.Result{
		IsSafe:            true,
		FlaggedCategories: []string{},
		Confidence:        make(map[string]float64, len(scores)),
		Provider:          h.Name(),
	}
	for _, s := range scores {
		label := strings.ToLower(s.Label)
		result.Confidence[label] = s.Score

		if slices.Contains(huggingFaceChecked, label) &&
			s.Score >= huggingFaceThresholds[label] &&
			!slices.Contains(result.FlaggedCategories, label) {
			result.FlaggedCategories = append(result.FlaggedCategories, label)
			result.IsSafe = false
		}
	}
	return result, nil
}

// decodeLabelScores accepts both the nested [[...]] and flat [...] response
// shapes.
func decodeLabelScores(raw json.RawMessage) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}
