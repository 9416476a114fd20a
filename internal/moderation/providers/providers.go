// Package providers adapts third-party text moderation APIs to
// moderation.Classifier.
package providers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/JaimeStill/agora/internal/moderation"
)

// New builds every configured classifier, each behind its own circuit
// breaker. Disabled providers are included; the chain filters them.
func New(
	cfg *Config,
	client *http.Client,
	credential azcore.TokenCredential,
	breaker moderation.BreakerConfig,
	logger *slog.Logger,
) []moderation.Classifier {
	logger = logger.With("system", "moderation-providers")

	all := []moderation.Classifier{
		NewHuggingFace(cfg.HuggingFace, client),
		NewOpenAI(cfg.OpenAI, client),
		NewGoogle(cfg.Google, client),
		NewAzure(cfg.Azure, client, credential),
	}

	out := make([]moderation.Classifier, len(all))
	for i, c := range all {
		logger.Info("moderation provider configured",
			"provider", c.Name(), "priority", c.Priority(), "enabled", c.Enabled())
		out[i] = moderation.WithBreaker(c, breaker, logger)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
