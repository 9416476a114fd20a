package config

import (
	"fmt"

	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/internal/moderation/providers"
)

var moderationEnv = &moderation.Env{
	CacheBackend:    "AGORA_MODERATION_CACHE_BACKEND",
	CacheCapacity:   "AGORA_MODERATION_CACHE_CAPACITY",
	Timeout:         "AGORA_MODERATION_TIMEOUT",
	MaxRetries:      "AGORA_MODERATION_MAX_RETRIES",
	BreakerFailures: "AGORA_MODERATION_BREAKER_FAILURES",
	BreakerCooldown: "AGORA_MODERATION_BREAKER_COOLDOWN",
}

var providersEnv = &providers.Env{
	HuggingFaceAPIKey:   "AGORA_HUGGINGFACE_API_KEY",
	HuggingFaceModel:    "AGORA_HUGGINGFACE_MODEL",
	OpenAIAPIKey:        "AGORA_OPENAI_API_KEY",
	OpenAIModel:         "AGORA_OPENAI_MODEL",
	GoogleAPIKey:        "AGORA_GOOGLE_API_KEY",
	AzureEndpoint:       "AGORA_AZURE_CONTENT_SAFETY_ENDPOINT",
	AzureAPIKey:         "AGORA_AZURE_CONTENT_SAFETY_KEY",
	AzureEntraID:        "AGORA_AZURE_CONTENT_SAFETY_ENTRA_ID",
	AzureSeverityCutoff: "AGORA_AZURE_CONTENT_SAFETY_SEVERITY_CUTOFF",
}

// ModerationConfig holds the pipeline settings and the per-provider
// subsections ([moderation.providers.openai] and so on).
type ModerationConfig struct {
	moderation.Config
	Providers providers.Config `toml:"providers"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the pipeline and every provider.
func (c *ModerationConfig) Finalize() error {
	if err := c.Config.Finalize(moderationEnv); err != nil {
		return err
	}
	if err := c.Providers.Finalize(providersEnv); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ModerationConfig) Merge(overlay *ModerationConfig) {
	c.Config.Merge(&overlay.Config)
	c.Providers.Merge(&overlay.Providers)
}
