package providers

import (
	"os"
	"strconv"
)

// Config holds credentials and endpoints for every text classifier. A
// provider is enabled when its credentials are present.
type Config struct {
	HuggingFace HuggingFaceConfig `toml:"huggingface"`
	OpenAI      OpenAIConfig      `toml:"openai"`
	Google      GoogleConfig      `toml:"google"`
	Azure       AzureConfig       `toml:"azure"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	HuggingFaceAPIKey   string
	HuggingFaceModel    string
	OpenAIAPIKey        string
	OpenAIModel         string
	GoogleAPIKey        string
	AzureEndpoint       string
	AzureAPIKey         string
	AzureEntraID        string
	AzureSeverityCutoff string
}

type HuggingFaceConfig struct {
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	Priority int    `toml:"priority"`
}

type OpenAIConfig struct {
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	Priority int    `toml:"priority"`
}

// GoogleConfig configures the Perspective comment analyzer.
type GoogleConfig struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Priority int    `toml:"priority"`
}

// AzureConfig configures Azure AI Content Safety. With EntraID set and no
// APIKey, requests authenticate through the default Azure credential chain.
type AzureConfig struct {
	Endpoint       string `toml:"endpoint"`
	APIKey         string `toml:"api_key"`
	EntraID        bool   `toml:"entra_id"`
	SeverityCutoff int    `toml:"severity_cutoff"`
	Priority       int    `toml:"priority"`
}

// Finalize applies defaults and environment overrides. Missing credentials
// are not an error; the provider is simply disabled.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(o *Config) {
	mergeString(&c.HuggingFace.APIKey, o.HuggingFace.APIKey)
	mergeString(&c.HuggingFace.Model, o.HuggingFace.Model)
	mergeString(&c.HuggingFace.BaseURL, o.HuggingFace.BaseURL)
	mergeInt(&c.HuggingFace.Priority, o.HuggingFace.Priority)

	mergeString(&c.OpenAI.APIKey, o.OpenAI.APIKey)
	mergeString(&c.OpenAI.Model, o.OpenAI.Model)
	mergeString(&c.OpenAI.BaseURL, o.OpenAI.BaseURL)
	mergeInt(&c.OpenAI.Priority, o.OpenAI.Priority)

	mergeString(&c.Google.APIKey, o.Google.APIKey)
	mergeString(&c.Google.BaseURL, o.Google.BaseURL)
	mergeInt(&c.Google.Priority, o.Google.Priority)

	mergeString(&c.Azure.Endpoint, o.Azure.Endpoint)
	mergeString(&c.Azure.APIKey, o.Azure.APIKey)
	mergeInt(&c.Azure.SeverityCutoff, o.Azure.SeverityCutoff)
	mergeInt(&c.Azure.Priority, o.Azure.Priority)
	if o.Azure.EntraID {
		c.Azure.EntraID = true
	}
}

func (c *Config) loadDefaults() {
	if c.HuggingFace.Model == "" {
		c.HuggingFace.Model = "unitary/toxic-bert"
	}
	if c.HuggingFace.BaseURL == "" {
		c.HuggingFace.BaseURL = "https://api-inference.huggingface.co"
	}
	if c.HuggingFace.Priority == 0 {
		c.HuggingFace.Priority = 1
	}

	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "omni-moderation-latest"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com"
	}
	if c.OpenAI.Priority == 0 {
		c.OpenAI.Priority = 2
	}

	if c.Google.BaseURL == "" {
		c.Google.BaseURL = "https://commentanalyzer.googleapis.com"
	}
	if c.Google.Priority == 0 {
		c.Google.Priority = 3
	}

	if c.Azure.SeverityCutoff == 0 {
		c.Azure.SeverityCutoff = 4
	}
	if c.Azure.Priority == 0 {
		c.Azure.Priority = 4
	}
}

func (c *Config) loadEnv(env *Env) {
	envString(env.HuggingFaceAPIKey, &c.HuggingFace.APIKey)
	envString(env.HuggingFaceModel, &c.HuggingFace.Model)
	envString(env.OpenAIAPIKey, &c.OpenAI.APIKey)
	envString(env.OpenAIModel, &c.OpenAI.Model)
	envString(env.GoogleAPIKey, &c.Google.APIKey)
	envString(env.AzureEndpoint, &c.Azure.Endpoint)
	envString(env.AzureAPIKey, &c.Azure.APIKey)

	if v := lookup(env.AzureEntraID); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Azure.EntraID = b
		}
	}
	if v := lookup(env.AzureSeverityCutoff); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Azure.SeverityCutoff = n
		}
	}
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

func envString(name string, dst *string) {
	if v := lookup(name); v != "" {
		*dst = v
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
