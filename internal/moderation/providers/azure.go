package providers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/JaimeStill/agora/internal/moderation"
)

const (
	azureAPIVersion = "2023-10-01"
	azureScope      = "https://cognitiveservices.azure.com/.default"
	azureMaxRunes   = 10000
	azureMaxLevel   = 6.0
)

var azureCategories = []string{"Hate", "SelfHarm", "Sexual", "Violence"}

// Azure classifies text with Azure AI Content Safety.
type Azure struct {
	cfg        AzureConfig
	client     *http.Client
	credential azcore.TokenCredential
}

// NewAzure builds the adapter. credential is used only when cfg has no API
// key and may be nil otherwise.
func NewAzure(cfg AzureConfig, client *http.Client, credential azcore.TokenCredential) *Azure {
	return &Azure{cfg: cfg, client: client, credential: credential}
}

func (a *Azure) Name() string  { return "azure" }
func (a *Azure) Priority() int { return a.cfg.Priority }

func (a *Azure) Enabled() bool {
	if a.cfg.Endpoint == "" {
		return false
	}
	return a.cfg.APIKey != "" || (a.cfg.EntraID && a.credential != nil)
}

type azureResponse struct {
	CategoriesAnalysis []struct {
		Category string `json:"category"`
		Severity int    `json:"severity"`
	} `json:"categoriesAnalysis"`
}

func (a *Azure) Classify(ctx context.Context, text string) (moderation.Result, error) {
	header, err := a.authHeader(ctx)
	if err != nil {
		return moderation.Result{}, err
	}

	if runes := []rune(text); len(runes) > azureMaxRunes {
		text = string(runes[:azureMaxRunes])
	}
	body := map[string]any{
		"text":       text,
		"categories": azureCategories,
		"outputType": "FourSeverityLevels",
	}
	url := strings.TrimSuffix(a.cfg.Endpoint, "/") + "/contentsafety/text:analyze?api-version=" + azureAPIVersion

	var resp azureResponse
	if err := postJSON(ctx, a.client, a.Name(), url, header, body, &resp); err != nil {
		return moderation.Result{}, err
	}

	result := moderation.Result{
		IsSafe:            true,
		FlaggedCategories: []string{},
		Confidence:        make(map[string]float64, len(resp.CategoriesAnalysis)),
		Provider:          a.Name(),
	}
	for _, c := range resp.CategoriesAnalysis {
		category := strings.ToLower(c.Category)
		result.Confidence[category] = float64(c.Severity) / azureMaxLevel
		if c.Severity >= a.cfg.SeverityCutoff {
			result.FlaggedCategories = append(result.FlaggedCategories, category)
			result.IsSafe = false
		}
	}
	return result, nil
}

func (a *Azure) authHeader(ctx context.Context) (http.Header, error) {
	if a.cfg.APIKey != "" {
		return http.Header{"Ocp-Apim-Subscription-Key": {a.cfg.APIKey}}, nil
	}

	token, err := a.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{azureScope}})
	if err != nil {
		return nil, &moderation.ProviderError{
			Provider: a.Name(), Kind: moderation.KindUnauthorized, Message: "acquire entra id token", Err: err,
		}
	}
	return http.Header{"Authorization": {"Bearer " + token.Token}}, nil
}
