// Package moderation classifies post text through an ordered chain of
// providers and turns the outcome into a publication decision.
package moderation

import "context"

// Result is a normalized classification of one piece of text.
type Result struct {
	IsSafe            bool               `json:"isSafe"`
	FlaggedCategories []string           `json:"flaggedCategories"`
	Confidence        map[string]float64 `json:"confidence"`
	Provider          string             `json:"provider"`
}

// Classifier is a text-classification backend.
//
// Classify fails only when no classification could be obtained. A verdict
// that the text is unsafe is a successful result, not an error.
type Classifier interface {
	Name() string
	// Priority orders classifiers; lower values are tried first.
	Priority() int
	// Enabled reports whether the classifier has the credentials it needs.
	Enabled() bool
	Classify(ctx context.Context, text string) (Result, error)
}

// ImageAnalysis is the verdict recorded for one post image.
type ImageAnalysis struct {
	URL      string `json:"url"`
	IsSafe   bool   `json:"isSafe"`
	Provider string `json:"provider"`
}

// AnalyzeImages reports every image as safe. No image classifier is wired.
func AnalyzeImages(_ context.Context, urls []string) []ImageAnalysis {
	out := make([]ImageAnalysis, len(urls))
	for i, u := range urls {
		out[i] = ImageAnalysis{URL: u, IsSafe: true, Provider: "none"}
	}
	return out
}

func imagesSafe(images []ImageAnalysis) bool {
	for _, img := range images {
		if !img.IsSafe {
			return false
		}
	}
	return true
}
