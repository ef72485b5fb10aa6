// Package analysis estimates carbohydrates for meal descriptions and photos
// through a language model, with a fixed fallback when the model cannot help.
package analysis

import (
	"context"

	"glucolog/domain"
)

// Client talks to the model. Failures are reported as *Error.
type Client interface {
	AnalyzeText(ctx context.Context, description string) (domain.TextAnalysis, error)
	AnalyzePhoto(ctx context.Context, imageRef string) (domain.PhotoAnalysis, error)
	Clarify(ctx context.Context, description string) ([]string, error)
}
