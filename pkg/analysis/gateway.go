package analysis

import (
	"context"
	"fmt"
	"time"

	"glucolog/domain"
	"glucolog/internal/logging"
)

const (
	FallbackCarbs = 30.0
	FallbackSugar = 5.0

	DefaultTimeout = 20 * time.Second

	quotaAdvisory   = "AI analysis temporarily unavailable due to quota limits. Using standard estimates."
	genericAdvisory = "AI analysis temporarily unavailable. Using standard estimates."

	defaultQuestion      = "Could you tell me more about the portion sizes?"
	quotaDefaultQuestion = "AI temporarily unavailable. Could you tell me more about the portion sizes?"
	clarifyAdvisory      = "AI temporarily unavailable."

	maxQuestions = 2
)

var defaultRecommendations = []string{
	"Consider taking a gentle walk after this meal",
	"Monitor your blood glucose levels in the next 2 hours",
}

// Gateway never fails: every Client error is turned into a usable result
// carrying an advisory message.
type Gateway struct {
	client  Client
	timeout time.Duration
	logger  logging.Logger
}

func NewGateway(client Client, timeout time.Duration, logger logging.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{client: client, timeout: timeout, logger: logger.With("component", "analysis")}
}

func (g *Gateway) AnalyzeText(ctx context.Context, description string) domain.TextAnalysis {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.client.AnalyzeText(ctx, description)
	if err != nil {
		g.logger.Warn(ctx, "text analysis failed, using standard estimate", "kind", KindOf(err), "error", err)
		return FallbackTextAnalysis(description, err)
	}
	if res.Summary == "" {
		res.Summary = fmt.Sprintf("Meal logged: %s", description)
	}
	if res.CarbSource == "" {
		res.CarbSource = ExtractCarbSource(description)
	}
	if res.Recommendations == nil {
		res.Recommendations = []string{}
	}
	return res
}

func (g *Gateway) AnalyzePhoto(ctx context.Context, imageRef string) domain.PhotoAnalysis {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.client.AnalyzePhoto(ctx, imageRef)
	if err != nil {
		g.logger.Warn(ctx, "photo analysis failed", "kind", KindOf(err), "error", err)
		return FallbackPhotoAnalysis(err)
	}
	if res.Foods == nil {
		res.Foods = []string{}
	}
	if res.CarbSource == "" {
		res.CarbSource = ExtractCarbSource(res.Description)
	}
	return res
}

func (g *Gateway) Clarify(ctx context.Context, description string) domain.Clarification {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	questions, err := g.client.Clarify(ctx, description)
	if err != nil {
		g.logger.Warn(ctx, "clarifying questions failed, using default question", "kind", KindOf(err), "error", err)
		return FallbackClarification(err)
	}
	if len(questions) == 0 {
		return domain.Clarification{Questions: []string{defaultQuestion}}
	}
	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	return domain.Clarification{Questions: questions}
}

func FallbackTextAnalysis(description string, cause error) domain.TextAnalysis {
	advisory := genericAdvisory
	if KindOf(cause) == KindQuota {
		advisory = quotaAdvisory
	}
	return domain.TextAnalysis{
		EstimatedCarbs:  FallbackCarbs,
		EstimatedSugar:  FallbackSugar,
		Summary:         fmt.Sprintf("Meal logged: %s", description),
		CarbSource:      ExtractCarbSource(description),
		Recommendations: append([]string(nil), defaultRecommendations...),
		Error:           advisory,
	}
}

func FallbackPhotoAnalysis(cause error) domain.PhotoAnalysis {
	advisory := genericAdvisory
	if KindOf(cause) == KindQuota {
		advisory = quotaAdvisory
	}
	return domain.PhotoAnalysis{
		Foods:          []string{},
		EstimatedCarbs: FallbackCarbs,
		Error:          advisory,
	}
}

func FallbackClarification(cause error) domain.Clarification {
	if KindOf(cause) == KindQuota {
		return domain.Clarification{Questions: []string{quotaDefaultQuestion}, Error: clarifyAdvisory}
	}
	return domain.Clarification{Questions: []string{defaultQuestion}, Error: clarifyAdvisory}
}
