package domain

import "errors"

const (
	AnalyzeActionText    = "analyze"
	AnalyzeActionPhoto   = "photo"
	AnalyzeActionClarify = "clarify"
)

var (
	MessageSuccessAnalyze = "analysis completed"
	MessageFailedAnalyze  = "failed to analyze meal"

	ErrInvalidAction    = errors.New("invalid action, expected analyze, photo or clarify")
	ErrMissingImage     = errors.New("imageUrl is required for photo analysis")
	ErrMissingAnalyzeIn = errors.New("description is required")
)

type (
	TextAnalysis struct {
		EstimatedCarbs  float64  `json:"estimatedCarbs"`
		EstimatedSugar  float64  `json:"estimatedSugar"`
		Summary         string   `json:"summary"`
		CarbSource      string   `json:"carbSource,omitempty"`
		FoodItems       []string `json:"foodItems,omitempty"`
		Recommendations []string `json:"recommendations"`
		Error           string   `json:"error,omitempty"`
	}

	PhotoAnalysis struct {
		Foods          []string `json:"foods"`
		Description    string   `json:"description"`
		CarbSource     string   `json:"carbSource,omitempty"`
		EstimatedCarbs float64  `json:"estimatedCarbs"`
		Error          string   `json:"error,omitempty"`
	}

	Clarification struct {
		Questions []string `json:"questions"`
		Error     string   `json:"error,omitempty"`
	}

	AnalyzeRequest struct {
		Description string `json:"description" validate:"omitempty,max=2000"`
		ImageURL    string `json:"imageUrl"`
		Action      string `json:"action"`
	}

	AnalyzeResponse struct {
		Action    string      `json:"action"`
		Analysis  interface{} `json:"analysis,omitempty"`
		Questions []string    `json:"questions,omitempty"`
		Message   string      `json:"message,omitempty"`
		Error     string      `json:"error,omitempty"`
	}
)

// Usable reports whether a photo analysis recognised anything worth logging.
func (p PhotoAnalysis) Usable() bool {
	return len(p.Foods) > 0 && p.Error == ""
}
