package conversation

import (
	"fmt"
	"strings"
	"time"

	"glucolog/domain"
	"glucolog/pkg/analysis"
)

type Event interface {
	eventName() string
}

type (
	PhotoSelected struct {
		PreviewRef  string
		Data        []byte
		ContentType string
	}
	PhotoUploaded     struct{ URL string }
	PhotoUploadFailed struct{ Reason string }
	PhotoAnalyzed     struct{ Result domain.PhotoAnalysis }

	ChooseText           struct{}
	DescriptionSubmitted struct{ Text string }
	Clarified            struct{ Result domain.Clarification }
	TextAnalyzed         struct{ Result domain.TextAnalysis }

	PortionAnswered struct{ Text string }
	PortionSkipped  struct{}

	MealTypeChosen   struct{ MealType domain.MealType }
	MealTypeInferred struct{ At time.Time }

	Confirmed  struct{ At time.Time }
	MealSaved  struct{ Meal domain.MealResponse }
	SaveFailed struct{ Reason string }
	Cancelled  struct{}
)

func (PhotoSelected) eventName() string        { return "photo-selected" }
func (PhotoUploaded) eventName() string        { return "photo-uploaded" }
func (PhotoUploadFailed) eventName() string    { return "photo-upload-failed" }
func (PhotoAnalyzed) eventName() string        { return "photo-analyzed" }
func (ChooseText) eventName() string           { return "choose-text" }
func (DescriptionSubmitted) eventName() string { return "description-submitted" }
func (Clarified) eventName() string            { return "clarified" }
func (TextAnalyzed) eventName() string         { return "text-analyzed" }
func (PortionAnswered) eventName() string      { return "portion-answered" }
func (PortionSkipped) eventName() string       { return "portion-skipped" }
func (MealTypeChosen) eventName() string       { return "meal-type-chosen" }
func (MealTypeInferred) eventName() string     { return "meal-type-inferred" }
func (Confirmed) eventName() string            { return "confirmed" }
func (MealSaved) eventName() string            { return "meal-saved" }
func (SaveFailed) eventName() string           { return "save-failed" }
func (Cancelled) eventName() string            { return "cancelled" }

type EffectKind string

const (
	EffectUploadPhoto  EffectKind = "upload-photo"
	EffectAnalyzePhoto EffectKind = "analyze-photo"
	EffectClarify      EffectKind = "clarify"
	EffectAnalyzeText  EffectKind = "analyze-text"
	EffectSaveMeal     EffectKind = "save-meal"
)

type Effect interface {
	Kind() EffectKind
}

type (
	UploadPhoto struct {
		PreviewRef  string
		Data        []byte
		ContentType string
	}
	AnalyzePhoto struct{ ImageRef string }
	Clarify      struct{ Description string }
	AnalyzeText  struct{ Description string }
	SaveMeal     struct {
		Draft         Draft
		EditingMealID string
	}
)

func (UploadPhoto) Kind() EffectKind  { return EffectUploadPhoto }
func (AnalyzePhoto) Kind() EffectKind { return EffectAnalyzePhoto }
func (Clarify) Kind() EffectKind      { return EffectClarify }
func (AnalyzeText) Kind() EffectKind  { return EffectAnalyzeText }
func (SaveMeal) Kind() EffectKind     { return EffectSaveMeal }

// answers maps result events to the effect they complete.
func answers(e Event) (EffectKind, bool) {
	switch e.(type) {
	case PhotoUploaded, PhotoUploadFailed:
		return EffectUploadPhoto, true
	case PhotoAnalyzed:
		return EffectAnalyzePhoto, true
	case Clarified:
		return EffectClarify, true
	case TextAnalyzed:
		return EffectAnalyzeText, true
	case MealSaved, SaveFailed:
		return EffectSaveMeal, true
	}
	return "", false
}

// ParseEvent turns an API request into a user event.
func ParseEvent(req domain.ConversationEventRequest, now time.Time) (Event, error) {
	switch req.Type {
	case domain.EventPhoto:
		contentType, data, err := analysis.DecodeDataURL(req.ImageData)
		if err != nil || len(data) == 0 {
			return nil, domain.ErrInvalidImage
		}
		return PhotoSelected{PreviewRef: req.ImageData, Data: data, ContentType: contentType}, nil
	case domain.EventTextInstead:
		return ChooseText{}, nil
	case domain.EventDescribe:
		return DescriptionSubmitted{Text: req.Text}, nil
	case domain.EventPortion:
		return PortionAnswered{Text: req.Text}, nil
	case domain.EventSkipPortion:
		return PortionSkipped{}, nil
	case domain.EventMealType:
		if strings.TrimSpace(req.MealType) == "" {
			return MealTypeInferred{At: now}, nil
		}
		mt, ok := domain.ParseMealType(req.MealType)
		if !ok {
			return nil, domain.ErrInvalidMealType
		}
		return MealTypeChosen{MealType: mt}, nil
	case domain.EventConfirm:
		return Confirmed{At: now}, nil
	case domain.EventCancel:
		return Cancelled{}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, req.Type)
}
