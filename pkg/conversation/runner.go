package conversation

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/internal/logging"
)

type (
	Analyzer interface {
		AnalyzeText(ctx context.Context, description string) domain.TextAnalysis
		AnalyzePhoto(ctx context.Context, imageRef string) domain.PhotoAnalysis
		Clarify(ctx context.Context, description string) domain.Clarification
	}

	Uploader interface {
		UploadPhoto(ctx context.Context, data []byte, contentType string) (string, error)
	}

	MealSaver interface {
		LogMeal(ctx context.Context, req domain.CreateMealRequest, userID *uuid.UUID) (domain.CreateMealResponse, error)
		UpdateMeal(ctx context.Context, id string, req domain.UpdateMealRequest, userID *uuid.UUID) (domain.MealResponse, error)
	}

	Runner struct {
		flow     *Flow
		analyzer Analyzer
		uploader Uploader
		meals    MealSaver
		logger   logging.Logger
	}
)

// NewRunner accepts a nil uploader; photos then stay as local previews.
func NewRunner(flow *Flow, analyzer Analyzer, uploader Uploader, meals MealSaver, logger logging.Logger) *Runner {
	return &Runner{
		flow:     flow,
		analyzer: analyzer,
		uploader: uploader,
		meals:    meals,
		logger:   logger.With("component", "conversation"),
	}
}

func (r *Runner) Flow() *Flow {
	return r.flow
}

// Dispatch applies e and then runs every effect it produces, feeding each
// result back in as the next event, until nothing is pending.
func (r *Runner) Dispatch(ctx context.Context, s Session, e Event) (Session, error) {
	next, queue, err := r.flow.Transition(s, e)
	if err != nil {
		return s, err
	}

	for len(queue) > 0 {
		eff := queue[0]
		queue = queue[1:]

		result := r.execute(ctx, next, eff)
		var more []Effect
		next, more, err = r.flow.Transition(next, result)
		if err != nil {
			r.logger.Error(ctx, "effect result rejected", "session_id", s.ID, "effect", string(eff.Kind()), "error", err)
			return s, err
		}
		queue = append(queue, more...)
	}
	return next, nil
}

func (r *Runner) execute(ctx context.Context, s Session, eff Effect) Event {
	switch e := eff.(type) {
	case UploadPhoto:
		if r.uploader == nil {
			return PhotoUploadFailed{Reason: domain.ErrStorageNotConfigured.Error()}
		}
		url, err := r.uploader.UploadPhoto(ctx, e.Data, e.ContentType)
		if err != nil {
			r.logger.Warn(ctx, "photo upload failed, keeping preview", "session_id", s.ID, "error", err)
			return PhotoUploadFailed{Reason: err.Error()}
		}
		return PhotoUploaded{URL: url}
	case AnalyzePhoto:
		return PhotoAnalyzed{Result: r.analyzer.AnalyzePhoto(ctx, e.ImageRef)}
	case Clarify:
		return Clarified{Result: r.analyzer.Clarify(ctx, e.Description)}
	case AnalyzeText:
		return TextAnalyzed{Result: r.analyzer.AnalyzeText(ctx, e.Description)}
	case SaveMeal:
		return r.save(ctx, s, e)
	}
	return SaveFailed{Reason: "unknown effect"}
}

func (r *Runner) save(ctx context.Context, s Session, e SaveMeal) Event {
	d := e.Draft
	carbs, sugar := d.EstimatedCarbs, d.EstimatedSugar
	mealType := string(d.MealType)
	// local previews are never persisted
	photo := d.PhotoURL
	keepPhoto := strings.HasPrefix(photo, "data:")
	if keepPhoto {
		photo = ""
	}

	if e.EditingMealID != "" {
		req := domain.UpdateMealRequest{
			Description:    &d.Description,
			MealType:       &mealType,
			CarbSource:     &d.CarbSource,
			EstimatedCarbs: &carbs,
			EstimatedSugar: &sugar,
			AISummary:      &d.AISummary,
		}
		if !keepPhoto {
			req.PhotoURL = &photo
		}
		meal, err := r.meals.UpdateMeal(ctx, e.EditingMealID, req, s.UserID)
		if err != nil {
			r.logger.Error(ctx, "failed to update meal from conversation", "session_id", s.ID, "error", err)
			return SaveFailed{Reason: err.Error()}
		}
		return MealSaved{Meal: meal}
	}

	res, err := r.meals.LogMeal(ctx, domain.CreateMealRequest{
		Description:    d.Description,
		MealType:       mealType,
		PhotoURL:       photo,
		CarbSource:     d.CarbSource,
		EstimatedCarbs: &carbs,
		EstimatedSugar: &sugar,
		AISummary:      d.AISummary,
	}, s.UserID)
	if err != nil {
		r.logger.Error(ctx, "failed to log meal from conversation", "session_id", s.ID, "error", err)
		return SaveFailed{Reason: err.Error()}
	}
	return MealSaved{Meal: res.Meal}
}
