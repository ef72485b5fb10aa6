package meal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/entities"
	"glucolog/internal/logging"
)

type (
	TextAnalyzer interface {
		AnalyzeText(ctx context.Context, description string) domain.TextAnalysis
	}

	PhotoRemover interface {
		DeleteByURL(ctx context.Context, url string) error
	}

	MealService interface {
		LogMeal(ctx context.Context, req domain.CreateMealRequest, userID *uuid.UUID) (domain.CreateMealResponse, error)
		GetMeals(ctx context.Context, userID *uuid.UUID, page, limit int, date string) (domain.ListMealsResponse, error)
		GetMealByID(ctx context.Context, id string, userID *uuid.UUID) (domain.MealResponse, error)
		UpdateMeal(ctx context.Context, id string, req domain.UpdateMealRequest, userID *uuid.UUID) (domain.MealResponse, error)
		DeleteMeal(ctx context.Context, id string, userID *uuid.UUID) error
		CountMeals(ctx context.Context, userID uuid.UUID) (int64, error)
		Backend() string
	}

	mealService struct {
		store    Store
		analyzer TextAnalyzer
		photos   PhotoRemover
		location *time.Location
		logger   logging.Logger
	}
)

// NewMealService accepts a nil photos when object storage is not configured.
func NewMealService(store Store, analyzer TextAnalyzer, photos PhotoRemover, location *time.Location, logger logging.Logger) MealService {
	if location == nil {
		location = time.UTC
	}
	return &mealService{
		store:    store,
		analyzer: analyzer,
		photos:   photos,
		location: location,
		logger:   logger.With("component", "meal"),
	}
}

func (s *mealService) LogMeal(ctx context.Context, req domain.CreateMealRequest, userID *uuid.UUID) (domain.CreateMealResponse, error) {
	mealType, ok := domain.ParseMealType(req.MealType)
	if !ok {
		return domain.CreateMealResponse{}, domain.ErrInvalidMealType
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.CreateMealResponse{}, domain.ErrMissingDescription
	}

	record := &entities.Meal{
		UserID:      userID,
		MealType:    string(mealType),
		Description: description,
		PhotoURL:    req.PhotoURL,
		CarbSource:  strings.TrimSpace(req.CarbSource),
	}

	var res domain.CreateMealResponse
	if req.EstimatedCarbs != nil {
		// estimate already confirmed by the caller
		record.EstimatedCarbs = *req.EstimatedCarbs
		if req.EstimatedSugar != nil {
			record.EstimatedSugar = *req.EstimatedSugar
		}
		record.AISummary = req.AISummary
	} else {
		analysis := s.analyzer.AnalyzeText(ctx, description)
		record.EstimatedCarbs = analysis.EstimatedCarbs
		record.EstimatedSugar = analysis.EstimatedSugar
		record.AISummary = analysis.Summary
		if record.CarbSource == "" {
			record.CarbSource = analysis.CarbSource
		}
		res.Recommendations = analysis.Recommendations
		res.Error = analysis.Error
	}
	if res.Recommendations == nil {
		res.Recommendations = []string{}
	}

	created, err := s.store.Create(ctx, record)
	if err != nil {
		return domain.CreateMealResponse{}, err
	}
	s.logger.Info(ctx, "meal logged", "meal_id", created.ID.String(), "carbs", created.EstimatedCarbs, "backend", s.Backend())

	res.Meal = toResponse(created)
	return res, nil
}

func (s *mealService) GetMeals(ctx context.Context, userID *uuid.UUID, page, limit int, date string) (domain.ListMealsResponse, error) {
	page, limit = domain.NormalizePage(page, limit)
	q := ListQuery{UserID: userID, Page: page, Limit: limit}

	if date != "" {
		from, to, err := DayRange(date, s.location)
		if err != nil {
			return domain.ListMealsResponse{}, err
		}
		q.From, q.To = &from, &to
	}

	meals, total, err := s.store.List(ctx, q)
	if err != nil {
		return domain.ListMealsResponse{}, err
	}

	res := domain.ListMealsResponse{
		Meals:      make([]domain.MealResponse, 0, len(meals)),
		Pagination: domain.NewPagination(page, limit, total),
		Backend:    s.Backend(),
	}
	for _, m := range meals {
		res.Meals = append(res.Meals, toResponse(m))
	}
	return res, nil
}

func (s *mealService) GetMealByID(ctx context.Context, id string, userID *uuid.UUID) (domain.MealResponse, error) {
	m, err := s.owned(ctx, id, userID)
	if err != nil {
		return domain.MealResponse{}, err
	}
	return toResponse(m), nil
}

func (s *mealService) UpdateMeal(ctx context.Context, id string, req domain.UpdateMealRequest, userID *uuid.UUID) (domain.MealResponse, error) {
	existing, err := s.owned(ctx, id, userID)
	if err != nil {
		return domain.MealResponse{}, err
	}

	p := Patch{
		MealType:       req.MealType,
		EstimatedCarbs: req.EstimatedCarbs,
		EstimatedSugar: req.EstimatedSugar,
		AISummary:      req.AISummary,
		CarbSource:     req.CarbSource,
		PhotoURL:       req.PhotoURL,
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		p.Description = &description

		if description != existing.Description && req.EstimatedCarbs == nil {
			analysis := s.analyzer.AnalyzeText(ctx, description)
			p.EstimatedCarbs = &analysis.EstimatedCarbs
			p.EstimatedSugar = &analysis.EstimatedSugar
			p.AISummary = &analysis.Summary
			if p.CarbSource == nil && analysis.CarbSource != "" {
				p.CarbSource = &analysis.CarbSource
			}
		}
	}

	updated, err := s.store.Update(ctx, existing.ID, p)
	if err != nil {
		return domain.MealResponse{}, err
	}

	if req.PhotoURL != nil && existing.PhotoURL != "" && existing.PhotoURL != *req.PhotoURL {
		s.removePhoto(ctx, existing.PhotoURL)
	}
	return toResponse(updated), nil
}

func (s *mealService) DeleteMeal(ctx context.Context, id string, userID *uuid.UUID) error {
	existing, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, existing.ID); err != nil {
		return err
	}
	if existing.PhotoURL != "" {
		s.removePhoto(ctx, existing.PhotoURL)
	}
	return nil
}

func (s *mealService) CountMeals(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.CountByUser(ctx, userID)
}

func (s *mealService) Backend() string {
	if b, ok := s.store.(interface{ Backend() string }); ok {
		return b.Backend()
	}
	return domain.BackendMemory
}

// owned hides meals of other owners behind not-found.
func (s *mealService) owned(ctx context.Context, id string, userID *uuid.UUID) (*entities.Meal, error) {
	mealID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrMealNotFound
	}
	m, err := s.store.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if !sameOwner(m.UserID, userID) {
		return nil, domain.ErrMealNotFound
	}
	return m, nil
}

func (s *mealService) removePhoto(ctx context.Context, url string) {
	if s.photos == nil {
		return
	}
	if err := s.photos.DeleteByURL(ctx, url); err != nil {
		s.logger.Warn(ctx, "failed to remove meal photo", "url", url, "error", err)
	}
}

// DayRange converts a YYYY-MM-DD calendar day in loc to [midnight, next midnight).
func DayRange(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
	}
	return day, day.AddDate(0, 0, 1), nil
}

func toResponse(m *entities.Meal) domain.MealResponse {
	res := domain.MealResponse{
		ID:             m.ID.String(),
		MealType:       domain.MealType(m.MealType),
		Description:    m.Description,
		EstimatedCarbs: m.EstimatedCarbs,
		EstimatedSugar: m.EstimatedSugar,
		AISummary:      m.AISummary,
		PhotoURL:       m.PhotoURL,
		CarbSource:     m.CarbSource,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.UserID != nil {
		res.UserID = m.UserID.String()
	}
	return res
}
