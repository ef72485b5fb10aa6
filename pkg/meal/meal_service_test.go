package meal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucolog/domain"
	"glucolog/internal/logging"
	"glucolog/pkg/storage"
)

type stubAnalyzer struct {
	result domain.TextAnalysis
	calls  []string
}

func (s *stubAnalyzer) AnalyzeText(_ context.Context, description string) domain.TextAnalysis {
	s.calls = append(s.calls, description)
	return s.result
}

type recordingRemover struct {
	removed []string
	err     error
}

func (r *recordingRemover) DeleteByURL(_ context.Context, url string) error {
	r.removed = append(r.removed, url)
	return r.err
}

func fallbackAnalysis(description string) domain.TextAnalysis {
	return domain.TextAnalysis{
		EstimatedCarbs:  30,
		EstimatedSugar:  5,
		Summary:         "Meal logged: " + description,
		CarbSource:      "rice",
		Recommendations: []string{"Consider taking a gentle walk after this meal"},
		Error:           "AI analysis temporarily unavailable. Using standard estimates.",
	}
}

func newTestService(analyzer TextAnalyzer, remover PhotoRemover) (MealService, *InMemoryStore) {
	mem := NewInMemoryStore()
	store := NewFallbackStore(nil, mem, storage.NewLatch())
	return NewMealService(store, analyzer, remover, time.UTC, logging.NewNopLogger()), mem
}

func TestMealService_LogMealWithFallbackAnalysis(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{result: fallbackAnalysis("rice and beans")}
	svc, _ := newTestService(analyzer, nil)
	ctx := context.Background()

	res, err := svc.LogMeal(ctx, domain.CreateMealRequest{Description: "rice and beans", MealType: "LUNCH"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 30.0, res.Meal.EstimatedCarbs)
	assert.Equal(t, "rice", res.Meal.CarbSource)
	assert.Equal(t, domain.MealTypeLunch, res.Meal.MealType)
	assert.NotEmpty(t, res.Error)
	assert.NotEmpty(t, res.Recommendations)

	list, err := svc.GetMeals(ctx, nil, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, list.Meals, 1)
	assert.Equal(t, res.Meal.ID, list.Meals[0].ID)
	assert.Equal(t, domain.BackendMemory, list.Backend)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 20, Total: 1, Pages: 1}, list.Pagination)
}

func TestMealService_LogMealWithConfirmedEstimateSkipsAnalysis(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{}
	svc, _ := newTestService(analyzer, nil)
	carbs, sugar := 55.0, 8.0

	res, err := svc.LogMeal(context.Background(), domain.CreateMealRequest{
		Description:    "chicken burrito",
		MealType:       "dinner",
		EstimatedCarbs: &carbs,
		EstimatedSugar: &sugar,
		AISummary:      "Burrito with rice",
		CarbSource:     "tortilla",
	}, nil)
	require.NoError(t, err)

	assert.Empty(t, analyzer.calls)
	assert.Equal(t, 55.0, res.Meal.EstimatedCarbs)
	assert.Equal(t, "tortilla", res.Meal.CarbSource)
	assert.Equal(t, []string{}, res.Recommendations)
}

func TestMealService_LogMealRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(&stubAnalyzer{}, nil)
	ctx := context.Background()

	_, err := svc.LogMeal(ctx, domain.CreateMealRequest{Description: "x", MealType: "tea"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidMealType)

	_, err = svc.LogMeal(ctx, domain.CreateMealRequest{Description: "  ", MealType: "LUNCH"}, nil)
	assert.ErrorIs(t, err, domain.ErrMissingDescription)
}

func TestMealService_PaginationClamps(t *testing.T) {
	t.Parallel()

	carbs := 10.0
	svc, _ := newTestService(&stubAnalyzer{}, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.LogMeal(ctx, domain.CreateMealRequest{Description: "apple", MealType: "SNACK", EstimatedCarbs: &carbs}, nil)
		require.NoError(t, err)
	}

	list, err := svc.GetMeals(ctx, nil, 0, 500, "")
	require.NoError(t, err)
	assert.Equal(t, 1, list.Pagination.Page)
	assert.Equal(t, 100, list.Pagination.Limit)
	assert.Len(t, list.Meals, 3)

	list, err = svc.GetMeals(ctx, nil, 2, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Pages)
	assert.Len(t, list.Meals, 1)
}

func TestMealService_DateFilter(t *testing.T) {
	t.Parallel()

	svc, mem := newTestService(&stubAnalyzer{}, nil)
	ctx := context.Background()
	carbs := 20.0

	mem.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	_, err := svc.LogMeal(ctx, domain.CreateMealRequest{Description: "toast", MealType: "BREAKFAST", EstimatedCarbs: &carbs}, nil)
	require.NoError(t, err)
	mem.now = func() time.Time { return time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC) }
	_, err = svc.LogMeal(ctx, domain.CreateMealRequest{Description: "bagel", MealType: "BREAKFAST", EstimatedCarbs: &carbs}, nil)
	require.NoError(t, err)

	list, err := svc.GetMeals(ctx, nil, 1, 20, "2025-03-02")
	require.NoError(t, err)
	require.Len(t, list.Meals, 1)
	assert.Equal(t, "bagel", list.Meals[0].Description)

	_, err = svc.GetMeals(ctx, nil, 1, 20, "03/02/2025")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestMealService_OwnershipIsNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(&stubAnalyzer{result: fallbackAnalysis("pasta")}, nil)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	res, err := svc.LogMeal(ctx, domain.CreateMealRequest{Description: "pasta", MealType: "DINNER"}, &alice)
	require.NoError(t, err)

	_, err = svc.GetMealByID(ctx, res.Meal.ID, &bob)
	assert.ErrorIs(t, err, domain.ErrMealNotFound)
	_, err = svc.GetMealByID(ctx, res.Meal.ID, nil)
	assert.ErrorIs(t, err, domain.ErrMealNotFound)
	assert.ErrorIs(t, svc.DeleteMeal(ctx, res.Meal.ID, &bob), domain.ErrMealNotFound)

	got, err := svc.GetMealByID(ctx, res.Meal.ID, &alice)
	require.NoError(t, err)
	assert.Equal(t, alice.String(), got.UserID)

	_, err = svc.GetMealByID(ctx, "not-a-uuid", &alice)
	assert.ErrorIs(t, err, domain.ErrMealNotFound)

	count, err := svc.CountMeals(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMealService_UpdateReanalysesChangedDescription(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{result: domain.TextAnalysis{EstimatedCarbs: 80, EstimatedSugar: 4, Summary: "Large pasta", CarbSource: "pasta"}}
	svc, _ := newTestService(analyzer, nil)
	ctx := context.Background()
	carbs := 40.0

	res, err := svc.LogMeal(ctx, domain.CreateMealRequest{Description: "pasta", MealType: "DINNER", EstimatedCarbs: &carbs}, nil)
	require.NoError(t, err)

	desc := "large bowl of pasta"
	updated, err := svc.UpdateMeal(ctx, res.Meal.ID, domain.UpdateMealRequest{Description: &desc}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{desc}, analyzer.calls)
	assert.Equal(t, 80.0, updated.EstimatedCarbs)
	assert.Equal(t, "Large pasta", updated.AISummary)

	mealType := "snack"
	updated, err = svc.UpdateMeal(ctx, res.Meal.ID, domain.UpdateMealRequest{MealType: &mealType}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.MealTypeSnack, updated.MealType)
	assert.Len(t, analyzer.calls, 1)
}

func TestMealService_DeleteRemovesPhoto(t *testing.T) {
	t.Parallel()

	remover := &recordingRemover{err: errors.New("access denied")}
	svc, _ := newTestService(&stubAnalyzer{}, remover)
	ctx := context.Background()
	carbs := 12.0

	res, err := svc.LogMeal(ctx, domain.CreateMealRequest{
		Description:    "banana",
		MealType:       "SNACK",
		EstimatedCarbs: &carbs,
		PhotoURL:       "https://bucket.s3.us-east-1.amazonaws.com/meals/banana.jpg",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMeal(ctx, res.Meal.ID, nil))
	assert.Equal(t, []string{"https://bucket.s3.us-east-1.amazonaws.com/meals/banana.jpg"}, remover.removed)

	_, err = svc.GetMealByID(ctx, res.Meal.ID, nil)
	assert.ErrorIs(t, err, domain.ErrMealNotFound)
}
