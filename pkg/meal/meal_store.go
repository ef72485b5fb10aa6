package meal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"glucolog/domain"
	"glucolog/entities"
)

type (
	// ListQuery selects one owner's meals, optionally within [From, To).
	ListQuery struct {
		UserID *uuid.UUID
		Page   int
		Limit  int
		From   *time.Time
		To     *time.Time
	}

	// Patch carries the fields of an update; nil means unchanged.
	Patch struct {
		Description    *string
		MealType       *string
		EstimatedCarbs *float64
		EstimatedSugar *float64
		AISummary      *string
		CarbSource     *string
		PhotoURL       *string
	}

	Store interface {
		InitSchema(ctx context.Context) error
		Create(ctx context.Context, meal *entities.Meal) (*entities.Meal, error)
		List(ctx context.Context, q ListQuery) ([]*entities.Meal, int64, error)
		GetByID(ctx context.Context, id uuid.UUID) (*entities.Meal, error)
		Update(ctx context.Context, id uuid.UUID, p Patch) (*entities.Meal, error)
		Delete(ctx context.Context, id uuid.UUID) error
		CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	}

	RelationalStore struct {
		db  *gorm.DB
		now func() time.Time
	}
)

func NewRelationalStore(db *gorm.DB) *RelationalStore {
	return &RelationalStore{db: db, now: time.Now}
}

// MealsByOwnerIndex serves the per-owner, newest-first listing.
const MealsByOwnerIndex = `CREATE INDEX IF NOT EXISTS idx_meals_user_created ON meals (user_id, created_at DESC)`

func (r *RelationalStore) InitSchema(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&entities.Meal{}); err != nil {
		return fmt.Errorf("migrate meals: %w", err)
	}
	if err := db.Exec(MealsByOwnerIndex).Error; err != nil {
		return fmt.Errorf("index meals: %w", err)
	}
	return nil
}

func (r *RelationalStore) Create(ctx context.Context, meal *entities.Meal) (*entities.Meal, error) {
	record, err := prepareNew(meal)
	if err != nil {
		return nil, err
	}
	record.ID = uuid.New()
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("insert meal: %w", err)
	}
	return &record, nil
}

func (r *RelationalStore) List(ctx context.Context, q ListQuery) ([]*entities.Meal, int64, error) {
	var meals []*entities.Meal
	var count int64

	page, limit := domain.NormalizePage(q.Page, q.Limit)

	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&entities.Meal{})
		if q.UserID != nil {
			query = query.Where("user_id = ?", *q.UserID)
		} else {
			query = query.Where("user_id IS NULL")
		}
		if q.From != nil && q.To != nil {
			query = query.Where("created_at >= ? AND created_at < ?", q.From.UTC(), q.To.UTC())
		}
		return query
	}

	if err := scoped().Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count meals: %w", err)
	}

	if err := scoped().
		Order("created_at DESC").
		Offset(domain.Offset(page, limit)).
		Limit(limit).
		Find(&meals).Error; err != nil {
		return nil, 0, fmt.Errorf("list meals: %w", err)
	}

	return meals, count, nil
}

func (r *RelationalStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.Meal, error) {
	var meal entities.Meal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMealNotFound
		}
		return nil, fmt.Errorf("get meal: %w", err)
	}
	return &meal, nil
}

func (r *RelationalStore) Update(ctx context.Context, id uuid.UUID, p Patch) (*entities.Meal, error) {
	p, err := p.normalized()
	if err != nil {
		return nil, err
	}
	updates := p.columns()
	updates["updated_at"] = r.now().UTC()

	result := r.db.WithContext(ctx).Model(&entities.Meal{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update meal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrMealNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *RelationalStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Meal{})
	if result.Error != nil {
		return fmt.Errorf("delete meal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrMealNotFound
	}
	return nil
}

func (r *RelationalStore) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Meal{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count user meals: %w", err)
	}
	return count, nil
}

// prepareNew validates a new record and returns a copy with the meal type
// normalised to upper case.
func prepareNew(meal *entities.Meal) (entities.Meal, error) {
	if meal == nil || strings.TrimSpace(meal.Description) == "" {
		return entities.Meal{}, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrMissingDescription)
	}
	mt, ok := domain.ParseMealType(meal.MealType)
	if !ok {
		return entities.Meal{}, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidMealType)
	}
	if meal.EstimatedCarbs < 0 || meal.EstimatedSugar < 0 {
		return entities.Meal{}, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrNegativeCarbs)
	}
	record := *meal
	record.MealType = string(mt)
	return record, nil
}

func (p Patch) normalized() (Patch, error) {
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return p, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrMissingDescription)
	}
	if p.MealType != nil {
		mt, ok := domain.ParseMealType(*p.MealType)
		if !ok {
			return p, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidMealType)
		}
		s := string(mt)
		p.MealType = &s
	}
	if (p.EstimatedCarbs != nil && *p.EstimatedCarbs < 0) || (p.EstimatedSugar != nil && *p.EstimatedSugar < 0) {
		return p, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrNegativeCarbs)
	}
	return p, nil
}

func (p Patch) columns() map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.MealType != nil {
		updates["meal_type"] = *p.MealType
	}
	if p.EstimatedCarbs != nil {
		updates["estimated_carbs"] = *p.EstimatedCarbs
	}
	if p.EstimatedSugar != nil {
		updates["estimated_sugar"] = *p.EstimatedSugar
	}
	if p.AISummary != nil {
		updates["ai_summary"] = *p.AISummary
	}
	if p.CarbSource != nil {
		updates["carb_source"] = *p.CarbSource
	}
	if p.PhotoURL != nil {
		updates["photo_url"] = *p.PhotoURL
	}
	return updates
}

func (p Patch) apply(m *entities.Meal) {
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.MealType != nil {
		m.MealType = *p.MealType
	}
	if p.EstimatedCarbs != nil {
		m.EstimatedCarbs = *p.EstimatedCarbs
	}
	if p.EstimatedSugar != nil {
		m.EstimatedSugar = *p.EstimatedSugar
	}
	if p.AISummary != nil {
		m.AISummary = *p.AISummary
	}
	if p.CarbSource != nil {
		m.CarbSource = *p.CarbSource
	}
	if p.PhotoURL != nil {
		m.PhotoURL = *p.PhotoURL
	}
}
