package domain

import (
	"errors"
	"strings"
	"time"
)

type MealType string

const (
	MealTypeBreakfast MealType = "BREAKFAST"
	MealTypeBrunch    MealType = "BRUNCH"
	MealTypeLunch     MealType = "LUNCH"
	MealTypeDinner    MealType = "DINNER"
	MealTypeSnack     MealType = "SNACK"
)

var MealTypes = []MealType{MealTypeBreakfast, MealTypeBrunch, MealTypeLunch, MealTypeDinner, MealTypeSnack}

var (
	MessageSuccessLogMeal    = "meal logged successfully"
	MessageSuccessGetMeals   = "meals retrieved successfully"
	MessageSuccessGetMeal    = "meal retrieved successfully"
	MessageSuccessUpdateMeal = "meal updated successfully"
	MessageSuccessDeleteMeal = "meal deleted successfully"

	MessageFailedLogMeal    = "failed to log meal"
	MessageFailedGetMeals   = "failed to retrieve meals"
	MessageFailedGetMeal    = "failed to retrieve meal"
	MessageFailedUpdateMeal = "failed to update meal"
	MessageFailedDeleteMeal = "failed to delete meal"

	ErrMealNotFound       = errors.New("meal not found")
	ErrInvalidMealType    = errors.New("invalid meal type")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrMissingDescription = errors.New("description is required")
	ErrNegativeCarbs      = errors.New("carbohydrate estimate must not be negative")
)

type (
	CreateMealRequest struct {
		Description    string   `json:"description" validate:"required,max=2000"`
		MealType       string   `json:"mealType" validate:"required,mealtype"`
		PhotoURL       string   `json:"photoUrl" validate:"omitempty,max=2048"`
		CarbSource     string   `json:"carbSource" validate:"omitempty,max=200"`
		EstimatedCarbs *float64 `json:"estimatedCarbs" validate:"omitempty,gte=0"`
		EstimatedSugar *float64 `json:"estimatedSugar" validate:"omitempty,gte=0"`
		AISummary      string   `json:"aiSummary" validate:"omitempty,max=4000"`
	}

	UpdateMealRequest struct {
		Description    *string  `json:"description" validate:"omitempty,min=1,max=2000"`
		MealType       *string  `json:"mealType" validate:"omitempty,mealtype"`
		PhotoURL       *string  `json:"photoUrl" validate:"omitempty,max=2048"`
		CarbSource     *string  `json:"carbSource" validate:"omitempty,max=200"`
		EstimatedCarbs *float64 `json:"estimatedCarbs" validate:"omitempty,gte=0"`
		EstimatedSugar *float64 `json:"estimatedSugar" validate:"omitempty,gte=0"`
		AISummary      *string  `json:"aiSummary" validate:"omitempty,max=4000"`
	}

	MealResponse struct {
		ID             string    `json:"id"`
		UserID         string    `json:"userId,omitempty"`
		MealType       MealType  `json:"mealType"`
		Description    string    `json:"description"`
		EstimatedCarbs float64   `json:"estimatedCarbs"`
		EstimatedSugar float64   `json:"estimatedSugar"`
		AISummary      string    `json:"aiSummary"`
		PhotoURL       string    `json:"photoUrl,omitempty"`
		CarbSource     string    `json:"carbSource,omitempty"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}

	CreateMealResponse struct {
		Meal            MealResponse `json:"meal"`
		Recommendations []string     `json:"recommendations"`
		Error           string       `json:"error,omitempty"`
	}

	ListMealsResponse struct {
		Meals      []MealResponse `json:"meals"`
		Pagination Pagination     `json:"pagination"`
		Backend    string         `json:"backend"`
	}
)

// ParseMealType accepts any casing of a known meal type.
func ParseMealType(s string) (MealType, bool) {
	mt := MealType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range MealTypes {
		if mt == known {
			return mt, true
		}
	}
	return "", false
}

// InferMealType picks a meal type from the local hour of t.
func InferMealType(t time.Time) MealType {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 10:
		return MealTypeBreakfast
	case hour >= 10 && hour < 12:
		return MealTypeBrunch
	case hour >= 12 && hour < 15:
		return MealTypeLunch
	case hour >= 17 && hour < 21:
		return MealTypeDinner
	default:
		return MealTypeSnack
	}
}

func (m MealType) Label() string {
	return strings.ToLower(string(m))
}
