package entities

import (
	"github.com/google/uuid"
)

type Meal struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         *uuid.UUID `gorm:"type:uuid;index:idx_meals_user_id" json:"user_id,omitempty"`
	MealType       string     `gorm:"type:varchar(16);not null" json:"meal_type"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	EstimatedCarbs float64    `gorm:"not null" json:"estimated_carbs"`
	EstimatedSugar float64    `gorm:"not null" json:"estimated_sugar"`
	AISummary      string     `gorm:"column:ai_summary;type:text" json:"ai_summary"`
	PhotoURL       string     `gorm:"type:text" json:"photo_url,omitempty"`
	CarbSource     string     `gorm:"type:varchar(200)" json:"carb_source,omitempty"`

	Timestamp
}
