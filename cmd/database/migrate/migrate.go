package migration

import (
	"fmt"

	"gorm.io/gorm"

	"glucolog/entities"
	"glucolog/pkg/meal"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := db.AutoMigrate(&entities.Meal{}); err != nil {
		return fmt.Errorf("migrate meals: %w", err)
	}
	if err := db.Exec(meal.MealsByOwnerIndex).Error; err != nil {
		return fmt.Errorf("index meals: %w", err)
	}
	return nil
}
