package services

import (
	"context"

	"gorm.io/gorm"

	"budgetledger/internal/events"
	"budgetledger/internal/models"
)

type defaultCategory struct {
	name  string
	kind  models.CategoryType
	color string
	icon  string
}

var defaultCategories = []defaultCategory{
	{"Food & Dining", models.CategoryTypeExpense, "#FF6B6B", "🍽️"},
	{"Shopping", models.CategoryTypeExpense, "#4ECDC4", "🛍️"},
	{"Transportation", models.CategoryTypeExpense, "#45B7D1", "🚗"},
	{"Bills & Utilities", models.CategoryTypeExpense, "#FFA07A", "💡"},
	{"Entertainment", models.CategoryTypeExpense, "#98D8C8", "🎬"},
	{"Healthcare", models.CategoryTypeExpense, "#F7DC6F", "🏥"},
	{"Education", models.CategoryTypeExpense, "#BB8FCE", "📚"},
	{"Travel", models.CategoryTypeExpense, "#85C1E2", "✈️"},
	{"Other", models.CategoryTypeExpense, "#95A5A6", "📌"},
	{"Salary", models.CategoryTypeIncome, "#27AE60", "💰"},
	{"Freelance", models.CategoryTypeIncome, "#2ECC71", "💼"},
	{"Investments", models.CategoryTypeIncome, "#58D68D", "📈"},
	{"Other Income", models.CategoryTypeIncome, "#82E0AA", "💵"},
}

// InitializeDefaults seeds the starter categories into an empty store
// and reports how many were created. A store that already holds any
// category, active or not, is left alone.
func (s *categoryService) InitializeDefaults(ctx context.Context) (int, error) {
	var created []models.Category

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := s.now()
		for _, d := range defaultCategories {
			icon := d.icon
			created = append(created, models.Category{
				Base:     models.Base{CreatedAt: now, UpdatedAt: now},
				Name:     d.name,
				Type:     d.kind,
				Color:    d.color,
				Icon:     &icon,
				IsActive: true,
			})
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return 0, storageErr("categories.initialize_defaults", err)
	}

	for i := range created {
		publish(ctx, s.publisher, events.New(events.CategoryCreated, created[i].ID, created[i]))
	}
	return len(created), nil
}
