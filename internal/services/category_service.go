package services

import (
	"context"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/events"
	"budgetledger/internal/models"
	"budgetledger/internal/patch"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       clock
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, publisher events.Publisher) CategoryServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &categoryService{db: db, publisher: publisher, now: utcNow}
}

// ListActiveCategories returns every active category ordered by name.
func (s *categoryService) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, storageErr("categories.list_active", err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category, including inactive ones.
func (s *categoryService) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	category, err := findCategory(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, storageErr("categories.get", err)
	}
	return category, nil
}

// CreateCategory creates a new active category.
func (s *categoryService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidArgument, "category name is required")
	}
	if !in.Type.Valid() {
		return nil, apperrors.ErrInvalidType
	}

	now := s.now()
	category := &models.Category{
		Base:     models.Base{CreatedAt: now, UpdatedAt: now},
		Name:     name,
		Type:     in.Type,
		Color:    in.Color,
		Icon:     in.Icon,
		ParentID: in.ParentID,
		IsActive: true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ParentID != nil {
			if _, err := findCategory(tx, *in.ParentID); err != nil {
				if errors.Is(err, apperrors.ErrCategoryNotFound) {
					return apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
				}
				return err
			}
		}
		return tx.Create(category).Error
	})
	if err != nil {
		return nil, storageErr("categories.create", err)
	}

	publish(ctx, s.publisher, events.New(events.CategoryCreated, category.ID, category))
	return category, nil
}

// UpdateCategory changes only the supplied fields. An update with no
// fields returns the category as stored without writing.
func (s *categoryService) UpdateCategory(ctx context.Context, id int64, in UpdateCategoryInput) (*models.Category, error) {
	var (
		result  *models.Category
		written bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findCategory(tx, id)
		if err != nil {
			return err
		}

		set := patch.NewSet()
		if in.Name.Set {
			name := strings.TrimSpace(in.Name.Value)
			if name == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidArgument, "category name is required")
			}
			set.Add("name", name)
		}
		if in.Type.Set && in.Type.Value != current.Type {
			if !in.Type.Value.Valid() {
				return apperrors.ErrInvalidType
			}
			var used int64
			if err := tx.Model(&models.Transaction{}).Where("category_id = ?", id).Count(&used).Error; err != nil {
				return err
			}
			if used > 0 {
				return apperrors.WithMessage(apperrors.ErrTypeMismatch, "cannot change the type of a category that has transactions")
			}
			set.Add("type", string(in.Type.Value))
		}
		patch.Apply(set, "color", in.Color)
		patch.ApplyNullable(set, "icon", in.Icon)
		if in.ParentID.Set && in.ParentID.Value != nil {
			if *in.ParentID.Value == id {
				return apperrors.ErrSelfParent
			}
			if _, err := findCategory(tx, *in.ParentID.Value); err != nil {
				if errors.Is(err, apperrors.ErrCategoryNotFound) {
					return apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
				}
				return err
			}
		}
		patch.ApplyNullable(set, "parent_id", in.ParentID)

		if set.Empty() {
			result = current
			return nil
		}

		query, args, err := set.Update(models.Category{}.TableName(), id, s.now(), sq.Question)
		if err != nil {
			return err
		}
		if err := tx.Exec(query, args...).Error; err != nil {
			return err
		}
		written = true

		result, err = findCategory(tx, id)
		return err
	})
	if err != nil {
		return nil, storageErr("categories.update", err)
	}

	if written {
		publish(ctx, s.publisher, events.New(events.CategoryUpdated, id, result))
	}
	return result, nil
}

// DeleteCategory soft-deletes a category. Transactions and child
// categories are left as they are, and deleting an inactive category
// again succeeds.
func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findCategory(tx, id); err != nil {
			return err
		}
		_, err := remove(tx, models.Category{}, id, s.now())
		return err
	})
	if err != nil {
		return storageErr("categories.soft_delete", err)
	}

	publish(ctx, s.publisher, events.New(events.CategoryDeleted, id, nil))
	return nil
}
