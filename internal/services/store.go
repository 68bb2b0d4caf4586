package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/events"
	"budgetledger/internal/logger"
	"budgetledger/internal/models"
	"budgetledger/internal/patch"
)

// clock returns the instant used for created_at/updated_at.
type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// storageErr logs a persistence failure and converts it to a StorageError.
// AppErrors raised inside transactions pass through untouched.
func storageErr(op string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	logger.Get().Errorw("storage failure", "op", op, "error", err)
	return apperrors.Storage(op, err)
}

// publish emits an event after a commit. Delivery failures never undo
// the mutation.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Get().Warnw("failed to publish ledger event",
			"type", event.Type,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}

// remove deletes the row with id according to the entity's deletion
// policy and returns the number of rows touched.
func remove(tx *gorm.DB, entity models.Deletable, id int64, now time.Time) (int64, error) {
	var (
		query string
		args  []any
		err   error
	)
	switch entity.DeletionPolicy() {
	case models.DeletionSoft:
		set := patch.NewSet()
		set.Add("is_active", false)
		query, args, err = set.Update(entity.TableName(), id, now, sq.Question)
	case models.DeletionHard:
		query, args, err = sq.Delete(entity.TableName()).Where(sq.Eq{"id": id}).ToSql()
	default:
		return 0, fmt.Errorf("no deletion policy for %s", entity.TableName())
	}
	if err != nil {
		return 0, err
	}

	res := tx.Exec(query, args...)
	return res.RowsAffected, res.Error
}

// findCategory loads a category regardless of its active flag.
func findCategory(tx *gorm.DB, id int64) (*models.Category, error) {
	var category models.Category
	if err := tx.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// categoryForTransaction resolves the category a transaction will point
// at and checks that it is active and agrees with the transaction type.
func categoryForTransaction(tx *gorm.DB, categoryID int64, txType models.TransactionType) (*models.Category, error) {
	category, err := findCategory(tx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, apperrors.ErrCategoryInactive
	}
	if !txType.Matches(category.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrTypeMismatch,
			fmt.Sprintf("category %q only accepts %s transactions", category.Name, category.Type))
	}
	return category, nil
}
