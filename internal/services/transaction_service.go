package services

import (
	"context"
	"errors"
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/events"
	"budgetledger/internal/models"
	"budgetledger/internal/pagination"
	"budgetledger/internal/patch"
	"budgetledger/internal/period"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       clock
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, publisher events.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &transactionService{db: db, publisher: publisher, now: utcNow}
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	return nil
}

// ListTransactionsInPeriod returns the period's transactions, newest
// date first and in insertion order within a day.
func (s *transactionService) ListTransactionsInPeriod(ctx context.Context, p period.Period) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("date >= ? AND date < ?", p.StartDate(), p.EndDate()).
		Order("date DESC").Order("id ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, storageErr("transactions.list_in_period", err)
	}
	return transactions, nil
}

// applyTransactionFilters adds the filter's predicates to a query.
func applyTransactionFilters(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != "" {
		query = query.Where("date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		query = query.Where("date <= ?", filter.ToDate)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		query = query.Where(`LOWER(description) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%")
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// SearchTransactions returns one page of transactions matching filter.
func (s *transactionService) SearchTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Normalize()
	if filter.FromDate != "" {
		if _, err := period.ParseDate(filter.FromDate); err != nil {
			return nil, err
		}
	}
	if filter.ToDate != "" {
		if _, err := period.ParseDate(filter.ToDate); err != nil {
			return nil, err
		}
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, apperrors.ErrInvalidType
	}

	db := s.db.WithContext(ctx)

	var totalItems int64
	if err := applyTransactionFilters(db.Model(&models.Transaction{}), filter).Count(&totalItems).Error; err != nil {
		return nil, storageErr("transactions.search", err)
	}

	var transactions []models.Transaction
	err := applyTransactionFilters(db.Model(&models.Transaction{}), filter).
		Preload("Category").
		Order("date DESC").Order("id ASC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, storageErr("transactions.search", err)
	}

	result := pagination.NewPageResponse(transactions, page, totalItems)
	return &result, nil
}

// GetTransactionByID retrieves a transaction with its category.
func (s *transactionService) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Preload("Category").First(&transaction, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, storageErr("transactions.get", err)
	}
	return &transaction, nil
}

// CreateTransaction records a new transaction against an active
// category of the same type.
func (s *transactionService) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*models.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperrors.ErrInvalidType
	}
	if _, err := period.ParseDate(in.Date); err != nil {
		return nil, err
	}

	now := s.now()
	transaction := &models.Transaction{
		Base:        models.Base{CreatedAt: now, UpdatedAt: now},
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
		Date:        in.Date,
		Notes:       in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := categoryForTransaction(tx, in.CategoryID, in.Type)
		if err != nil {
			return err
		}
		if err := tx.Omit("Category").Create(transaction).Error; err != nil {
			return err
		}
		transaction.Category = category
		return nil
	})
	if err != nil {
		return nil, storageErr("transactions.create", err)
	}

	publish(ctx, s.publisher, events.New(events.TransactionCreated, transaction.ID, transaction))
	return transaction, nil
}

// UpdateTransaction changes only the supplied fields and refreshes
// updated_at. An update with no fields returns the stored transaction
// without writing.
func (s *transactionService) UpdateTransaction(ctx context.Context, id int64, in UpdateTransactionInput) (*models.Transaction, error) {
	var (
		result  models.Transaction
		written bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Transaction
		if err := tx.First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return err
		}

		set := patch.NewSet()
		if in.Amount.Set {
			if err := validateAmount(in.Amount.Value); err != nil {
				return err
			}
			set.Add("amount", in.Amount.Value)
		}
		if in.Type.Set {
			if !in.Type.Value.Valid() {
				return apperrors.ErrInvalidType
			}
			set.Add("type", string(in.Type.Value))
		}
		if in.Date.Set {
			if _, err := period.ParseDate(in.Date.Value); err != nil {
				return err
			}
			set.Add("date", in.Date.Value)
		}
		patch.Apply(set, "category_id", in.CategoryID)
		patch.Apply(set, "description", in.Description)
		patch.ApplyNullable(set, "notes", in.Notes)

		if set.Empty() {
			return tx.Preload("Category").First(&result, id).Error
		}

		if in.CategoryID.Set || in.Type.Set {
			categoryID, txType := current.CategoryID, current.Type
			if in.CategoryID.Set {
				categoryID = in.CategoryID.Value
			}
			if in.Type.Set {
				txType = in.Type.Value
			}
			if _, err := categoryForTransaction(tx, categoryID, txType); err != nil {
				return err
			}
		}

		query, args, err := set.Update(models.Transaction{}.TableName(), id, s.now(), sq.Question)
		if err != nil {
			return err
		}
		if err := tx.Exec(query, args...).Error; err != nil {
			return err
		}
		written = true

		return tx.Preload("Category").First(&result, id).Error
	})
	if err != nil {
		return nil, storageErr("transactions.update", err)
	}

	if written {
		publish(ctx, s.publisher, events.New(events.TransactionUpdated, id, &result))
	}
	return &result, nil
}

// DeleteTransaction removes the row. Deleting an unknown id affects no
// rows and is not an error.
func (s *transactionService) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	affected, err := remove(s.db.WithContext(ctx), models.Transaction{}, id, s.now())
	if err != nil {
		return 0, storageErr("transactions.delete", err)
	}

	if affected > 0 {
		publish(ctx, s.publisher, events.New(events.TransactionDeleted, id, map[string]int64{"rows_affected": affected}))
	}
	return affected, nil
}

// notesBatchSize keeps IN lists under SQLite's bound-parameter limit.
const notesBatchSize = 500

// ExistingNotes looks up notes in batches. The result is never nil.
func (s *transactionService) ExistingNotes(ctx context.Context, notes []string) (map[string]bool, error) {
	found := make(map[string]bool)
	for start := 0; start < len(notes); start += notesBatchSize {
		end := min(start+notesBatchSize, len(notes))

		var stored []string
		err := s.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Where("notes IN ?", notes[start:end]).
			Distinct().
			Pluck("notes", &stored).Error
		if err != nil {
			return nil, storageErr("transactions.existing_notes", err)
		}
		for _, n := range stored {
			found[n] = true
		}
	}
	return found, nil
}
