package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"budgetledger/internal/events"
	"budgetledger/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestCategory creates an active category of the given type with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateNamedCategory(t, db, fmt.Sprintf("Test Category %d", nextID()), categoryType)
}

// CreateNamedCategory creates an active category with the given name.
func CreateNamedCategory(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	now := time.Now().UTC()
	category := &models.Category{
		Base:     models.Base{CreatedAt: now, UpdatedAt: now},
		Name:     name,
		Type:     categoryType,
		Color:    "#95A5A6",
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction matching the category's type.
func CreateTestTransaction(t *testing.T, db *gorm.DB, category *models.Category, amount float64, date string) *models.Transaction {
	t.Helper()

	now := time.Now().UTC()
	tx := &models.Transaction{
		Base:        models.Base{CreatedAt: now, UpdatedAt: now},
		CategoryID:  category.ID,
		Amount:      amount,
		Type:        models.TransactionType(category.Type),
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Date:        date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// InsertRawTransaction writes a row directly, bypassing service
// validation, so tests can reproduce inconsistent stored data such as
// unknown types or mismatched categories.
func InsertRawTransaction(t *testing.T, db *gorm.DB, categoryID int64, txType string, amount float64, date string) int64 {
	t.Helper()

	now := time.Now().UTC()
	err := db.Exec(
		"INSERT INTO transactions (category_id, amount, type, description, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		categoryID, amount, txType, "raw", date, now, now,
	).Error
	if err != nil {
		t.Fatalf("failed to insert raw transaction: %v", err)
	}

	var id int64
	if err := db.Raw("SELECT MAX(id) FROM transactions").Scan(&id).Error; err != nil {
		t.Fatalf("failed to read raw transaction id: %v", err)
	}
	return id
}

// EventRecorder is an events.Publisher that keeps every event in memory.
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
	Err    error
}

var _ events.Publisher = (*EventRecorder)(nil)

func (r *EventRecorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

func (r *EventRecorder) Close() error { return nil }

// Types returns the recorded event types in publish order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
