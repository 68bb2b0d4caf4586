package services

import (
	"context"

	"budgetledger/internal/models"
	"budgetledger/internal/pagination"
	"budgetledger/internal/patch"
	"budgetledger/internal/period"
)

// CreateCategoryInput holds the fields of a new category.
type CreateCategoryInput struct {
	Name     string
	Type     models.CategoryType
	Color    string
	Icon     *string
	ParentID *int64
}

// UpdateCategoryInput holds the category fields a caller chose to change.
type UpdateCategoryInput struct {
	Name     patch.Field[string]              `json:"name"`
	Type     patch.Field[models.CategoryType] `json:"type"`
	Color    patch.Field[string]              `json:"color"`
	Icon     patch.Field[*string]             `json:"icon"`
	ParentID patch.Field[*int64]              `json:"parent_id"`
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListActiveCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, in UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	InitializeDefaults(ctx context.Context) (int, error)
}

// CreateTransactionInput holds the fields of a new transaction.
type CreateTransactionInput struct {
	CategoryID  int64
	Amount      float64
	Type        models.TransactionType
	Description string
	Date        string
	Notes       *string
}

// UpdateTransactionInput holds the transaction fields a caller chose to change.
type UpdateTransactionInput struct {
	CategoryID  patch.Field[int64]                  `json:"category_id"`
	Amount      patch.Field[float64]                `json:"amount"`
	Type        patch.Field[models.TransactionType] `json:"type"`
	Description patch.Field[string]                 `json:"description"`
	Date        patch.Field[string]                 `json:"date"`
	Notes       patch.Field[*string]                `json:"notes"`
}

// TransactionFilter holds optional filter parameters for searching
// transactions. Date bounds are inclusive.
type TransactionFilter struct {
	FromDate    string
	ToDate      string
	CategoryIDs []int64
	Type        *models.TransactionType
	Search      string
	MinAmount   *float64
	MaxAmount   *float64
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	ListTransactionsInPeriod(ctx context.Context, p period.Period) ([]models.Transaction, error)
	SearchTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, in CreateTransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, in UpdateTransactionInput) (*models.Transaction, error)
	// DeleteTransaction reports the number of rows removed; zero means the
	// id did not exist and is not an error.
	DeleteTransaction(ctx context.Context, id int64) (int64, error)
	// ExistingNotes reports which of the given notes values are already
	// stored on a transaction.
	ExistingNotes(ctx context.Context, notes []string) (map[string]bool, error)
}

// CategoryBreakdown is one category's share of a period.
type CategoryBreakdown struct {
	Category         models.Category `json:"category"`
	Total            float64         `json:"total"`
	TransactionCount int64           `json:"transaction_count"`
	Percentage       float64         `json:"percentage"`
}

// BudgetSummary aggregates a period's transactions.
type BudgetSummary struct {
	PeriodStart       string              `json:"period_start"`
	PeriodEnd         string              `json:"period_end"`
	TotalIncome       float64             `json:"total_income"`
	TotalExpenses     float64             `json:"total_expenses"`
	Balance           float64             `json:"balance"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
}

// MonthlyTotals holds one month of a yearly overview.
type MonthlyTotals struct {
	Month    int     `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// YearlySummary aggregates a calendar year month by month.
type YearlySummary struct {
	Year          int             `json:"year"`
	Months        []MonthlyTotals `json:"months"`
	TotalIncome   float64         `json:"total_income"`
	TotalExpenses float64         `json:"total_expenses"`
	Balance       float64         `json:"balance"`
	SavingsRate   float64         `json:"savings_rate"`
	BestMonth     *int            `json:"best_month,omitempty"`
	WorstMonth    *int            `json:"worst_month,omitempty"`
	SavingsStreak int             `json:"savings_streak"`
}

// PeriodStatement is a summary together with the transactions it was
// computed from.
type PeriodStatement struct {
	Summary      *BudgetSummary
	Transactions []models.Transaction
}

// SummaryServicer defines the contract for period aggregation.
type SummaryServicer interface {
	Summarize(ctx context.Context, p period.Period) (*BudgetSummary, error)
	SummarizeYear(ctx context.Context, year int) (*YearlySummary, error)
	// Statement reads the summary and the period's transactions from one
	// snapshot, so the listed rows always add up to the totals.
	Statement(ctx context.Context, p period.Period) (*PeriodStatement, error)
}
