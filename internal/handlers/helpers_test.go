package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"budgetledger/internal/models"
	"budgetledger/internal/pagination"
	"budgetledger/internal/period"
	"budgetledger/internal/services"
	"budgetledger/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	now = func() time.Time { return time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC) }
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- mock category service ---

type mockCategoryService struct {
	listActiveFn         func(ctx context.Context) ([]models.Category, error)
	getByIDFn            func(ctx context.Context, id int64) (*models.Category, error)
	createFn             func(ctx context.Context, in services.CreateCategoryInput) (*models.Category, error)
	updateFn             func(ctx context.Context, id int64, in services.UpdateCategoryInput) (*models.Category, error)
	deleteFn             func(ctx context.Context, id int64) error
	initializeDefaultsFn func(ctx context.Context) (int, error)
}

func (m *mockCategoryService) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &models.Category{Base: models.Base{ID: id}}, nil
}

func (m *mockCategoryService) CreateCategory(ctx context.Context, in services.CreateCategoryInput) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(ctx context.Context, id int64, in services.UpdateCategoryInput) (*models.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return &models.Category{Base: models.Base{ID: id}}, nil
}

func (m *mockCategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCategoryService) InitializeDefaults(ctx context.Context) (int, error) {
	if m.initializeDefaultsFn != nil {
		return m.initializeDefaultsFn(ctx)
	}
	return 0, nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

// --- mock transaction service ---

type mockTransactionService struct {
	listInPeriodFn func(ctx context.Context, p period.Period) ([]models.Transaction, error)
	searchFn       func(ctx context.Context, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	getByIDFn      func(ctx context.Context, id int64) (*models.Transaction, error)
	createFn       func(ctx context.Context, in services.CreateTransactionInput) (*models.Transaction, error)
	updateFn       func(ctx context.Context, id int64, in services.UpdateTransactionInput) (*models.Transaction, error)
	deleteFn       func(ctx context.Context, id int64) (int64, error)
	existingNotes  func(ctx context.Context, notes []string) (map[string]bool, error)
}

func (m *mockTransactionService) ListTransactionsInPeriod(ctx context.Context, p period.Period) ([]models.Transaction, error) {
	if m.listInPeriodFn != nil {
		return m.listInPeriodFn(ctx, p)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) SearchTransactions(ctx context.Context, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, filter, page)
	}
	page.Normalize()
	resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &models.Transaction{Base: models.Base{ID: id}}, nil
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, in services.CreateTransactionInput) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(ctx context.Context, id int64, in services.UpdateTransactionInput) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return &models.Transaction{Base: models.Base{ID: id}}, nil
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return 1, nil
}

func (m *mockTransactionService) ExistingNotes(ctx context.Context, notes []string) (map[string]bool, error) {
	if m.existingNotes != nil {
		return m.existingNotes(ctx, notes)
	}
	return map[string]bool{}, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

// --- mock summary service ---

type mockSummaryService struct {
	summarizeFn     func(ctx context.Context, p period.Period) (*services.BudgetSummary, error)
	summarizeYearFn func(ctx context.Context, year int) (*services.YearlySummary, error)
	statementFn     func(ctx context.Context, p period.Period) (*services.PeriodStatement, error)
}

func (m *mockSummaryService) Summarize(ctx context.Context, p period.Period) (*services.BudgetSummary, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, p)
	}
	return &services.BudgetSummary{
		PeriodStart:       p.StartDate(),
		PeriodEnd:         p.EndDate(),
		CategoryBreakdown: []services.CategoryBreakdown{},
	}, nil
}

func (m *mockSummaryService) SummarizeYear(ctx context.Context, year int) (*services.YearlySummary, error) {
	if m.summarizeYearFn != nil {
		return m.summarizeYearFn(ctx, year)
	}
	return &services.YearlySummary{Year: year}, nil
}

func (m *mockSummaryService) Statement(ctx context.Context, p period.Period) (*services.PeriodStatement, error) {
	if m.statementFn != nil {
		return m.statementFn(ctx, p)
	}
	summary, err := m.Summarize(ctx, p)
	if err != nil {
		return nil, err
	}
	return &services.PeriodStatement{Summary: summary, Transactions: []models.Transaction{}}, nil
}

var _ services.SummaryServicer = (*mockSummaryService)(nil)
