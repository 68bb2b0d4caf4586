package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/models"
	"budgetledger/internal/period"
	"budgetledger/internal/services"
)

func setupSummaryRouter(handler *SummaryHandler) *gin.Engine {
	r := gin.New()
	r.GET("/summary", handler.GetSummary)
	r.GET("/summary/yearly", handler.GetYearlySummary)
	r.GET("/export", handler.Export)
	return r
}

func TestSummaryHandler_GetSummary(t *testing.T) {
	t.Run("returns the summary", func(t *testing.T) {
		svc := &mockSummaryService{
			summarizeFn: func(_ context.Context, p period.Period) (*services.BudgetSummary, error) {
				return &services.BudgetSummary{
					PeriodStart: p.StartDate(), PeriodEnd: p.EndDate(),
					TotalIncome: 1000, TotalExpenses: 200, Balance: 800,
					CategoryBreakdown: []services.CategoryBreakdown{
						{Category: models.Category{Name: "Salary"}, Total: 1000, TransactionCount: 1, Percentage: 83.33},
						{Category: models.Category{Name: "Food"}, Total: 200, TransactionCount: 1, Percentage: 16.67},
					},
				}, nil
			},
		}
		r := setupSummaryRouter(NewSummaryHandler(svc))

		rec := doRequest(r, "GET", "/summary?month=3&year=2024", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := parseJSON(t, rec)
		if body["balance"] != float64(800) || body["period_end"] != "2024-04-01" {
			t.Errorf("unexpected body %v", body)
		}
		breakdown := body["category_breakdown"].([]interface{})
		if first := breakdown[0].(map[string]interface{}); first["percentage"] != 83.33 {
			t.Errorf("unexpected first row %v", first)
		}
	})

	t.Run("returns 400 on month 0", func(t *testing.T) {
		r := setupSummaryRouter(NewSummaryHandler(&mockSummaryService{}))

		rec := doRequest(r, "GET", "/summary?month=0&year=2024", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on non-numeric year", func(t *testing.T) {
		r := setupSummaryRouter(NewSummaryHandler(&mockSummaryService{}))

		rec := doRequest(r, "GET", "/summary?month=1&year=abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 503 when the store is down", func(t *testing.T) {
		svc := &mockSummaryService{
			summarizeFn: func(_ context.Context, _ period.Period) (*services.BudgetSummary, error) {
				return nil, apperrors.WithOp(apperrors.ErrStoreUnavailable, "summary.begin")
			},
		}
		r := setupSummaryRouter(NewSummaryHandler(svc))

		rec := doRequest(r, "GET", "/summary", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}

func TestSummaryHandler_GetYearlySummary(t *testing.T) {
	var gotYear int
	svc := &mockSummaryService{
		summarizeYearFn: func(_ context.Context, year int) (*services.YearlySummary, error) {
			gotYear = year
			return &services.YearlySummary{Year: year}, nil
		},
	}
	r := setupSummaryRouter(NewSummaryHandler(svc))

	rec := doRequest(r, "GET", "/summary/yearly", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotYear != 2024 {
		t.Errorf("expected current year 2024, got %d", gotYear)
	}
}

func TestSummaryHandler_Export(t *testing.T) {
	svc := &mockSummaryService{
		statementFn: func(_ context.Context, p period.Period) (*services.PeriodStatement, error) {
			return &services.PeriodStatement{
				Summary: &services.BudgetSummary{PeriodStart: p.StartDate(), PeriodEnd: p.EndDate(), CategoryBreakdown: []services.CategoryBreakdown{}},
				Transactions: []models.Transaction{
					{Date: "2024-03-15", Type: models.TransactionTypeExpense, Description: "Lunch", Amount: 12.5},
				},
			}, nil
		},
	}

	t.Run("csv", func(t *testing.T) {
		r := setupSummaryRouter(NewSummaryHandler(svc))

		rec := doRequest(r, "GET", "/export?month=3&year=2024", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("unexpected content type %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "ledger-2024-03.csv") {
			t.Errorf("unexpected disposition %q", cd)
		}
		if !strings.Contains(rec.Body.String(), "2024-03-15,expense,,Lunch,12.50,") {
			t.Errorf("unexpected csv %q", rec.Body.String())
		}
	})

	t.Run("pdf", func(t *testing.T) {
		r := setupSummaryRouter(NewSummaryHandler(svc))

		rec := doRequest(r, "GET", "/export?month=3&year=2024&format=pdf", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.HasPrefix(rec.Body.String(), "%PDF") {
			t.Error("expected a PDF body")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		r := setupSummaryRouter(NewSummaryHandler(svc))

		rec := doRequest(r, "GET", "/export?format=xlsx", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
