package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetledger/internal/models"
	"budgetledger/internal/period"
	"budgetledger/internal/services"
	"budgetledger/internal/testutil"
)

func TestWriteCSV(t *testing.T) {
	note := "split with Sam"
	food := &models.Category{Name: "Food", Type: models.CategoryTypeExpense}
	txs := []models.Transaction{
		{Date: "2024-03-15", Type: models.TransactionTypeExpense, Category: food, Description: `Lunch, "deluxe"`, Amount: 12.5, Notes: &note},
		{Date: "2024-03-01", Type: models.TransactionTypeIncome, Description: "Salary", Amount: 1000},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"2024-03-15", "expense", "Food", `Lunch, "deluxe"`, "12.50", "split with Sam"}, records[1])
	assert.Equal(t, []string{"2024-03-01", "income", "", "Salary", "1000.00", ""}, records[2])
}

func TestWriteCSVNeutralisesFormulas(t *testing.T) {
	note := "@SUM(A1:A9)"
	cat := &models.Category{Name: "+Cash", Type: models.CategoryTypeExpense}
	txs := []models.Transaction{
		{Date: "2024-03-02", Type: models.TransactionTypeExpense, Category: cat, Description: `=HYPERLINK("http://x")`, Amount: 1, Notes: &note},
		{Date: "2024-03-03", Type: models.TransactionTypeExpense, Description: "-refund", Amount: 2},
		{Date: "2024-03-04", Type: models.TransactionTypeExpense, Description: "Coffee", Amount: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "'+Cash", records[1][2])
	assert.Equal(t, `'=HYPERLINK("http://x")`, records[1][3])
	assert.Equal(t, "'@SUM(A1:A9)", records[1][5])
	assert.Equal(t, "'-refund", records[2][3])
	assert.Equal(t, "Coffee", records[3][3])
	assert.Equal(t, "2.00", records[2][4])
}

func TestFormat(t *testing.T) {
	assert.True(t, FormatCSV.Valid())
	assert.True(t, FormatPDF.Valid())
	assert.False(t, Format("xlsx").Valid())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
}

func TestBuildAndRender(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	salary := testutil.CreateNamedCategory(t, db, "Salary", models.CategoryTypeIncome)
	food := testutil.CreateNamedCategory(t, db, "Food", models.CategoryTypeExpense)
	testutil.CreateTestTransaction(t, db, salary, 1000, "2024-03-01")
	testutil.CreateTestTransaction(t, db, food, 200, "2024-03-15")

	p, err := period.Resolve(3, 2024)
	require.NoError(t, err)

	report, err := Build(ctx, services.NewSummaryService(db), p)
	require.NoError(t, err)
	assert.Len(t, report.Transactions, 2)
	assert.Equal(t, 800.0, report.Summary.Balance)
	assert.Equal(t, "ledger-2024-03.pdf", report.Filename(FormatPDF))

	doc, err := RenderPDF(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")), "expected a PDF document")
}

func TestRenderPDFEmptyPeriod(t *testing.T) {
	p, err := period.Resolve(12, 2023)
	require.NoError(t, err)

	report := &Report{Period: p, Summary: &services.BudgetSummary{CategoryBreakdown: []services.CategoryBreakdown{}}}
	doc, err := RenderPDF(report)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}
