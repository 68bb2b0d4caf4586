// Package export renders a month of ledger data as CSV or PDF.
package export

import (
	"context"

	"budgetledger/internal/models"
	"budgetledger/internal/period"
	"budgetledger/internal/services"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatCSV || f == FormatPDF
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Report is everything an export needs for one period.
type Report struct {
	Period       period.Period
	Summary      *services.BudgetSummary
	Transactions []models.Transaction
}

// Build loads the summary and transaction list for p from one snapshot,
// so the report's totals match its rows.
func Build(ctx context.Context, summaries services.SummaryServicer, p period.Period) (*Report, error) {
	statement, err := summaries.Statement(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Report{Period: p, Summary: statement.Summary, Transactions: statement.Transactions}, nil
}

// Filename returns the suggested download name, e.g. ledger-2024-03.csv.
func (r *Report) Filename(f Format) string {
	return "ledger-" + r.Period.StartDate()[:7] + "." + string(f)
}
