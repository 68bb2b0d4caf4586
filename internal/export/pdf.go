package export

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"budgetledger/internal/models"
)

var (
	colorPrimary = &props.Color{Red: 39, Green: 174, Blue: 96}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 192, Green: 57, Blue: 43}
)

// RenderPDF lays out the report on A4 pages: header, totals, category
// breakdown and the transaction list.
func RenderPDF(r *Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Budget report "+r.Period.Label(), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(totalsRow(r))
	m.AddRows(line.NewRow(4))

	m.AddRows(sectionRow("Spending by category"))
	m.AddRows(breakdownHeaderRow())
	m.AddRows(breakdownRows(r)...)
	m.AddRows(line.NewRow(4))

	m.AddRows(sectionRow("Transactions"))
	m.AddRows(transactionHeaderRow())
	m.AddRows(transactionRows(r)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func headerRow(r *Report) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("Budget report", props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
		),
		col.New(4).Add(
			text.New(r.Period.Label(), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 2}),
			text.New(r.Period.StartDate()+" to "+r.Period.EndDate(), props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func totalsRow(r *Report) core.Row {
	cell := func(label string, value float64, c *props.Color) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Size: 8, Color: colorGray, Top: 1}),
			text.New(money(value), props.Text{Style: fontstyle.Bold, Size: 12, Color: c, Top: 6}),
		)
	}
	balanceColor := colorPrimary
	if r.Summary.Balance < 0 {
		balanceColor = colorRed
	}
	return row.New(14).Add(
		cell("Income", r.Summary.TotalIncome, colorPrimary),
		cell("Expenses", r.Summary.TotalExpenses, colorRed),
		cell("Balance", r.Summary.Balance, balanceColor),
	)
}

func sectionRow(title string) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(title, props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 1})),
	)
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 1}))
}

func cell(value string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1}))
}

func breakdownHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("Category", 5, align.Left),
		headerCell("Type", 2, align.Left),
		headerCell("Count", 1, align.Right),
		headerCell("Total", 2, align.Right),
		headerCell("%", 2, align.Right),
	)
}

func breakdownRows(r *Report) []core.Row {
	if len(r.Summary.CategoryBreakdown) == 0 {
		return []core.Row{row.New(6).Add(cell("No activity in this period", 12, align.Left))}
	}
	rows := make([]core.Row, 0, len(r.Summary.CategoryBreakdown))
	for _, b := range r.Summary.CategoryBreakdown {
		rows = append(rows, row.New(6).Add(
			cell(b.Category.Name, 5, align.Left),
			cell(string(b.Category.Type), 2, align.Left),
			cell(fmt.Sprint(b.TransactionCount), 1, align.Right),
			cell(money(b.Total), 2, align.Right),
			cell(fmt.Sprintf("%.2f%%", b.Percentage), 2, align.Right),
		))
	}
	return rows
}

func transactionHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("Date", 2, align.Left),
		headerCell("Category", 3, align.Left),
		headerCell("Description", 5, align.Left),
		headerCell("Amount", 2, align.Right),
	)
}

func transactionRows(r *Report) []core.Row {
	rows := make([]core.Row, 0, len(r.Transactions))
	for _, tx := range r.Transactions {
		category := ""
		if tx.Category != nil {
			category = tx.Category.Name
		}
		amount := money(tx.Amount)
		if tx.Type == models.TransactionTypeExpense {
			amount = "-" + amount
		}
		rows = append(rows, row.New(6).Add(
			cell(tx.Date, 2, align.Left),
			cell(category, 3, align.Left),
			cell(tx.Description, 5, align.Left),
			cell(amount, 2, align.Right),
		))
	}
	return rows
}
