package services

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetledger/internal/models"
	"budgetledger/internal/period"
)

var (
	hundred     = decimal.NewFromInt(100)
	ledgerTypes = []string{string(models.TransactionTypeIncome), string(models.TransactionTypeExpense)}
)

// summaryService computes period aggregates with hand-composed SQL.
type summaryService struct {
	db *gorm.DB
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB) SummaryServicer {
	return &summaryService{db: db}
}

// typeTotal is one row of the per-type totals query.
type typeTotal struct {
	Type  string  `db:"type"`
	Total float64 `db:"total"`
}

// categoryTotal is one row of the per-category breakdown query.
type categoryTotal struct {
	ID               int64          `db:"id"`
	Name             string         `db:"name"`
	Type             string         `db:"type"`
	Color            string         `db:"color"`
	Icon             sql.NullString `db:"icon"`
	ParentID         sql.NullInt64  `db:"parent_id"`
	IsActive         bool           `db:"is_active"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	Total            float64        `db:"total"`
	TransactionCount int64          `db:"transaction_count"`
}

// monthTypeTotal is one row of the yearly query.
type monthTypeTotal struct {
	Month string  `db:"month"`
	Type  string  `db:"type"`
	Total float64 `db:"total"`
}

func (s *summaryService) conn() (*sqlx.DB, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, s.db.Dialector.Name()), nil
}

// snapshotOptions makes both summary reads observe one snapshot.
func (s *summaryService) snapshotOptions() *sql.TxOptions {
	if s.db.Dialector.Name() == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

func inPeriod(column string, p period.Period) sq.And {
	return sq.And{
		sq.GtOrEq{column: p.StartDate()},
		sq.Lt{column: p.EndDate()},
	}
}

func totalsQuery(p period.Period) sq.SelectBuilder {
	return sq.Select("type", "SUM(amount) AS total").
		From("transactions").
		Where(inPeriod("date", p)).
		GroupBy("type")
}

// breakdownQuery groups by category only. Unknown transaction types are
// filtered here too so that they appear nowhere in the summary.
func breakdownQuery(p period.Period) sq.SelectBuilder {
	return sq.Select(
		"c.id", "c.name", "c.type", "c.color", "c.icon", "c.parent_id",
		"c.is_active", "c.created_at", "c.updated_at",
		"SUM(t.amount) AS total", "COUNT(t.id) AS transaction_count",
	).
		From("transactions t").
		Join("categories c ON c.id = t.category_id").
		Where(inPeriod("t.date", p)).
		Where(sq.Eq{"t.type": ledgerTypes}).
		GroupBy("c.id").
		OrderBy("total DESC", "c.id ASC")
}

// Summarize computes income, expenses, balance and the per-category
// breakdown for p. Both reads share one transaction.
func (s *summaryService) Summarize(ctx context.Context, p period.Period) (*BudgetSummary, error) {
	var summary *BudgetSummary
	err := s.snapshot(ctx, func(tx *sqlx.Tx) error {
		var err error
		summary, err = readSummary(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Statement returns the summary for p and the period's transactions,
// newest date first, all read inside the same transaction.
func (s *summaryService) Statement(ctx context.Context, p period.Period) (*PeriodStatement, error) {
	statement := &PeriodStatement{}
	err := s.snapshot(ctx, func(tx *sqlx.Tx) error {
		var err error
		if statement.Summary, err = readSummary(ctx, tx, p); err != nil {
			return err
		}
		statement.Transactions, err = readTransactions(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// snapshot runs fn in a read transaction. Errors from fn are expected to
// be StorageErrors already.
func (s *summaryService) snapshot(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	db, err := s.conn()
	if err != nil {
		return storageErr("summary.connect", err)
	}

	tx, err := db.BeginTxx(ctx, s.snapshotOptions())
	if err != nil {
		return storageErr("summary.begin", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("summary.commit", err)
	}
	return nil
}

func readSummary(ctx context.Context, tx *sqlx.Tx, p period.Period) (*BudgetSummary, error) {
	query, args, err := totalsQuery(p).ToSql()
	if err != nil {
		return nil, storageErr("summary.totals", err)
	}
	var totals []typeTotal
	if err := tx.SelectContext(ctx, &totals, tx.Rebind(query), args...); err != nil {
		return nil, storageErr("summary.totals", err)
	}

	query, args, err = breakdownQuery(p).ToSql()
	if err != nil {
		return nil, storageErr("summary.breakdown", err)
	}
	var groups []categoryTotal
	if err := tx.SelectContext(ctx, &groups, tx.Rebind(query), args...); err != nil {
		return nil, storageErr("summary.breakdown", err)
	}

	return buildSummary(p, totals, groups), nil
}

// transactionRow is a transaction joined with its category, which may
// be missing for rows whose category was removed outside the ledger.
type transactionRow struct {
	ID          int64          `db:"id"`
	CategoryID  int64          `db:"category_id"`
	Amount      float64        `db:"amount"`
	Type        string         `db:"type"`
	Description string         `db:"description"`
	Date        string         `db:"date"`
	Notes       sql.NullString `db:"notes"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`

	CatID        sql.NullInt64  `db:"cat_id"`
	CatName      sql.NullString `db:"cat_name"`
	CatType      sql.NullString `db:"cat_type"`
	CatColor     sql.NullString `db:"cat_color"`
	CatIcon      sql.NullString `db:"cat_icon"`
	CatParentID  sql.NullInt64  `db:"cat_parent_id"`
	CatIsActive  sql.NullBool   `db:"cat_is_active"`
	CatCreatedAt sql.NullTime   `db:"cat_created_at"`
	CatUpdatedAt sql.NullTime   `db:"cat_updated_at"`
}

func transactionsQuery(p period.Period) sq.SelectBuilder {
	return sq.Select(
		"t.id", "t.category_id", "t.amount", "t.type", "t.description", "t.date",
		"t.notes", "t.created_at", "t.updated_at",
		"c.id AS cat_id", "c.name AS cat_name", "c.type AS cat_type", "c.color AS cat_color",
		"c.icon AS cat_icon", "c.parent_id AS cat_parent_id", "c.is_active AS cat_is_active",
		"c.created_at AS cat_created_at", "c.updated_at AS cat_updated_at",
	).
		From("transactions t").
		LeftJoin("categories c ON c.id = t.category_id").
		Where(inPeriod("t.date", p)).
		OrderBy("t.date DESC", "t.id ASC")
}

func readTransactions(ctx context.Context, tx *sqlx.Tx, p period.Period) ([]models.Transaction, error) {
	query, args, err := transactionsQuery(p).ToSql()
	if err != nil {
		return nil, storageErr("summary.transactions", err)
	}
	var rows []transactionRow
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), args...); err != nil {
		return nil, storageErr("summary.transactions", err)
	}

	transactions := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		t := models.Transaction{
			Base:        models.Base{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
			CategoryID:  row.CategoryID,
			Amount:      row.Amount,
			Type:        models.TransactionType(row.Type),
			Description: row.Description,
			Date:        row.Date,
		}
		if row.Notes.Valid {
			notes := row.Notes.String
			t.Notes = &notes
		}
		if row.CatID.Valid {
			category := &models.Category{
				Base:     models.Base{ID: row.CatID.Int64, CreatedAt: row.CatCreatedAt.Time, UpdatedAt: row.CatUpdatedAt.Time},
				Name:     row.CatName.String,
				Type:     models.CategoryType(row.CatType.String),
				Color:    row.CatColor.String,
				IsActive: row.CatIsActive.Bool,
			}
			if row.CatIcon.Valid {
				icon := row.CatIcon.String
				category.Icon = &icon
			}
			if row.CatParentID.Valid {
				parent := row.CatParentID.Int64
				category.ParentID = &parent
			}
			t.Category = category
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

// buildSummary reduces the query rows into a BudgetSummary. Totals of
// unknown types are dropped; percentages are shares of income plus
// expenses, rounded to two places, and zero when nothing was recorded.
func buildSummary(p period.Period, totals []typeTotal, groups []categoryTotal) *BudgetSummary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, row := range totals {
		switch models.TransactionType(row.Type) {
		case models.TransactionTypeIncome:
			income = income.Add(decimal.NewFromFloat(row.Total))
		case models.TransactionTypeExpense:
			expenses = expenses.Add(decimal.NewFromFloat(row.Total))
		}
	}
	grand := income.Add(expenses)

	breakdown := make([]CategoryBreakdown, 0, len(groups))
	for _, g := range groups {
		total := decimal.NewFromFloat(g.Total)
		pct := decimal.Zero
		if grand.IsPositive() {
			pct = total.Div(grand).Mul(hundred).Round(2)
		}

		category := models.Category{
			Base:     models.Base{ID: g.ID, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt},
			Name:     g.Name,
			Type:     models.CategoryType(g.Type),
			Color:    g.Color,
			IsActive: g.IsActive,
		}
		if g.Icon.Valid {
			icon := g.Icon.String
			category.Icon = &icon
		}
		if g.ParentID.Valid {
			parent := g.ParentID.Int64
			category.ParentID = &parent
		}

		breakdown = append(breakdown, CategoryBreakdown{
			Category:         category,
			Total:            total.Round(2).InexactFloat64(),
			TransactionCount: g.TransactionCount,
			Percentage:       pct.InexactFloat64(),
		})
	}

	return &BudgetSummary{
		PeriodStart:       p.StartDate(),
		PeriodEnd:         p.EndDate(),
		TotalIncome:       income.Round(2).InexactFloat64(),
		TotalExpenses:     expenses.Round(2).InexactFloat64(),
		Balance:           income.Sub(expenses).Round(2).InexactFloat64(),
		CategoryBreakdown: breakdown,
	}
}

// SummarizeYear computes a month-by-month overview of year.
func (s *summaryService) SummarizeYear(ctx context.Context, year int) (*YearlySummary, error) {
	db, err := s.conn()
	if err != nil {
		return nil, storageErr("summary.connect", err)
	}

	monthExpr := "SUBSTR(date, 6, 2)"
	query, args, err := sq.Select(monthExpr+" AS month", "type", "SUM(amount) AS total").
		From("transactions").
		Where(inPeriod("date", period.ResolveYear(year))).
		Where(sq.Eq{"type": ledgerTypes}).
		GroupBy(monthExpr, "type").
		ToSql()
	if err != nil {
		return nil, storageErr("summary.yearly", err)
	}

	var rows []monthTypeTotal
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, storageErr("summary.yearly", err)
	}
	return buildYearlySummary(year, rows), nil
}

// buildYearlySummary folds month/type rows into twelve months and
// derives the savings figures. Best and worst months only consider
// months with activity; the streak counts consecutive positive months
// ending at the last active month.
func buildYearlySummary(year int, rows []monthTypeTotal) *YearlySummary {
	var income, expenses [13]decimal.Decimal
	for _, row := range rows {
		month, err := strconv.Atoi(row.Month)
		if err != nil || month < 1 || month > 12 {
			continue
		}
		switch models.TransactionType(row.Type) {
		case models.TransactionTypeIncome:
			income[month] = income[month].Add(decimal.NewFromFloat(row.Total))
		case models.TransactionTypeExpense:
			expenses[month] = expenses[month].Add(decimal.NewFromFloat(row.Total))
		}
	}

	summary := &YearlySummary{Year: year, Months: make([]MonthlyTotals, 0, 12)}
	totalIncome, totalExpenses := decimal.Zero, decimal.Zero
	var best, worst *decimal.Decimal
	lastActive := 0

	for m := 1; m <= 12; m++ {
		net := income[m].Sub(expenses[m])
		summary.Months = append(summary.Months, MonthlyTotals{
			Month:    m,
			Income:   income[m].Round(2).InexactFloat64(),
			Expenses: expenses[m].Round(2).InexactFloat64(),
			Net:      net.Round(2).InexactFloat64(),
		})
		totalIncome = totalIncome.Add(income[m])
		totalExpenses = totalExpenses.Add(expenses[m])

		if income[m].IsZero() && expenses[m].IsZero() {
			continue
		}
		lastActive = m
		if best == nil || net.GreaterThan(*best) {
			n, month := net, m
			best, summary.BestMonth = &n, &month
		}
		if worst == nil || net.LessThan(*worst) {
			n, month := net, m
			worst, summary.WorstMonth = &n, &month
		}
	}

	for m := lastActive; m >= 1; m-- {
		if !income[m].Sub(expenses[m]).IsPositive() {
			break
		}
		summary.SavingsStreak++
	}

	summary.TotalIncome = totalIncome.Round(2).InexactFloat64()
	summary.TotalExpenses = totalExpenses.Round(2).InexactFloat64()
	summary.Balance = totalIncome.Sub(totalExpenses).Round(2).InexactFloat64()
	if totalIncome.IsPositive() {
		summary.SavingsRate = totalIncome.Sub(totalExpenses).Div(totalIncome).Mul(hundred).Round(2).InexactFloat64()
	}
	return summary
}
