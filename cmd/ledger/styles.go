package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/models"
	"budgetledger/internal/period"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// signed renders an amount coloured by direction.
func signed(t models.TransactionType, amount float64) string {
	if t == models.TransactionTypeIncome {
		return incomeStyle.Render("+" + money(amount))
	}
	return expenseStyle.Render("-" + money(amount))
}

func balance(v float64) string {
	if v < 0 {
		return expenseStyle.Render(money(v))
	}
	return incomeStyle.Render(money(v))
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidArgument, fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

// addPeriodFlags registers --month and --year on cmd.
func addPeriodFlags(cmd *cobra.Command, month, year *int) {
	cmd.Flags().IntVarP(month, "month", "m", 0, "month 1-12 (default current)")
	cmd.Flags().IntVarP(year, "year", "y", 0, "year (default current)")
}

// periodFromFlags resolves --month/--year. Flags left unset take the
// current month and year.
func periodFromFlags(cmd *cobra.Command, month, year int) (period.Period, error) {
	today := time.Now()
	if !cmd.Flags().Changed("month") {
		month = int(today.Month())
	}
	if !cmd.Flags().Changed("year") {
		year = today.Year()
	}
	return period.Resolve(month, year)
}
