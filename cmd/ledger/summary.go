package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"budgetledger/internal/services"
)

func (c *cli) summaryCmd() *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and the category breakdown for a month",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := periodFromFlags(cmd, month, year)
			if err != nil {
				return err
			}
			summary, err := a.summaries.Summarize(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(p.Label()))
			fmt.Fprintf(out, "  Income:   %s\n", incomeStyle.Render(money(summary.TotalIncome)))
			fmt.Fprintf(out, "  Expenses: %s\n", expenseStyle.Render(money(summary.TotalExpenses)))
			fmt.Fprintf(out, "  Balance:  %s\n\n", balance(summary.Balance))

			if len(summary.CategoryBreakdown) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No transactions in this period."))
				return nil
			}
			printBreakdown(cmd, summary.CategoryBreakdown)
			return nil
		}),
	}
	addPeriodFlags(cmd, &month, &year)
	return cmd
}

func printBreakdown(cmd *cobra.Command, rows []services.CategoryBreakdown) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("Category"),
		headerStyle.Render("Count"),
		headerStyle.Render("Total"),
		headerStyle.Render("Share"))
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%6.2f%%\n",
			row.Category.Name,
			row.TransactionCount,
			money(row.Total),
			row.Percentage)
	}
}

func (c *cli) yearlyCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "yearly",
		Short: "Show a month-by-month overview of a year",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, a *app) error {
			if !cmd.Flags().Changed("year") {
				year = time.Now().Year()
			}
			summary, err := a.summaries.SummarizeYear(cmd.Context(), year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprint(summary.Year)))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("Month"),
				headerStyle.Render("Income"),
				headerStyle.Render("Expenses"),
				headerStyle.Render("Net"))
			for _, m := range summary.Months {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					time.Month(m.Month).String()[:3],
					money(m.Income),
					money(m.Expenses),
					balance(m.Net))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 5), strings.Repeat("-", 8), strings.Repeat("-", 8), strings.Repeat("-", 8))
			fmt.Fprintf(w, "Total\t%s\t%s\t%s\n",
				money(summary.TotalIncome), money(summary.TotalExpenses), balance(summary.Balance))
			w.Flush()

			fmt.Fprintf(out, "\n  Savings rate:   %.2f%%\n", summary.SavingsRate)
			if summary.BestMonth != nil {
				fmt.Fprintf(out, "  Best month:     %s\n", time.Month(*summary.BestMonth))
			}
			if summary.WorstMonth != nil {
				fmt.Fprintf(out, "  Worst month:    %s\n", time.Month(*summary.WorstMonth))
			}
			fmt.Fprintf(out, "  Savings streak: %d\n", summary.SavingsStreak)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "year (default current)")
	return cmd
}
