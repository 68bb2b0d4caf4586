package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"budgetledger/internal/models"
	"budgetledger/internal/pagination"
	"budgetledger/internal/patch"
	"budgetledger/internal/period"
	"budgetledger/internal/services"
)

func (c *cli) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and browse transactions",
	}

	cmd.AddCommand(c.listTransactionsCmd())
	cmd.AddCommand(c.addTransactionCmd())
	cmd.AddCommand(c.updateTransactionCmd())
	cmd.AddCommand(c.deleteTransactionCmd())
	cmd.AddCommand(c.searchTransactionsCmd())

	return cmd
}

// printTransactions writes txs as an aligned table.
func printTransactions(out io.Writer, txs []models.Transaction) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Date"),
		headerStyle.Render("Category"),
		headerStyle.Render("Description"),
		headerStyle.Render("Amount"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 4), strings.Repeat("-", 10), strings.Repeat("-", 16),
		strings.Repeat("-", 24), strings.Repeat("-", 10))

	for _, tx := range txs {
		category := mutedStyle.Render(fmt.Sprintf("#%d", tx.CategoryID))
		if tx.Category != nil {
			category = tx.Category.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", tx.ID, tx.Date, category, tx.Description, signed(tx.Type, tx.Amount))
	}
}

func (c *cli) listTransactionsCmd() *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a month's transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := periodFromFlags(cmd, month, year)
			if err != nil {
				return err
			}
			txs, err := a.transactions.ListTransactionsInPeriod(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(p.Label()))
			if len(txs) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No transactions in this period."))
				return nil
			}
			printTransactions(out, txs)
			return nil
		}),
	}
	addPeriodFlags(cmd, &month, &year)
	return cmd
}

func (c *cli) addTransactionCmd() *cobra.Command {
	var (
		categoryID  int64
		amount      float64
		txType      string
		date        string
		description string
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a transaction against an active category. The type defaults
to the category's type and the date defaults to today.`,
		Example: `  ledger tx add --category 3 --amount 12.50 --description "Lunch"
  ledger tx add -c 10 -a 1000 -d 2024-03-01 --description "March salary"`,
		Args: cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()

			in := services.CreateTransactionInput{
				CategoryID:  categoryID,
				Amount:      amount,
				Type:        models.TransactionType(txType),
				Description: description,
				Date:        date,
			}
			if in.Date == "" {
				in.Date = time.Now().Format(period.DateLayout)
			}
			if in.Type == "" {
				category, err := a.categories.GetCategoryByID(ctx, categoryID)
				if err != nil {
					return err
				}
				in.Type = models.TransactionType(category.Type)
			}
			if cmd.Flags().Changed("notes") {
				in.Notes = &notes
			}

			tx, err := a.transactions.CreateTransaction(ctx, in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Recorded %s %s on %s (id %d)", tx.Type, money(tx.Amount), tx.Date, tx.ID)
			return nil
		}),
	}

	cmd.Flags().Int64VarP(&categoryID, "category", "c", 0, "category id")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "amount, greater than zero")
	cmd.Flags().StringVarP(&txType, "type", "t", "", "income or expense (default: the category's type)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) updateTransactionCmd() *cobra.Command {
	var (
		categoryID  int64
		amount      float64
		txType      string
		date        string
		description string
		notes       string
		clearNotes  bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change selected fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var in services.UpdateTransactionInput
			if flags.Changed("category") {
				in.CategoryID = patch.Some(categoryID)
			}
			if flags.Changed("amount") {
				in.Amount = patch.Some(amount)
			}
			if flags.Changed("type") {
				in.Type = patch.Some(models.TransactionType(txType))
			}
			if flags.Changed("date") {
				in.Date = patch.Some(date)
			}
			if flags.Changed("description") {
				in.Description = patch.Some(description)
			}
			switch {
			case clearNotes:
				in.Notes = patch.Field[*string]{Set: true}
			case flags.Changed("notes"):
				in.Notes = patch.Some(&notes)
			}

			tx, err := a.transactions.UpdateTransaction(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Updated transaction %d: %s %s on %s", tx.ID, tx.Type, money(tx.Amount), tx.Date)
			return nil
		}),
	}

	cmd.Flags().Int64VarP(&categoryID, "category", "c", 0, "category id")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "amount, greater than zero")
	cmd.Flags().StringVarP(&txType, "type", "t", "", "income or expense")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&clearNotes, "clear-notes", false, "remove the notes")
	cmd.MarkFlagsMutuallyExclusive("notes", "clear-notes")
	return cmd
}

func (c *cli) deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently remove a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			affected, err := a.transactions.DeleteTransaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			if affected == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("No transaction with id %d; nothing deleted.", id)))
				return nil
			}
			success(cmd.OutOrStdout(), "Deleted transaction %d", id)
			return nil
		}),
	}
}

func (c *cli) searchTransactionsCmd() *cobra.Command {
	var (
		filter    services.TransactionFilter
		txType    string
		minAmount float64
		maxAmount float64
		page      pagination.PageRequest
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search transactions across any date range",
		Example: `  ledger tx search --from 2024-01-01 --to 2024-03-31 --type expense
  ledger tx search -q coffee --category 3 --category 4`,
		Args: cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, a *app) error {
			flags := cmd.Flags()
			if flags.Changed("type") {
				t := models.TransactionType(txType)
				filter.Type = &t
			}
			if flags.Changed("min") {
				filter.MinAmount = &minAmount
			}
			if flags.Changed("max") {
				filter.MaxAmount = &maxAmount
			}

			result, err := a.transactions.SearchTransactions(cmd.Context(), filter, page)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.TotalItems == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No matching transactions."))
				return nil
			}
			printTransactions(out, result.Data)
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d matches",
				result.Page, result.TotalPages, result.TotalItems)))
			return nil
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.FromDate, "from", "", "first date, inclusive")
	flags.StringVar(&filter.ToDate, "to", "", "last date, inclusive")
	flags.StringVarP(&txType, "type", "t", "", "income or expense")
	flags.Int64SliceVarP(&filter.CategoryIDs, "category", "c", nil, "category id (repeatable)")
	flags.StringVarP(&filter.Search, "query", "q", "", "text to find in descriptions")
	flags.Float64Var(&minAmount, "min", 0, "minimum amount")
	flags.Float64Var(&maxAmount, "max", 0, "maximum amount")
	flags.IntVar(&page.Page, "page", 1, "page number")
	flags.IntVar(&page.PageSize, "page-size", pagination.DefaultPageSize, "rows per page")
	return cmd
}
