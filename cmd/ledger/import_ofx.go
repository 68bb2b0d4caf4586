package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"budgetledger/internal/logger"
	"budgetledger/internal/ofximport"
)

func (c *cli) importOFXCmd() *cobra.Command {
	var incomeCategory, expenseCategory int64

	cmd := &cobra.Command{
		Use:   "import-ofx <file>",
		Short: "Import a bank or credit-card statement in OFX/QFX format",
		Long: `Each statement line becomes a transaction. Credits are filed under
--income-category and debits under --expense-category. The statement's
transaction id is kept in the notes as ofx:<FITID>, and lines whose id is
already in the ledger are skipped, so overlapping statements can be
imported safely. Lines the ledger rejects are skipped and counted.`,
		Args: cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open statement: %w", err)
			}
			defer f.Close()

			entries, err := ofximport.Parse(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("The statement has no transactions."))
				return nil
			}

			bar := progressbar.NewOptions(len(entries),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Importing...[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)

			result, err := ofximport.Import(cmd.Context(), a.transactions, entries, ofximport.Options{
				IncomeCategoryID:  incomeCategory,
				ExpenseCategoryID: expenseCategory,
				Progress: func() {
					if err := bar.Add(1); err != nil {
						logger.Get().Debugw("failed to update progress bar", "error", err)
					}
				},
			})
			if err != nil {
				return err
			}

			success(out, "Imported %d transactions", result.Imported)
			if result.Duplicates > 0 {
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d entries were already in the ledger", result.Duplicates)))
			}
			if result.Failed > 0 {
				fmt.Fprintln(out, expenseStyle.Render(fmt.Sprintf("%d entries were skipped; run with --log-level info for details", result.Failed)))
			}
			return nil
		}),
	}

	cmd.Flags().Int64Var(&incomeCategory, "income-category", 0, "category id for credits")
	cmd.Flags().Int64Var(&expenseCategory, "expense-category", 0, "category id for debits")
	_ = cmd.MarkFlagRequired("income-category")
	_ = cmd.MarkFlagRequired("expense-category")
	return cmd
}
