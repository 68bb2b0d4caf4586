package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/export"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		month, year int
		format      string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a month's transactions and summary as CSV or PDF",
		Example: `  ledger export -m 3 -y 2024
  ledger export --format pdf --output march.pdf
  ledger export --output - | less`,
		Args: cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, a *app) error {
			f := export.Format(format)
			if !f.Valid() {
				return apperrors.WithMessage(apperrors.ErrInvalidArgument, fmt.Sprintf("unsupported format %q", format))
			}
			p, err := periodFromFlags(cmd, month, year)
			if err != nil {
				return err
			}

			report, err := export.Build(cmd.Context(), a.summaries, p)
			if err != nil {
				return err
			}

			var data []byte
			switch f {
			case export.FormatPDF:
				data, err = export.RenderPDF(report)
			default:
				var buf bytes.Buffer
				err = export.WriteCSV(&buf, report.Transactions)
				data = buf.Bytes()
			}
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = report.Filename(f)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			success(cmd.OutOrStdout(), "Wrote %d transactions to %s", len(report.Transactions), output)
			return nil
		}),
	}

	addPeriodFlags(cmd, &month, &year)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default ledger-YYYY-MM.<format>)")
	return cmd
}
