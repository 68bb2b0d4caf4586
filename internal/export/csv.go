package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"budgetledger/internal/models"
)

var csvHeader = []string{"date", "type", "category", "description", "amount", "notes"}

// textCell neutralises values a spreadsheet would evaluate as a formula.
func textCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

// WriteCSV writes one row per transaction in the order given.
func WriteCSV(w io.Writer, transactions []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range transactions {
		category := ""
		if tx.Category != nil {
			category = tx.Category.Name
		}
		notes := ""
		if tx.Notes != nil {
			notes = *tx.Notes
		}
		record := []string{
			tx.Date,
			string(tx.Type),
			textCell(category),
			textCell(tx.Description),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			textCell(notes),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
