// Package ofximport reads OFX/QFX bank and credit-card statements and
// records their entries as ledger transactions.
package ofximport

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"budgetledger/internal/logger"
	"budgetledger/internal/models"
	"budgetledger/internal/period"
	"budgetledger/internal/services"
)

// Entry is one statement line normalised for the ledger. Amount is
// always positive; the sign in the statement decides Type.
type Entry struct {
	FitID       string
	Date        string
	Amount      float64
	Type        models.TransactionType
	Description string
}

var severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)`)

// Parse reads every bank and credit-card statement in the document.
// Zero-amount lines are dropped.
func Parse(r io.Reader) ([]Entry, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ofximport: read: %w", err)
	}
	cleaned := strings.TrimLeft(string(content), " \t\r\n")
	cleaned = severityPattern.ReplaceAllStringFunc(cleaned, strings.ToUpper)

	resp, err := ofxgo.ParseResponse(strings.NewReader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("ofximport: parse: %w", err)
	}

	var entries []Entry
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			entries = appendEntries(entries, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			entries = appendEntries(entries, stmt.BankTranList.Transactions)
		}
	}
	return entries, nil
}

func appendEntries(entries []Entry, txs []ofxgo.Transaction) []Entry {
	for _, tx := range txs {
		amount, _ := tx.TrnAmt.Float64()
		if amount == 0 {
			continue
		}
		// The calendar date is the one in the bank's own offset.
		entry := Entry{
			FitID:       string(tx.FiTID),
			Date:        tx.DtPosted.Time.Format(period.DateLayout),
			Amount:      amount,
			Type:        models.TransactionTypeIncome,
			Description: description(tx),
		}
		if amount < 0 {
			entry.Amount = -amount
			entry.Type = models.TransactionTypeExpense
		}
		entries = append(entries, entry)
	}
	return entries
}

func description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(tx.Memo))
}

// Options selects the categories imported entries are filed under.
type Options struct {
	IncomeCategoryID  int64
	ExpenseCategoryID int64
	// Progress, when set, is called once per processed entry.
	Progress func()
}

// Result counts what an import did.
type Result struct {
	Imported   int
	Duplicates int
	Failed     int
}

// notesFor is the marker stored on every imported transaction.
func notesFor(fitID string) string { return "ofx:" + fitID }

// Import creates a transaction per entry through the regular create path.
// Entries whose FITID was imported before, or repeats within the batch,
// are skipped and counted as duplicates. A rejected entry is logged and
// counted; the import carries on. Context cancellation stops it.
func Import(ctx context.Context, svc services.TransactionServicer, entries []Entry, opts Options) (Result, error) {
	var result Result
	if err := ctx.Err(); err != nil {
		return result, err
	}

	markers := make([]string, 0, len(entries))
	for _, e := range entries {
		markers = append(markers, notesFor(e.FitID))
	}
	seen, err := svc.ExistingNotes(ctx, markers)
	if err != nil {
		return result, err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		notes := notesFor(e.FitID)
		if seen[notes] {
			logger.Get().Debugw("skipping already imported ofx entry", "fitid", e.FitID)
			result.Duplicates++
			if opts.Progress != nil {
				opts.Progress()
			}
			continue
		}

		categoryID := opts.ExpenseCategoryID
		if e.Type == models.TransactionTypeIncome {
			categoryID = opts.IncomeCategoryID
		}
		_, err := svc.CreateTransaction(ctx, services.CreateTransactionInput{
			CategoryID:  categoryID,
			Amount:      e.Amount,
			Type:        e.Type,
			Description: e.Description,
			Date:        e.Date,
			Notes:       &notes,
		})
		if err != nil {
			logger.Get().Warnw("skipping ofx entry", "fitid", e.FitID, "error", err)
			result.Failed++
		} else {
			seen[notes] = true
			result.Imported++
		}
		if opts.Progress != nil {
			opts.Progress()
		}
	}
	return result, nil
}
