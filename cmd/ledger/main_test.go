package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "budgetledger/internal/errors"
)

// execute runs the root command against dbPath and returns its output.
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--db-driver", "sqlite", "--db-path", dbPath}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	out, err := execute(t, dbPath, args...)
	require.NoError(t, err, "ledger %v", args)
	return out
}

func setupCLI(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AMQP_URL", "")
	return filepath.Join(t.TempDir(), "ledger.db")
}

func TestMonthlyFlow(t *testing.T) {
	db := setupCLI(t)

	mustExecute(t, db, "categories", "add", "Salary", "--type", "income")
	mustExecute(t, db, "categories", "add", "Food", "--type", "expense")

	mustExecute(t, db, "tx", "add", "-c", "1", "-a", "1000", "-d", "2024-03-01", "--description", "March salary")
	mustExecute(t, db, "tx", "add", "-c", "2", "-a", "200", "-d", "2024-03-10", "--description", "Groceries")
	mustExecute(t, db, "tx", "add", "-c", "2", "-a", "50", "-d", "2024-04-01", "--description", "Next month")

	out := mustExecute(t, db, "summary", "-m", "3", "-y", "2024")
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "200.00")
	assert.Contains(t, out, "800.00")
	assert.Contains(t, out, "83.33%")
	assert.Contains(t, out, "16.67%")
	assert.NotContains(t, out, "250.00")

	out = mustExecute(t, db, "tx", "list", "-m", "3", "-y", "2024")
	assert.Contains(t, out, "Groceries")
	assert.NotContains(t, out, "Next month")

	out = mustExecute(t, db, "export", "-m", "3", "-y", "2024", "-o", "-")
	assert.Contains(t, out, "date,type,category,description,amount,notes")
	assert.Contains(t, out, "2024-03-10,expense,Food,Groceries,200.00,")
}

func TestTransactionCommands(t *testing.T) {
	db := setupCLI(t)
	mustExecute(t, db, "categories", "add", "Food")

	t.Run("type defaults to the category type", func(t *testing.T) {
		out := mustExecute(t, db, "tx", "add", "-c", "1", "-a", "12.5", "-d", "2024-03-05")
		assert.Contains(t, out, "expense 12.50 on 2024-03-05")
	})

	t.Run("update changes only the given field", func(t *testing.T) {
		out := mustExecute(t, db, "tx", "update", "1", "-a", "20")
		assert.Contains(t, out, "expense 20.00 on 2024-03-05")
	})

	t.Run("search filters by amount", func(t *testing.T) {
		out := mustExecute(t, db, "tx", "search", "--min", "15")
		assert.Contains(t, out, "1 matches")

		out = mustExecute(t, db, "tx", "search", "--max", "15")
		assert.Contains(t, out, "No matching transactions")
	})

	t.Run("deleting a missing transaction is not an error", func(t *testing.T) {
		out := mustExecute(t, db, "tx", "delete", "99")
		assert.Contains(t, out, "nothing deleted")
	})

	t.Run("delete removes the row", func(t *testing.T) {
		out := mustExecute(t, db, "tx", "delete", "1")
		assert.Contains(t, out, "Deleted transaction 1")
	})
}

func TestCategoryCommands(t *testing.T) {
	db := setupCLI(t)

	out := mustExecute(t, db, "categories", "init")
	assert.Contains(t, out, "Created 13 default categories")

	out = mustExecute(t, db, "categories", "init")
	assert.Contains(t, out, "nothing to do")

	mustExecute(t, db, "categories", "update", "1", "--name", "Eating Out", "--clear-icon")
	out = mustExecute(t, db, "categories", "list")
	assert.Contains(t, out, "Eating Out")

	mustExecute(t, db, "categories", "delete", "1")
	mustExecute(t, db, "categories", "delete", "1")
	out = mustExecute(t, db, "categories", "list")
	assert.NotContains(t, out, "Eating Out")
}

func TestErrorsMapToExitCodes(t *testing.T) {
	db := setupCLI(t)

	_, err := execute(t, db, "summary", "-m", "13", "-y", "2024")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	_, err = execute(t, db, "summary", "-m", "0")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	_, err = execute(t, db, "tx", "update", "42", "-a", "5")
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))

	_, err = execute(t, db, "categories", "delete", "abc")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	_, err = execute(t, db, "export", "--format", "xlsx")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(apperrors.ErrInvalidAmount))
	assert.Equal(t, 3, exitCode(apperrors.ErrCategoryNotFound))
	assert.Equal(t, 1, exitCode(apperrors.Storage("transactions.list_in_period", context.Canceled)))
	assert.Equal(t, 1, exitCode(assert.AnError))
}

func TestMigrateVersion(t *testing.T) {
	db := setupCLI(t)

	mustExecute(t, db, "migrate", "up")
	out := mustExecute(t, db, "migrate", "version")
	assert.Contains(t, out, "(clean)")
	assert.NotContains(t, out, "version 0 ")
}
