package patch

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transactionInput struct {
	Amount      Field[float64] `json:"amount"`
	Description Field[string]  `json:"description"`
	Notes       Field[*string] `json:"notes"`
}

func TestFieldUnmarshal(t *testing.T) {
	t.Run("absent_fields_stay_unset", func(t *testing.T) {
		var in transactionInput
		require.NoError(t, json.Unmarshal([]byte(`{"amount": 12.5}`), &in))

		assert.True(t, in.Amount.Set)
		assert.Equal(t, 12.5, in.Amount.Value)
		assert.False(t, in.Description.Set)
		assert.False(t, in.Notes.Set)
	})

	t.Run("explicit_null_is_supplied", func(t *testing.T) {
		var in transactionInput
		require.NoError(t, json.Unmarshal([]byte(`{"notes": null}`), &in))

		assert.True(t, in.Notes.Set)
		assert.Nil(t, in.Notes.Value)
	})

	t.Run("wrong_type_is_rejected", func(t *testing.T) {
		var in transactionInput
		assert.Error(t, json.Unmarshal([]byte(`{"amount": "ten"}`), &in))
	})
}

func TestSetCollectsOnlySuppliedColumns(t *testing.T) {
	note := "paid in cash"
	s := NewSet()
	Apply(s, "amount", Some(42.0))
	Apply(s, "description", Field[string]{})
	ApplyNullable(s, "notes", Some(&note))

	assert.Equal(t, []string{"amount", "notes"}, s.Columns())
	v, ok := s.Value("notes")
	require.True(t, ok)
	assert.Equal(t, "paid in cash", v)

	ApplyNullable(s, "notes", Field[*string]{Set: true})
	v, _ = s.Value("notes")
	assert.Nil(t, v)
	assert.Len(t, s.Columns(), 2)
}

func TestUpdate(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("empty_set_is_refused", func(t *testing.T) {
		_, _, err := NewSet().Update("transactions", 1, now, sq.Question)
		assert.Error(t, err)
	})

	t.Run("refreshes_updated_at_and_filters_by_id", func(t *testing.T) {
		s := NewSet()
		s.Add("amount", 99.5)
		s.Add(UpdatedAtColumn, "ignored")

		query, args, err := s.Update("transactions", 7, now, sq.Question)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE transactions SET amount = ?, updated_at = ? WHERE id = ?", query)
		assert.Equal(t, []any{99.5, now, int64(7)}, args)
	})

	t.Run("dollar_placeholders", func(t *testing.T) {
		s := NewSet()
		s.Add("description", "x")
		query, _, err := s.Update("transactions", 1, now, sq.Dollar)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE transactions SET description = $1, updated_at = $2 WHERE id = $3", query)
	})
}

func TestUpdateBindsHostileTextAsParameter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hostile := `"); DROP TABLE transactions; --`
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	s := NewSet()
	Apply(s, "description", Some(hostile))
	query, args, err := s.Update("transactions", 3, now, sq.Dollar)
	require.NoError(t, err)
	assert.NotContains(t, query, "DROP")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET description = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(hostile, now, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
