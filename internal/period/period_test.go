package period

import (
	"testing"
	"time"

	apperrors "budgetledger/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("every_month_starts_on_first_and_ends_on_next_first", func(t *testing.T) {
		for _, year := range []int{1999, 2023, 2024, 2100} {
			for month := 1; month <= 12; month++ {
				p, err := Resolve(month, year)
				require.NoError(t, err)

				assert.True(t, p.Start.Before(p.End), "%d-%d", year, month)
				assert.Equal(t, 1, p.Start.Day())
				assert.Equal(t, time.Month(month), p.Start.Month())
				assert.Equal(t, year, p.Start.Year())
				assert.Equal(t, 1, p.End.Day())
				assert.Equal(t, p.Start.AddDate(0, 1, 0), p.End)
			}
		}
	})

	t.Run("december_rolls_into_next_year", func(t *testing.T) {
		p, err := Resolve(12, 2024)
		require.NoError(t, err)
		assert.Equal(t, "2024-12-01", p.StartDate())
		assert.Equal(t, "2025-01-01", p.EndDate())
	})

	t.Run("leap_february", func(t *testing.T) {
		p, err := Resolve(2, 2024)
		require.NoError(t, err)
		assert.True(t, p.Contains("2024-02-29"))
		assert.False(t, p.Contains("2024-03-01"))
	})

	t.Run("month_out_of_range", func(t *testing.T) {
		for _, month := range []int{0, -1, 13, 100} {
			_, err := Resolve(month, 2024)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidPeriod)
			assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
		}
	})
}

func TestPeriodContainsIsHalfOpen(t *testing.T) {
	p, err := Resolve(3, 2024)
	require.NoError(t, err)

	assert.True(t, p.Contains("2024-03-01"))
	assert.True(t, p.Contains("2024-03-31"))
	assert.False(t, p.Contains("2024-04-01"))
	assert.False(t, p.Contains("2024-02-29"))
}

func TestResolveYear(t *testing.T) {
	p := ResolveYear(2024)
	assert.Equal(t, "2024-01-01", p.StartDate())
	assert.Equal(t, "2025-01-01", p.EndDate())
	assert.Equal(t, "2024", p.Label())

	month, err := Resolve(3, 2024)
	require.NoError(t, err)
	assert.Equal(t, "March 2024", month.Label())
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-03-05")
	assert.NoError(t, err)

	for _, bad := range []string{"", "2024-3-5", "05/03/2024", "2024-02-30", "2024-03-05T00:00:00Z"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDate, bad)
	}
}
