package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		candidate string
		foreign   bool
		want      float64
	}{
		{"exact", "01/02/1950", "19500201", false, 1},
		{"one day off", "01/02/1950", "19500202", false, 0.68},
		{"two digits off", "01/02/1950", "19500222", false, 0.42},
		{"far away", "01/02/1950", "19611222", false, 0.05},
		{"compact query", "19500201", "19500201", false, 1},
		{"unknown candidate", "01/02/1950", "00000000", false, 0.51},
		{"missing candidate", "01/02/1950", "", false, 0.51},
		{"unknown query day and month", "00/00/1950", "19500615", false, 0.34},
		{"unknown candidate day and month", "01/02/1950", "19500000", false, 0.34},
		{"range contains candidate", "01/01/1950-31/12/1950", "19500615", false, 0.34},
		{"range misses candidate", "01/01/1950-31/12/1950", "19600101", false, 0.01},
		{"degenerate range", "01/02/1950-01/02/1950", "19500201", false, 1},
		{"foreign first of january", "01/01/1950", "19500101", true, 0.34},
		{"french first of january", "01/01/1950", "19500101", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoreDate(tt.query, tt.candidate, "", tt.foreign)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("decreasing with divergence", func(t *testing.T) {
		prev := 1.1
		for _, c := range []string{"19500201", "19500202", "19500222", "19611222"} {
			got, err := scoreDate("01/02/1950", c, "", false)
			require.NoError(t, err)
			assert.Less(t, got, prev, c)
			prev = got
		}
	})

	t.Run("custom date format", func(t *testing.T) {
		got, err := scoreDate("1950-02-01", "19500201", "YYYY-MM-DD", false)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)

		got, err = scoreDate("01.01.1950-31.12.1950", "19500615", "DD.MM.YYYY", false)
		require.NoError(t, err)
		assert.Equal(t, 0.34, got)
	})

	t.Run("unparseable with format", func(t *testing.T) {
		_, err := scoreDate("31/02/1950", "19500201", "DD/MM/YYYY", false)
		assert.Error(t, err)
		_, err = scoreDate("01/02/1950", "19500201", "dd/mm/yyyy", false)
		assert.Error(t, err)
	})
}
