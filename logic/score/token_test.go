package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deces-backend/types"
)

func TestLevRatio(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.57, levRatio("kitten", "sitting", levenshteinDistance))
	assert.Equal(t, 0.57, levRatio("sitting", "kitten", levenshteinDistance))
	assert.Equal(t, 1.0, levRatio("dupont", "dupont", levenshteinDistance))
	assert.Equal(t, 0.0, levRatio("", "dupont", levenshteinDistance))
	assert.Equal(t, 0.0, levRatio("dupont", "", levenshteinDistance))

	words := []string{"jean", "jeanne", "dupont", "martin", "x", "19500201", "paris"}
	for _, a := range words {
		assert.Equal(t, 1.0, levRatio(a, a, levenshteinDistance), a)
		for _, b := range words {
			r := levRatio(a, b, levenshteinDistance)
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 1.0)
		}
	}
}

func TestFuzzyRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"same after normalization", "Élise", "elise", 1},
		{"soundex match boosts", "Dupont", "Dupond", 0.88},
		{"soundex mismatch lowers", "martin", "bertin", 0.55},
		{"empty side", "", "martin", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fuzzyRatio(tt.a, tt.b, nil))
		})
	}

	t.Run("custom comparator skips soundex", func(t *testing.T) {
		half := func(a, b string) float64 { return 0.5 }
		assert.Equal(t, 0.5, fuzzyRatio("dupont", "dupond", half))
	})
}

func TestFuzzRatios(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100, ratio("abc", "abc"))
	assert.Equal(t, 0, ratio("", "abc"))
	assert.Equal(t, 62, ratio("kitten", "sitting"))
	assert.Equal(t, 100, tokenSortRatio("jean pierre", "pierre jean"))
	assert.Equal(t, 100, tokenSetRatio("charles de gaulle", "de gaulle"))
	assert.Equal(t, 0, tokenSetRatio("", "de gaulle"))
	assert.Equal(t, 1.0, mixSimilarity("jean paul", "paul jean"))
}

func TestScoreToken(t *testing.T) {
	t.Parallel()

	t.Run("blind when either side missing", func(t *testing.T) {
		assert.Equal(t, blindTokenScore, scoreToken(types.Scalar(""), types.Scalar("jean"), nil))
		assert.Equal(t, blindTokenScore, scoreToken(types.Scalar("jean"), types.Sequence(), nil))
	})

	t.Run("scalar against later sequence item is place-penalized", func(t *testing.T) {
		got := scoreToken(types.Scalar("jean"), types.Sequence("paul", "jean"), nil)
		assert.Equal(t, tokenPlacePenalty, got)
		assert.Equal(t, got, scoreToken(types.Sequence("paul", "jean"), types.Scalar("jean"), nil))
	})

	t.Run("scalar matching first item", func(t *testing.T) {
		assert.Equal(t, 1.0, scoreToken(types.Scalar("jean"), types.Sequence("jean", "paul"), nil))
	})

	t.Run("sequences positional", func(t *testing.T) {
		same := scoreToken(types.Sequence("jean", "pierre"), types.Sequence("jean", "pierre"), nil)
		assert.Equal(t, 1.0, same)

		lateError := scoreToken(types.Sequence("jean", "paul"), types.Sequence("jean", "pierre"), nil)
		earlyError := scoreToken(types.Sequence("paul", "jean"), types.Sequence("pierre", "jean"), nil)
		assert.Less(t, lateError, 1.0)
		assert.Less(t, earlyError, lateError)
	})
}
