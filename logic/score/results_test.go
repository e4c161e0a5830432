package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deces-backend/types"
)

func candidate(id, sex, first, last, birthDate string, loc types.Location) types.Person {
	return types.Person{
		ID:    id,
		Score: 10,
		Sex:   sex,
		Name:  name(first, last),
		Birth: types.Birth{Date: birthDate, Location: loc},
	}
}

func scored(id, sex string, score float64, nameScore *float64) types.Person {
	p := types.Person{ID: id, Sex: sex, Score: score, Scores: &types.ScoreResult{Score: types.Float(score)}}
	if nameScore != nil {
		p.Scores.Name = &types.NameScore{Score: *nameScore}
	}
	return p
}

func ids(persons []types.Person) []string {
	out := make([]string, len(persons))
	for i, p := range persons {
		out[i] = p.ID
	}
	return out
}

func TestReduceLeaves(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, reduceLeaves(nil, true))
	assert.Equal(t, 0.84, reduceLeaves([]float64{1, 1, 0.8}, true))
	assert.Equal(t, 0.81, reduceLeaves([]float64{0.9, 0.9}, false))
	assert.Equal(t, 1.0, reduceLeaves([]float64{1, 1}, true))
}

func TestNewScoreResult(t *testing.T) {
	t.Parallel()

	t.Run("prunes after a bad birth date", func(t *testing.T) {
		q := types.Query{FirstName: "Jean", LastName: "Dupont", BirthDate: "01/02/1950"}
		p := candidate("1", "M", "Jean", "Dupont", "20111231", french("Paris", "75"))

		s, err := newScoreResult(q, p, types.ScoreParams{})
		require.NoError(t, err)
		require.NotNil(t, s.Date)
		assert.Less(t, *s.Date, DefaultPruneScore)
		assert.Nil(t, s.Name)
		assert.Nil(t, s.Location)
		assert.Equal(t, 0.0, *s.Score)
	})

	t.Run("first name ending hints at sex", func(t *testing.T) {
		q := types.Query{FirstName: "Jean", LastName: "Dupont"}
		p := candidate("1", "F", "Jeanne", "Dupont", "", types.Location{})

		s, err := newScoreResult(q, p, types.ScoreParams{})
		require.NoError(t, err)
		require.NotNil(t, s.Sex)
		assert.Equal(t, firstNameSexPenalty, *s.Sex)
	})

	t.Run("location only query is not pruned", func(t *testing.T) {
		q := types.Query{BirthCity: "Lyon"}
		p := candidate("1", "M", "Jean", "Dupont", "", french("Lyon", "69"))

		s, err := newScoreResult(q, p, types.ScoreParams{})
		require.NoError(t, err)
		require.NotNil(t, s.Location)
		assert.Equal(t, 1.0, *s.Score)
	})

	t.Run("bad date format", func(t *testing.T) {
		q := types.Query{BirthDate: "01/02/1950"}
		_, err := newScoreResult(q, candidate("1", "M", "", "", "19500201", types.Location{}),
			types.ScoreParams{DateFormat: "bad"})
		assert.Error(t, err)
	})
}

func TestScoreCandidate(t *testing.T) {
	t.Parallel()

	t.Run("single field query", func(t *testing.T) {
		q := types.Query{FirstName: "Georges", LastName: "Pompidou", Sex: "M"}
		p := candidate("1", "M", "Georges", "Pompidou", "", french("Paris", "75"))

		s, final := scoreCandidate(q, p, types.ScoreParams{}, meaningfulArgs(q))
		assert.Equal(t, 0.96, final)
		assert.Equal(t, 0.96, *s.Score)
		assert.Equal(t, esScore(10), s.ES)
		assert.Equal(t, 1.0, s.Name.Score)
		assert.Equal(t, 1.0, *s.Sex)
		assert.Equal(t, blindLocationScore, s.Location.Score)
	})

	t.Run("error keeps es score", func(t *testing.T) {
		q := types.Query{BirthDate: "01/02/1950"}
		p := candidate("1", "M", "", "", "19500201", types.Location{})
		p.Score = 100

		s, final := scoreCandidate(q, p, types.ScoreParams{DateFormat: "bad"}, 1)
		assert.Equal(t, 0.5, final)
		assert.Equal(t, 0.5, s.ES)
		assert.Nil(t, s.Score)
		assert.Nil(t, s.Date)
	})

	t.Run("es score capped", func(t *testing.T) {
		assert.Equal(t, 1.0, esScore(500))
		assert.Equal(t, 0.0, esScore(0))
	})
}

func TestDisambiguate(t *testing.T) {
	t.Parallel()

	t.Run("two perfect candidates", func(t *testing.T) {
		got := disambiguate([]types.Person{
			scored("b", "M", 0.85, nil),
			scored("a", "M", 0.9, nil),
		}, DefaultPruneScore, 1)

		require.Equal(t, []string{"a", "b"}, ids(got))
		assert.Equal(t, 0.81, got[0].Score)
		assert.Equal(t, 0.65, got[1].Score)
		require.NotNil(t, got[0].Scores.MultiMatchPenalty)
		assert.Equal(t, 0.9, *got[0].Scores.MultiMatchPenalty)
		assert.Equal(t, 2, *got[0].Scores.MultiMatch)
		assert.Equal(t, 0.81, *got[0].Scores.Score)
	})

	t.Run("weak secondary dropped", func(t *testing.T) {
		got := disambiguate([]types.Person{
			scored("a", "M", 0.8, nil),
			scored("b", "M", 0.5, nil),
		}, DefaultPruneScore, 1)

		require.Equal(t, []string{"a"}, ids(got))
		assert.Equal(t, 0.72, got[0].Score)
	})

	t.Run("female with weak name dropped next to a strong one", func(t *testing.T) {
		got := disambiguate([]types.Person{
			scored("a", "F", 0.9, types.Float(0.9)),
			scored("b", "F", 0.8, types.Float(0.6)),
		}, DefaultPruneScore, 1)

		require.Equal(t, []string{"a"}, ids(got))
		assert.Equal(t, 0.9, got[0].Score)
		assert.Nil(t, got[0].Scores.MultiMatch)
	})

	t.Run("single candidate unchanged", func(t *testing.T) {
		got := disambiguate([]types.Person{scored("a", "M", 0.42, nil)}, DefaultPruneScore, 1)
		require.Len(t, got, 1)
		assert.Equal(t, 0.42, got[0].Score)
	})

	t.Run("below prune removed", func(t *testing.T) {
		got := disambiguate([]types.Person{scored("a", "M", 0.2, nil)}, DefaultPruneScore, 1)
		assert.Empty(t, got)
	})

	t.Run("input untouched", func(t *testing.T) {
		in := []types.Person{scored("a", "M", 0.9, nil), scored("b", "M", 0.85, nil)}
		disambiguate(in, DefaultPruneScore, 1)
		assert.Equal(t, 0.9, in[0].Score)
		assert.Nil(t, in[0].Scores.MultiMatch)
		assert.Equal(t, 0.9, *in[0].Scores.Score)
	})
}

func TestScoreResults(t *testing.T) {
	t.Parallel()

	t.Run("department tells candidates apart", func(t *testing.T) {
		q := types.Query{FirstName: "Jean", LastName: "Dupont", Sex: "M", BirthDate: "01/02/1950", BirthDepartment: "75"}
		lyon := candidate("lyon", "M", "Jean", "Dupont", "19500201", french("Lyon", "69"))
		paris := candidate("paris", "M", "Jean", "Dupont", "19500201", french("Paris", "75"))
		_, parisAlone := scoreCandidate(q, paris, types.ScoreParams{}, meaningfulArgs(q))
		_, lyonAlone := scoreCandidate(q, lyon, types.ScoreParams{}, meaningfulArgs(q))
		require.Greater(t, parisAlone, lyonAlone)
		require.GreaterOrEqual(t, lyonAlone, perfectScoreThreshold)

		got := ScoreResults(q, []types.Person{lyon, paris}, types.ScoreParams{})

		require.Equal(t, []string{"paris", "lyon"}, ids(got))
		assert.Equal(t, 0.9, got[0].Score)
		assert.Equal(t, 0.78, got[1].Score)
		assert.Equal(t, 1.0, *got[0].Scores.Location.Department)

		// 两个都被多候选惩罚压低，先后顺序不变
		assert.Less(t, got[0].Score, parisAlone)
		assert.Less(t, got[1].Score, lyonAlone)
	})

	t.Run("birth date only ties", func(t *testing.T) {
		q := types.Query{BirthDate: "01/02/1950"}
		got := ScoreResults(q, []types.Person{
			candidate("a", "M", "Jean", "Dupont", "", types.Location{}),
			candidate("b", "F", "Marie", "Durand", "", types.Location{}),
		}, types.ScoreParams{})

		require.Equal(t, []string{"a", "b"}, ids(got))
		assert.InDelta(t, 0.6, got[0].Score, 0.011)
		assert.Equal(t, got[0].Score, got[1].Score)
	})

	t.Run("non positive raw scores skipped", func(t *testing.T) {
		q := types.Query{FirstName: "Jean", LastName: "Dupont"}
		p := candidate("a", "M", "Jean", "Dupont", "", types.Location{})
		p.Score = 0
		assert.Empty(t, ScoreResults(q, []types.Person{p}, types.ScoreParams{}))
		assert.Empty(t, ScoreResults(q, nil, types.ScoreParams{}))
	})

	t.Run("order of candidates does not matter", func(t *testing.T) {
		q := types.Query{FirstName: "Jean", LastName: "Dupont", BirthDate: "01/02/1950"}
		list := []types.Person{
			candidate("a", "M", "Jean", "Dupont", "19500201", french("Paris", "75")),
			candidate("b", "M", "Jean", "Dupond", "19500202", french("Lyon", "69")),
			candidate("c", "M", "Jacques", "Durand", "19610101", french("Nice", "06")),
		}
		reversed := []types.Person{list[2], list[1], list[0]}

		got := ScoreResults(q, list, types.ScoreParams{})
		again := ScoreResults(q, reversed, types.ScoreParams{})
		require.Equal(t, ids(got), ids(again))
		for i := range got {
			assert.Equal(t, got[i].Score, again[i].Score)
		}

		for i, p := range got {
			assert.GreaterOrEqual(t, p.Score, DefaultPruneScore)
			if i > 0 {
				assert.GreaterOrEqual(t, got[i-1].Score, p.Score)
			}
		}
		assert.Equal(t, 10.0, list[0].Score)
		assert.Nil(t, list[0].Scores)
	})

	t.Run("custom prune score", func(t *testing.T) {
		q := types.Query{FirstName: "Jean", LastName: "Dupont"}
		list := []types.Person{candidate("a", "M", "Jean", "Martin", "", types.Location{})}
		assert.Empty(t, ScoreResults(q, list, types.ScoreParams{PruneScore: types.Float(0.9)}))
	})
}
