package score

import (
	"fmt"
	"math"

	"deces-backend/types"
)

func pruneScoreOf(params types.ScoreParams) float64 {
	if params.PruneScore != nil {
		return *params.PruneScore
	}
	return DefaultPruneScore
}

// leaves 已计算字段的得分
func leaves(s types.ScoreResult) []float64 {
	var out []float64
	if s.Date != nil {
		out = append(out, *s.Date)
	}
	if s.Name != nil {
		out = append(out, s.Name.Score)
	}
	if s.Sex != nil {
		out = append(out, *s.Sex)
	}
	if s.Location != nil {
		out = append(out, s.Location.Score)
	}
	return out
}

// reduceLeaves 各项得分相乘
// multiplePenalty 时再取幂 multipleErrorPenalty*(2 - 完美项占比)，完美项越少压得越狠
func reduceLeaves(values []float64, multiplePenalty bool) float64 {
	if len(values) == 0 {
		return 0
	}
	product := 1.0
	perfect := 0
	for _, v := range values {
		v = round(v)
		product *= v
		if v >= perfectScoreThreshold {
			perfect++
		}
	}
	exp := 1.0
	if multiplePenalty {
		exp = multipleErrorPenalty * (2 - float64(perfect)/float64(len(values)))
	}
	return round(math.Pow(product, exp))
}

// newScoreResult 按 日期 -> 姓名 -> 性别 -> 地点 的顺序计算明细
//
// 每一步之前检查当前累计得分，低于 pruneScore 时剪枝：后续字段不再计算，总分记 0。
// 这一步决定了明细里出现哪些字段，必须保持固定顺序。尚未计算任何字段时不剪枝。
func newScoreResult(q types.Query, p types.Person, params types.ScoreParams) (types.ScoreResult, error) {
	prune := pruneScoreOf(params)
	var s types.ScoreResult
	pruned := false

	proceed := func() bool {
		if pruned {
			return false
		}
		values := leaves(s)
		if len(values) == 0 {
			return true
		}
		if prune < reduceLeaves(values, true) {
			return true
		}
		pruned = true
		return false
	}

	// 1. 出生日期
	if q.BirthDate != "" {
		foreign := p.Birth.Location.CountryCode != "" && p.Birth.Location.CountryCode != "FRA"
		d, err := scoreDate(q.BirthDate, p.Birth.Date, params.DateFormat, foreign)
		if err != nil {
			return types.ScoreResult{}, fmt.Errorf("score birth date: %w", err)
		}
		s.Date = types.Float(d)
	}

	// 2. 姓名
	if q.FirstName != "" || q.LastName != "" {
		if proceed() {
			name := scoreName(queryName(q, p.Sex), p.Name, candidateSex(p))
			s.Name = &name
		}
	}

	// 3. 性别；未给性别时用名字的阴阳性词尾兜底
	if q.Sex != "" {
		if proceed() {
			s.Sex = types.Float(scoreSex(q.Sex, p.Sex))
		}
	} else if q.FirstName != "" && firstNameSexMismatch(types.Scalar(q.FirstName), p.Name.First) {
		s.Sex = types.Float(firstNameSexPenalty)
	}

	// 4. 出生地
	if proceed() {
		loc := scoreLocation(queryLocation{
			City:           q.BirthCity,
			DepartmentCode: q.BirthDepartment,
			Country:        q.BirthCountry,
		}, p.Birth.Location)
		s.Location = &loc
	}

	if pruned {
		s.Score = types.Float(0)
	} else {
		s.Score = types.Float(reduceLeaves(leaves(s), true))
	}
	return s, nil
}

// queryName 女性候选同时比对娘家姓和婚后姓
func queryName(q types.Query, sex string) types.Name {
	name := types.Name{First: types.Scalar(q.FirstName), Last: types.Scalar(q.LastName)}
	if sex == "F" && q.LegalName != "" {
		name.Last = types.Sequence(q.LastName, q.LegalName)
	}
	return name
}

func candidateSex(p types.Person) string {
	if p.Sex == "F" {
		return "F"
	}
	return "M"
}

// meaningfulArgs 查询中实际给出的 名字类/出生日期/出生地 组数
func meaningfulArgs(q types.Query) int {
	n := 0
	if q.HasName() {
		n++
	}
	if q.BirthDate != "" {
		n++
	}
	if q.HasBirthLocation() {
		n++
	}
	return n
}

// fieldCount 明细键数，包含 score 本身
func fieldCount(s types.ScoreResult) int {
	return len(leaves(s)) + 1
}

// esScore 后端相关度归一到 [0,1]
func esScore(raw float64) float64 {
	return round(0.005 * math.Min(200, raw))
}

// scoreCandidate 单个候选打分；失败时只保留 es 得分
func scoreCandidate(q types.Query, p types.Person, params types.ScoreParams, meaningful int) (*types.ScoreResult, float64) {
	es := esScore(p.Score)
	s, err := newScoreResult(q, p, params)
	if err != nil {
		return &types.ScoreResult{ES: es}, es
	}
	final := *s.Score
	if final > 0 {
		final = round(math.Pow(final, float64(meaningful)/float64(fieldCount(s))))
	}
	s.Score = types.Float(final)
	s.ES = es
	return &s, final
}
