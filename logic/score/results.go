// Package score 候选身份记录的打分与消歧
//
// 输入为查询条件、检索后端返回的候选列表和打分参数，输出按得分降序、已剪枝的候选副本。
// 计算是纯函数：不读时钟、不依赖随机数，也没有共享可变状态，不同批次可以并发调用。
package score

import (
	"math"
	"sort"

	"deces-backend/types"
)

// ScoreResults 对候选逐个打分，再做多候选消歧
// 返回的是副本，不修改 candidates
func ScoreResults(q types.Query, candidates []types.Person, params types.ScoreParams) []types.Person {
	candidateNumber := params.CandidateNumber
	if candidateNumber <= 0 {
		candidateNumber = 1
	}
	meaningful := meaningfulArgs(q)

	scored := make([]types.Person, 0, len(candidates))
	for _, c := range candidates {
		if c.Score <= 0 {
			continue
		}
		p := c.Clone()
		p.Scores, p.Score = scoreCandidate(q, c, params, meaningful)
		scored = append(scored, p)
	}
	return disambiguate(scored, pruneScoreOf(params), candidateNumber)
}

type ranked struct {
	person types.Person
	index  int
}

func nameScore(p types.Person) (float64, bool) {
	if p.Scores == nil || p.Scores.Name == nil {
		return 0, false
	}
	return p.Scores.Name.Score, true
}

// disambiguate 消歧：同时存在多个强候选时按数量加罚，并压掉明显更弱的候选
// 只会降低得分，不会提高
func disambiguate(results []types.Person, pruneScore float64, candidateNumber int) []types.Person {
	wrongLastF := wrongLastNamePenalty["F"]

	// 1. 去掉非正分，统计最高分、完美候选数、是否有女性姓名高分
	var list []ranked
	maxScore := 0.0
	perfectNumber := 0
	perfectName := false
	for i, p := range results {
		if p.Score <= 0 {
			continue
		}
		list = append(list, ranked{person: p.Clone(), index: i})
		maxScore = math.Max(maxScore, p.Score)
		if p.Score >= perfectScoreThreshold {
			perfectNumber++
		}
		if n, ok := nameScore(p); ok && p.Sex == "F" && n > wrongLastF {
			perfectName = true
		}
	}

	// 2. 剪枝，统计并列最高和有效候选数
	filtered := list[:0]
	bestNumber := 0
	filteredNumber := 0
	for _, r := range list {
		if r.person.Score < pruneScore {
			continue
		}
		if r.person.Score == maxScore {
			bestNumber++
		}
		n, _ := nameScore(r.person)
		if r.person.Sex == "M" || !perfectName || n > wrongLastF {
			filteredNumber++
		}
		filtered = append(filtered, r)
	}

	sortRanked(filtered)

	p := float64(perfectNumber)
	f := float64(filteredNumber)
	b := float64(bestNumber)
	c := float64(candidateNumber)

	for i := range filtered {
		person := &filtered[i].person
		// 3. 已有女性姓名高分时，姓名不达标的女性候选清零
		if n, ok := nameScore(*person); perfectName && filteredNumber > 0 && ok && person.Sex == "F" && n <= wrongLastF {
			person.Score = 0
		}
		if person.Score <= 0 {
			continue
		}

		before := person.Score

		// 4. 多候选惩罚
		if filteredNumber > 1 {
			var after float64
			if perfectNumber > 0 {
				damping := 1 - multiplePerfectScorePenalty*(p-1+multipleMatchPenalty*(f-p)/c)
				switch {
				case before < perfectScoreThreshold:
					after = damping * math.Pow(before, secondaryCandidatePenaltyPow+(f-p))
				case before < maxScore:
					after = damping * math.Pow(before, secondaryCandidatePenaltyPow)
				default:
					after = damping * before
				}
			} else {
				damping := 1 - multipleBestScorePenalty*(b-1+multipleMatchPenalty*(f-b)/c)
				if before < maxScore {
					after = damping * math.Pow(before, secondaryCandidatePenaltyPow+(f-b))
				} else {
					after = damping * before
				}
			}
			after = math.Min(before, math.Max(0, round(after)))
			person.Score = after
			recordPenalty(person, before, after, filteredNumber)
		}

		// 5. 次要候选 (罚前不是最高分) 低于阈值直接清零
		if before < maxScore && person.Score < secondaryCandidateThreshold {
			person.Score = 0
		}
	}

	// 6. 最终剪枝并排序
	out := filtered[:0]
	for _, r := range filtered {
		if r.person.Score >= pruneScore {
			out = append(out, r)
		}
	}
	sortRanked(out)

	persons := make([]types.Person, len(out))
	for i, r := range out {
		persons[i] = r.person
	}
	return persons
}

// recordPenalty 明细里的 score 改为罚后得分，multiMatchPenalty 为罚后/罚前
// 各字段子分保持不变
func recordPenalty(p *types.Person, before, after float64, multiMatch int) {
	if p.Scores == nil {
		p.Scores = &types.ScoreResult{}
	}
	p.Scores.MultiMatchPenalty = types.Float(round(after / before))
	p.Scores.MultiMatch = &multiMatch
	p.Scores.Score = types.Float(after)
}

// sortRanked 按得分降序，同分按输入顺序
func sortRanked(list []ranked) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].person.Score != list[j].person.Score {
			return list[i].person.Score > list[j].person.Score
		}
		return list[i].index < list[j].index
	})
}
