package score

import (
	"math"
	"regexp"
	"strings"

	"deces-backend/types"
)

func firstNameNorm(t types.Text) types.Text {
	return tokenize(applyRegex(t, firstNameRules), true)
}

func lastNameNorm(t types.Text) types.Text {
	return applyRegex(t, lastNameRules)
}

func filterStopNames(t types.Text) types.Text {
	return applyRegex(t, stopNameRules)
}

// headOf 多值取首项
func headOf(t types.Text) types.Text {
	return types.Scalar(t.First())
}

// scoreName 比较 {名, 姓}
// sex 为候选人性别，决定姓氏不符时保留多少名字得分
func scoreName(a, b types.Name, sex string) types.NameScore {
	if (a.First.IsEmpty() && a.Last.IsEmpty()) || (b.First.IsEmpty() && b.Last.IsEmpty()) {
		return types.NameScore{Score: blindNameScore, First: blindNameScore, Last: blindNameScore}
	}

	firstA, lastA := firstNameNorm(a.First), lastNameNorm(a.Last)
	firstB, lastB := firstNameNorm(b.First), lastNameNorm(b.Last)
	lastTokensA, lastTokensB := tokenize(lastA, false), tokenize(lastB, false)

	// 长复姓 (3 个词以上) 不再额外惩罚姓
	pow := lastNamePenalty
	if (lastTokensA.IsSequence() && len(lastTokensA.Items()) > 2) ||
		(lastTokensB.IsSequence() && len(lastTokensB.Items()) > 2) {
		pow = 1
	}

	scoreFirst := round(scoreToken(firstA, firstB, nil))
	scoreLast := round(scoreToken(lastA, lastB, nil))

	blind := 0.0
	if a.First.IsEmpty() || b.First.IsEmpty() {
		blind = math.Pow(scoreLast, pow) * blindNameScore * blindNameScore
	}
	s := round(math.Max(
		scoreFirst*math.Pow(scoreLast, pow),
		math.Max(blind, scoreFirst*lastNameMismatch(sex)),
	))

	var fuzz float64
	if s < blindNameScore {
		// 复杂姓名：退化为词序无关的模糊比较
		if (scoreFirst >= blindNameScore || scoreLast >= blindNameScore) &&
			(lastTokensA.IsSequence() || lastTokensB.IsSequence()) &&
			(firstA.IsSequence() || firstB.IsSequence()) {
			partA := filterStopNames(types.Scalar(lastA.String() + " " + firstA.String()))
			partB := filterStopNames(types.Scalar(lastB.String() + " " + firstB.String()))
			fuzz = round(tokenPlacePenalty * math.Pow(fuzzyRatio(partA.First(), partB.First(), partialTokenSortSimilarity), fuzzPenalty))
			if fuzz > blindNameScore {
				s = math.Max(s, fuzz)
			}
		}
		// 名/姓颠倒
		s = math.Max(s, inversionScore(firstA, lastA, firstB, lastB, pow))
	}

	result := types.NameScore{Score: s, First: scoreFirst, Last: scoreLast}
	if fuzz != 0 {
		result.Fuzz = types.Float(fuzz)
	}
	if s == 1 {
		return result
	}

	// 去掉小品词后再比一次，两侧都带小品词才需要
	lastStopA, lastStopB := filterStopNames(lastA), filterStopNames(lastB)
	if !lastStopA.Equal(lastA) && !lastStopB.Equal(lastB) {
		particle := stopNamePenalty * round(scoreFirst*math.Pow(scoreToken(lastStopA, lastStopB, nil), pow))
		if particle < blindNameScore {
			if inv := inversionScore(firstA, lastStopA, firstB, lastStopB, pow); inv > 0 {
				particle = math.Max(particle, stopNamePenalty*round(inv))
			}
		}
		particle = round(particle)
		if particle > result.Score {
			result.Score = particle
			result.ParticleScore = types.Float(particle)
		}
	}
	return result
}

// inversionScore 查询的名对候选的姓足够接近时，按颠倒处理；否则返回 0
func inversionScore(firstA, lastA, firstB, lastB types.Text, pow float64) float64 {
	cross := scoreToken(headOf(firstA), lastB, nil)
	if cross < blindNameScore {
		return 0
	}
	reverse := scoreToken(lastA, headOf(firstB), nil)
	return math.Max(minNameScore, nameInversionPenalty*math.Pow(cross, pow)*math.Pow(reverse, pow))
}

var sexSuffix = regexp.MustCompile(`^.?(e|a)$`)

// firstNameSexMismatch 两个名字只差一个阴性词尾 (jean/jeanne)
func firstNameSexMismatch(a, b types.Text) bool {
	firstA := firstNameNorm(a).First()
	firstB := firstNameNorm(b).First()
	return sexSuffix.MatchString(strings.Replace(firstA, firstB, "", 1)) ||
		sexSuffix.MatchString(strings.Replace(firstB, firstA, "", 1))
}
