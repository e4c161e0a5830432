package score

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/hbollon/go-edlib"

	"deces-backend/types"
)

type distanceFunc func(a, b string) int

type comparator func(a, b string) float64

func levenshteinDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

func damerauDistance(a, b string) int {
	return edlib.DamerauLevenshteinDistance(a, b)
}

// levRatio 1 - 编辑距离/较长串长度，保留两位
func levRatio(a, b string, dist distanceFunc) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return round(1 - float64(dist(a, b))/float64(n))
}

// fuzzyRatio 默认比较器为 levRatio，并按 soundex 是否一致做提升/压低
// 传入自定义比较器时不做 soundex 调整
func fuzzyRatio(a, b string, cmp comparator) float64 {
	if a == "" || b == "" {
		return 0
	}
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return 1
	}
	var s float64
	if cmp == nil {
		s = levRatio(na, nb, levenshteinDistance)
	} else {
		s = cmp(na, nb)
	}
	if s == 1 {
		return 1
	}
	if cmp == nil {
		if soundex(na) == soundex(nb) {
			s = math.Pow(s, 1/boostSoundex)
		} else {
			s = math.Pow(s, boostSoundex)
		}
	}
	return round(s)
}

// scoreToken 单值/多值之间的通用比较
//   - 单值 vs 单值: fuzzyRatio
//   - 单值 vs 多值: 与首项比较，其余项乘位置惩罚后取最大
//   - 多值 vs 多值: 逐位比较，前面的位权重更高
//
// 任一侧为空返回 blindTokenScore
func scoreToken(a, b types.Text, cmp comparator) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return blindTokenScore
	}
	switch {
	case !a.IsSequence() && !b.IsSequence():
		if a.First() == b.First() {
			return 1
		}
		return fuzzyRatio(a.First(), b.First(), cmp)
	case !a.IsSequence():
		return scoreScalarSequence(a.First(), b.Items(), cmp)
	case !b.IsSequence():
		return scoreScalarSequence(b.First(), a.Items(), cmp)
	default:
		return scoreSequences(a.Items(), b.Items(), cmp)
	}
}

func scoreScalarSequence(a string, items []string, cmp comparator) float64 {
	s := fuzzyRatio(a, items[0], cmp)
	if len(items) > 1 {
		best := 0.0
		for _, item := range items[1:] {
			best = math.Max(best, fuzzyRatio(a, item, cmp))
		}
		s = math.Max(s, tokenPlacePenalty*best)
	}
	return s
}

func scoreSequences(a, b []string, cmp comparator) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var previous, total float64
	for i := 0; i < n; i++ {
		current := fuzzyRatio(a[i], b[i], cmp)
		if previous == 0 {
			previous = current
		} else {
			previous = 0.5 * (previous + current)
		}
		total += previous
	}
	return total / float64(n)
}
