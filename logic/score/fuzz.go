package score

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// 与 fuzzball 同口径的模糊比率，返回 0-100 的整数分

// ratio 基于最长公共子序列：2*LCS/(len(a)+len(b))
func ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	lcs := edlib.LCS(a, b)
	return int(math.Round(100 * 2 * float64(lcs) / float64(total)))
}

func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return tokens
}

// tokenSortRatio 按词排序后再比较
func tokenSortRatio(a, b string) int {
	return ratio(strings.Join(sortedTokens(a), " "), strings.Join(sortedTokens(b), " "))
}

// tokenSetRatio 交集 + 各自差集组合后取最高比率
func tokenSetRatio(a, b string) int {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var inter, diffA, diffB []string
	for t := range setA {
		if setB[t] {
			inter = append(inter, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			diffB = append(diffB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	sect := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(diffA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(diffB, " "))

	best := ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, ratio(sect, combinedA), ratio(sect, combinedB))
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

// 比较器统一为 [0,1]

func partialTokenSortSimilarity(a, b string) float64 {
	return 0.01 * float64(tokenSortRatio(a, b))
}

func tokenSetSimilarity(a, b string) float64 {
	return 0.01 * float64(tokenSetRatio(a, b))
}

// mixSimilarity 任一侧为多词时用集合比率，否则用编辑距离比率
func mixSimilarity(a, b string) float64 {
	if isMultiToken(a) || isMultiToken(b) {
		return tokenSetSimilarity(a, b)
	}
	return levRatio(a, b, levenshteinDistance)
}
