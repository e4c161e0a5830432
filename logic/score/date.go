package score

import (
	"math"
	"strings"

	"deces-backend/logic/datefmt"
)

const unknownDate = "00000000"

// scoreDate 比较查询日期 (单日/区间/部分未知) 与候选的 YYYYMMDD
// dateFormat 非空时先按该格式重排查询日期，失败返回 error
// foreign 表示候选人出生在国外
func scoreDate(query, candidate, dateFormat string, foreign bool) (float64, error) {
	if dateFormat != "" && strings.TrimSpace(query) != "" {
		reformatted, err := reformatQueryDate(query, dateFormat)
		if err != nil {
			return 0, err
		}
		query = reformatted
	}
	return round(math.Pow(scoreDateRaw(query, candidate, foreign), datePenalty)), nil
}

func reformatQueryDate(query, dateFormat string) (string, error) {
	if low, high, ok := datefmt.SplitRange(query); ok {
		l, err := datefmt.Reformat(low, dateFormat)
		if err != nil {
			return "", err
		}
		h, err := datefmt.Reformat(high, dateFormat)
		if err != nil {
			return "", err
		}
		return l + "-" + h, nil
	}
	return datefmt.Reformat(query, dateFormat)
}

func scoreDateRaw(query, candidate string, foreign bool) float64 {
	if candidate == "" || candidate == unknownDate || strings.TrimSpace(query) == "" {
		return blindDateScore
	}

	if low, high, ok := datefmt.SplitRange(query); ok {
		if low == high {
			return scoreDateRaw(low, candidate, foreign)
		}
		low, high = datefmt.Mask(low), datefmt.Mask(high)
		if low <= candidate && candidate <= high {
			return uncertainDateScore
		}
		if strings.HasPrefix(candidate, "0000") || strings.HasSuffix(candidate, "0000") {
			return uncertainDateScore
		}
		return minDateScore
	}

	masked := datefmt.Mask(query)
	if masked == unknownDate {
		return blindDateScore
	}
	switch {
	case strings.HasPrefix(candidate, "0000") || strings.HasPrefix(masked, "0000"):
		// 年份未知，只比月日
		return round(uncertainDateScore * levRatio(segment(masked, 4, 8), segment(candidate, 4, 8), damerauDistance))
	case strings.HasSuffix(candidate, "0000") || strings.HasSuffix(masked, "0000"):
		// 月日未知，只比年份
		return round(uncertainDateScore * levRatio(segment(masked, 0, 4), segment(candidate, 0, 4), damerauDistance))
	case foreign && strings.HasSuffix(candidate, "0101") && segment(candidate, 0, 4) < "1990" && strings.HasSuffix(masked, "0101"):
		// 国外出生且登记为 1 月 1 日的老记录，日期多半不准
		return round(uncertainDateScore * levRatio(segment(masked, 0, 4), segment(candidate, 0, 4), damerauDistance))
	}
	return levRatio(masked, candidate, damerauDistance)
}

func segment(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	return s[from:min(to, len(s))]
}
