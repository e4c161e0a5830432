package score

import "strings"

// scoreSex 一致 1，不一致 minSexScore，任一侧未知 blindSexScore
// 查询里的 H (homme) 视为 M
func scoreSex(a, b string) float64 {
	if a == "" || b == "" {
		return blindSexScore
	}
	a = strings.ToUpper(strings.TrimSpace(a))
	if strings.HasPrefix(a, "H") {
		a = "M"
	}
	if a == b {
		return 1
	}
	return minSexScore
}
