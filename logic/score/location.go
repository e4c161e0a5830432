package score

import (
	"math"
	"strings"

	"deces-backend/types"
)

// queryLocation 查询侧的地点，来自 birthCity/birthDepartment/birthCountry
type queryLocation struct {
	City           string
	DepartmentCode string
	Country        string
}

func cityNorm(t types.Text) types.Text {
	return applyRegex(t, cityRules)
}

func countryNorm(t types.Text) types.Text {
	return applyRegex(t, countryRules)
}

func depCodeNorm(code string) string {
	return applyRules(normalize(code), depCodeRules)
}

// extractBorough 提取区号 (paris 15e -> 15)，没有则返回空
func extractBorough(city string) string {
	n := normalize(city)
	b := applyRules(n, boroughRules)
	if b != n {
		return b
	}
	return ""
}

// scoreCity 城市比较，巴黎/里昂/马赛同城不同区给 boroughLocationPenalty
func scoreCity(query string, candidate types.Text) float64 {
	normA := cityNorm(types.Scalar(query)).First()
	normB := cityNorm(candidate)

	best := 0.0
	for _, city := range normB.Items() {
		best = math.Max(best, fuzzyRatio(normA, city, mixSimilarity))
	}

	if best == 1 && boroughCities[normA] {
		boroughA := extractBorough(query)
		boroughB := ""
		for _, raw := range candidate.Items() {
			if boroughB = extractBorough(raw); boroughB != "" {
				break
			}
		}
		if boroughA != "" && boroughB != "" && boroughA != boroughB {
			return boroughLocationPenalty
		}
	}
	return best
}

// scoreCountry 国家比较，候选为多值时额外与整体拼接比较一次
func scoreCountry(query string, candidate types.Text) float64 {
	normA := countryNorm(types.Scalar(query)).First()
	if !candidate.IsSequence() {
		return fuzzyRatio(normA, countryNorm(candidate).First(), tokenSetSimilarity)
	}
	normB := countryNorm(candidate)
	best := tokenSetSimilarity(normA, normalize(candidate.String()))
	for _, country := range normB.Items() {
		best = math.Max(best, fuzzyRatio(normA, country, tokenSetSimilarity))
	}
	return best
}

// scoreDepartment 省份代码比较，nil 表示无法比较
func scoreDepartment(query, candidate string, sameCity bool) *float64 {
	a, b := depCodeNorm(query), depCodeNorm(candidate)
	if a == "" || b == "" {
		return nil
	}
	switch {
	case a == b:
		return types.Float(1)
	case sameCity && (b == "75" || b == "78") && seineDepartments[a]:
		return types.Float(1)
	case a == "97":
		return types.Float(round((3 + minDepScore) / 4))
	default:
		return types.Float(minDepScore)
	}
}

// scoreLocation 按候选出生地是否在法国分两支
func scoreLocation(a queryLocation, b types.Location) types.LocationScore {
	var s types.LocationScore
	hasCity := normalize(a.City) != ""
	hasCountry := normalize(a.Country) != ""

	if b.IsFrench() {
		if hasCountry {
			s.Country = types.Float(scoreCountry(a.Country, tokenize(b.Country, false)))
		}
		if hasCity && !b.City.IsEmpty() {
			s.City = types.Float(scoreCity(a.City, b.City))
		}
		if normalize(a.DepartmentCode) != "" && b.DepartmentCode != "" {
			if strings.TrimSpace(a.DepartmentCode) == "99" {
				// 99 表示国外出生，与法国候选直接冲突
				s.Country = types.Float(minLocationScore)
			} else {
				sameCity := s.City != nil && *s.City == 1
				s.Department = scoreDepartment(a.DepartmentCode, b.DepartmentCode, sameCity)
			}
		}
		if s.Country == nil && s.City == nil && s.Department == nil {
			s.Score = blindLocationScore
		} else {
			s.Score = math.Max(minLocationScore, reduceLocation(s))
		}
		return s
	}

	switch {
	case hasCountry:
		s.Country = types.Float(scoreCountry(a.Country, tokenize(b.Country, false)))
	case hasCity:
		// 国外出生时城市和国家常被填反
		if c := scoreCountry(a.City, tokenize(b.Country, false)); c > minNotFrCountryScore {
			s.Country = types.Float(c)
		}
	default:
		s.Country = types.Float(blindLocationScore)
	}
	if hasCity && !b.City.IsEmpty() {
		if c := scoreCity(a.City, tokenize(b.City, false)); c > minNotFrCityScore {
			s.City = types.Float(c)
		}
	}
	country := 0.0
	if s.Country != nil {
		country = *s.Country
	}
	s.Score = math.Max(minNotFrCountryScore, math.Max(country, reduceLocation(s)))
	return s
}

// reduceLocation 子项乘积，不带多项惩罚
func reduceLocation(s types.LocationScore) float64 {
	var leaves []float64
	for _, v := range []*float64{s.Country, s.City, s.Department} {
		if v != nil {
			leaves = append(leaves, *v)
		}
	}
	return reduceLeaves(leaves, false)
}
