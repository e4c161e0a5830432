package es

import (
	"fmt"
	"strconv"
	"strings"

	"deces-backend/logic/datefmt"
	"deces-backend/types"
)

// BuildPersonQuery 把查询条件翻译成 ES bool 查询
// 姓名/地点走 should 模糊匹配，打分交给后续引擎；性别、日期区间、年龄是硬过滤
func BuildPersonQuery(q types.Query) map[string]interface{} {
	fuzziness := "auto"
	if strings.EqualFold(q.Fuzzy, "false") {
		fuzziness = "0"
	}

	var should []map[string]interface{}
	var filter []map[string]interface{}

	// 1. 全文
	if q.FullText != "" {
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q.FullText,
				"fields":    []string{"name.first", "name.last^2", "birth.location.city", "death.location.city"},
				"fuzziness": fuzziness,
			},
		})
	}

	// 2. 姓名；婚后姓也在 name.last 上匹配
	should = appendMatch(should, "name.first", q.FirstName, fuzziness, 1)
	should = appendMatch(should, "name.last", q.LastName, fuzziness, 2)
	should = appendMatch(should, "name.last", q.LegalName, fuzziness, 1)

	// 3. 地点
	should = appendMatch(should, "birth.location.city", q.BirthCity, fuzziness, 1)
	should = appendMatch(should, "birth.location.country", q.BirthCountry, fuzziness, 1)
	should = appendTerm(should, "birth.location.departmentCode", q.BirthDepartment)
	should = appendMatch(should, "death.location.city", q.DeathCity, fuzziness, 1)
	should = appendMatch(should, "death.location.country", q.DeathCountry, fuzziness, 1)
	should = appendTerm(should, "death.location.departmentCode", q.DeathDepartment)

	// 4. 日期：完整日期加分，区间/部分日期过滤
	should, filter = appendDate(should, filter, "birth.date", q.BirthDate)
	should, filter = appendDate(should, filter, "death.date", q.DeathDate)
	if q.LastSeenAliveDate != "" {
		filter = append(filter, dateRange("death.date", strings.TrimPrefix(q.LastSeenAliveDate, ">"), "", true))
	}

	// 5. 精确过滤
	if q.Sex != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"sex": q.Sex},
		})
	}
	if age, err := strconv.Atoi(strings.TrimSpace(q.DeathAge)); err == nil {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"death.age": age},
		})
	}
	filter = appendGeo(filter, "birthGeoPoint", q.BirthGeoPoint)
	filter = appendGeo(filter, "deathGeoPoint", q.DeathGeoPoint)

	boolQuery := map[string]interface{}{}
	if len(should) > 0 {
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	size := q.Size
	if size <= 0 {
		size = types.DefaultSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"size": size,
		"from": (page - 1) * size,
	}
}

func appendMatch(clauses []map[string]interface{}, field, value, fuzziness string, boost float64) []map[string]interface{} {
	if value == "" {
		return clauses
	}
	return append(clauses, map[string]interface{}{
		"match": map[string]interface{}{
			field: map[string]interface{}{
				"query":     value,
				"fuzziness": fuzziness,
				"boost":     boost,
			},
		},
	})
}

func appendTerm(clauses []map[string]interface{}, field, value string) []map[string]interface{} {
	if value == "" {
		return clauses
	}
	return append(clauses, map[string]interface{}{
		"term": map[string]interface{}{field: value},
	})
}

// appendDate 完整的 YYYYMMDD 作为加分项，其余写法转成区间过滤
func appendDate(should, filter []map[string]interface{}, field, value string) ([]map[string]interface{}, []map[string]interface{}) {
	value = strings.TrimSpace(value)
	if value == "" {
		return should, filter
	}
	if strings.HasPrefix(value, ">") {
		return should, append(filter, dateRange(field, strings.TrimPrefix(value, ">"), "", true))
	}
	if low, high, ok := datefmt.SplitRange(value); ok {
		return should, append(filter, dateRange(field, low, high, false))
	}

	masked := datefmt.Mask(value)
	if len(masked) == 8 && !strings.HasSuffix(masked, "00") {
		return append(should, map[string]interface{}{
			"term": map[string]interface{}{field: map[string]interface{}{"value": masked, "boost": 2}},
		}), filter
	}
	return should, append(filter, dateRange(field, value, value, false))
}

// dateRange 上界按未知段补 9，"1950" 覆盖整年
func dateRange(field, low, high string, exclusive bool) map[string]interface{} {
	r := map[string]interface{}{}
	if low != "" {
		if exclusive {
			r["gt"] = upperBound(datefmt.Mask(low))
		} else {
			r["gte"] = datefmt.Mask(low)
		}
	}
	if high != "" {
		r["lte"] = upperBound(datefmt.Mask(high))
	}
	return map[string]interface{}{
		"range": map[string]interface{}{field: r},
	}
}

func upperBound(masked string) string {
	switch {
	case len(masked) != 8:
		return masked
	case strings.HasSuffix(masked, "0000"):
		return masked[:4] + "9999"
	case strings.HasSuffix(masked, "00"):
		return masked[:6] + "99"
	}
	return masked
}

func appendGeo(filter []map[string]interface{}, field string, p *types.GeoPoint) []map[string]interface{} {
	if p == nil {
		return filter
	}
	distance := p.Distance
	if distance == "" {
		distance = "10km"
	}
	return append(filter, map[string]interface{}{
		"geo_distance": map[string]interface{}{
			"distance": distance,
			field:      fmt.Sprintf("%g,%g", p.Latitude, p.Longitude),
		},
	})
}
