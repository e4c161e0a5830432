package types

// Person 检索后端返回的候选记录
// 输入时 Score 为 ES 原始相关度，打分后为最终得分
type Person struct {
	ID     string       `json:"id"`
	Score  float64      `json:"score"`
	Scores *ScoreResult `json:"scores,omitempty"`
	Source string       `json:"source,omitempty"`
	Sex    string       `json:"sex,omitempty"`
	Name   Name         `json:"name"`
	Birth  Birth        `json:"birth"`
	Death  Death        `json:"death"`
}

type Name struct {
	First Text `json:"first"`
	Last  Text `json:"last"`
}

type Birth struct {
	Date     string   `json:"date,omitempty"` // YYYYMMDD，未知段补 0
	Location Location `json:"location"`
}

type Death struct {
	Date          string   `json:"date,omitempty"`
	CertificateID string   `json:"certificateId,omitempty"`
	Age           int      `json:"age,omitempty"`
	Location      Location `json:"location"`
}

type Location struct {
	City           Text     `json:"city"`
	CityCode       string   `json:"cityCode,omitempty"`
	DepartmentCode string   `json:"departmentCode,omitempty"`
	Country        Text     `json:"country"`
	CountryCode    string   `json:"countryCode,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

// IsFrench 出生地国家代码为 FRA
func (l Location) IsFrench() bool {
	return !l.Country.IsEmpty() && l.CountryCode == "FRA"
}

// Clone 深拷贝，打分结果不能回写调用方的切片
func (p Person) Clone() Person {
	c := p
	if p.Scores != nil {
		s := p.Scores.Clone()
		c.Scores = &s
	}
	return c
}
