package types

// ScoreResult 单个候选的打分明细
// 未参与计算的字段为 nil，序列化时省略
type ScoreResult struct {
	Date              *float64       `json:"date,omitempty"`
	Name              *NameScore     `json:"name,omitempty"`
	Sex               *float64       `json:"sex,omitempty"`
	Location          *LocationScore `json:"location,omitempty"`
	Score             *float64       `json:"score,omitempty"`
	ES                float64        `json:"es"`
	MultiMatchPenalty *float64       `json:"multiMatchPenalty,omitempty"`
	MultiMatch        *int           `json:"multiMatch,omitempty"`
}

type NameScore struct {
	Score         float64  `json:"score"`
	First         float64  `json:"first"`
	Last          float64  `json:"last"`
	Fuzz          *float64 `json:"fuzz,omitempty"`
	ParticleScore *float64 `json:"particleScore,omitempty"`
}

type LocationScore struct {
	Score      float64  `json:"score"`
	Country    *float64 `json:"country,omitempty"`
	City       *float64 `json:"city,omitempty"`
	Department *float64 `json:"department,omitempty"`
}

// Float 取地址的小工具
func Float(v float64) *float64 {
	return &v
}

func (s ScoreResult) Clone() ScoreResult {
	c := s
	if s.Name != nil {
		n := *s.Name
		c.Name = &n
	}
	if s.Location != nil {
		l := *s.Location
		c.Location = &l
	}
	return c
}
