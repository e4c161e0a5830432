package score

import "math"

// 打分阈值与惩罚系数
const (
	perfectScoreThreshold        = 0.75
	multipleMatchPenalty         = 1.0
	multiplePerfectScorePenalty  = 0.1
	multipleBestScorePenalty     = 0.15
	multipleErrorPenalty         = 0.8
	secondaryCandidatePenaltyPow = 2.0
	secondaryCandidateThreshold  = 0.4

	tokenPlacePenalty = 0.7
	blindTokenScore   = 0.5

	nameInversionPenalty = 0.7
	fuzzPenalty          = 1.5
	stopNamePenalty      = 0.8
	minNameScore         = 0.1
	blindNameScore       = 0.5
	lastNamePenalty      = 1.5

	minSexScore         = 0.5
	firstNameSexPenalty = 0.65
	blindSexScore       = 0.99

	minDateScore       = 0.2
	blindDateScore     = 0.8
	uncertainDateScore = 0.7
	datePenalty        = 3.0

	minLocationScore       = 0.2
	boroughLocationPenalty = 0.9
	minDepScore            = 0.85
	minNotFrCityScore      = 0.5
	minNotFrCountryScore   = 0.5
	blindLocationScore     = 0.8

	boostSoundex = 1.5

	DefaultPruneScore = 0.3
)

// wrongLastNamePenalty 姓氏不符时按性别保留的名字得分
var wrongLastNamePenalty = map[string]float64{
	"M": 0.1,
	"F": 0.65,
}

func lastNameMismatch(sex string) float64 {
	if sex == "F" {
		return wrongLastNamePenalty["F"]
	}
	return wrongLastNamePenalty["M"]
}

// round 保留两位小数
func round(s float64) float64 {
	return math.Round(s*100) / 100
}
