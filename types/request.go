package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"deces-backend/logic/datefmt"
)

const (
	DefaultSize = 20
	MaxSize     = 1000
)

// GeoPoint 经纬度 + 检索半径
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  string  `json:"distance,omitempty"`
}

// Query 查询条件，所有字段可选
type Query struct {
	FullText          string    `json:"q,omitempty" form:"q"`
	FirstName         string    `json:"firstName,omitempty" form:"firstName"`
	LastName          string    `json:"lastName,omitempty" form:"lastName"`
	LegalName         string    `json:"legalName,omitempty" form:"legalName"`
	Sex               string    `json:"sex,omitempty" form:"sex"`
	BirthDate         string    `json:"birthDate,omitempty" form:"birthDate"`
	BirthCity         string    `json:"birthCity,omitempty" form:"birthCity"`
	BirthDepartment   string    `json:"birthDepartment,omitempty" form:"birthDepartment"`
	BirthCountry      string    `json:"birthCountry,omitempty" form:"birthCountry"`
	BirthGeoPoint     *GeoPoint `json:"birthGeoPoint,omitempty" form:"-"`
	DeathDate         string    `json:"deathDate,omitempty" form:"deathDate"`
	DeathCity         string    `json:"deathCity,omitempty" form:"deathCity"`
	DeathDepartment   string    `json:"deathDepartment,omitempty" form:"deathDepartment"`
	DeathCountry      string    `json:"deathCountry,omitempty" form:"deathCountry"`
	DeathGeoPoint     *GeoPoint `json:"deathGeoPoint,omitempty" form:"-"`
	DeathAge          string    `json:"deathAge,omitempty" form:"deathAge"`
	LastSeenAliveDate string    `json:"lastSeenAliveDate,omitempty" form:"lastSeenAliveDate"`

	// 分页，对打分无影响
	Size  int    `json:"size,omitempty" form:"size"`
	Page  int    `json:"page,omitempty" form:"page"`
	Fuzzy string `json:"fuzzy,omitempty" form:"fuzzy"`
}

// ScoreParams 打分参数
type ScoreParams struct {
	PruneScore      *float64 `json:"pruneScore,omitempty" form:"pruneScore"`
	CandidateNumber int      `json:"candidateNumber,omitempty" form:"candidateNumber"`
	DateFormat      string   `json:"dateFormat,omitempty" form:"dateFormat"`
}

// SearchRequest 检索接口的请求体，查询条件和打分参数平铺
type SearchRequest struct {
	Query
	ScoreParams
}

// ScoreRequest 纯打分接口：调用方自带候选
type ScoreRequest struct {
	Query      Query       `json:"query"`
	Candidates []Person    `json:"candidates"`
	Params     ScoreParams `json:"params"`
}

// SearchResponse 检索结果
type SearchResponse struct {
	Total   int      `json:"total"`
	Persons []Person `json:"persons"`
}

// HasName 名字类条件（全文/名/姓）是否给出
func (q Query) HasName() bool {
	return q.FullText != "" || q.FirstName != "" || q.LastName != ""
}

// HasBirthLocation 出生地类条件是否给出
func (q Query) HasBirthLocation() bool {
	return q.BirthCity != "" || q.BirthCountry != "" || q.BirthDepartment != "" || q.BirthGeoPoint != nil
}

// IsEmpty 没有任何可检索条件
func (q Query) IsEmpty() bool {
	return !q.HasName() && q.Sex == "" && q.BirthDate == "" && !q.HasBirthLocation() &&
		q.DeathDate == "" && q.DeathCity == "" && q.DeathDepartment == "" && q.DeathCountry == "" &&
		q.DeathGeoPoint == nil && q.DeathAge == "" && q.LastSeenAliveDate == ""
}

// Normalize 补默认值，性别 H 统一为 M
func (q *Query) Normalize() {
	if q.Size <= 0 {
		q.Size = DefaultSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	q.Sex = strings.ToUpper(strings.TrimSpace(q.Sex))
	if strings.HasPrefix(q.Sex, "H") {
		q.Sex = "M"
	}
}

// Validate 收集所有非法字段，一次性返回
func (q Query) Validate(dateFormat string) error {
	var errs []error

	if q.Sex != "" {
		switch strings.ToUpper(q.Sex) {
		case "M", "F", "H":
		default:
			errs = append(errs, fmt.Errorf("invalid sex value: %s", q.Sex))
		}
	}

	dates := []struct {
		field string
		value string
	}{
		{"birthDate", q.BirthDate},
		{"deathDate", q.DeathDate},
		{"lastSeenAliveDate", q.LastSeenAliveDate},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		if err := validateDate(d.value, dateFormat); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s value: %s", d.field, d.value))
		}
	}

	if q.DeathAge != "" {
		if _, err := strconv.Atoi(strings.TrimSpace(q.DeathAge)); err != nil {
			errs = append(errs, fmt.Errorf("invalid deathAge value: %s", q.DeathAge))
		}
	}
	if q.Size > MaxSize {
		errs = append(errs, fmt.Errorf("invalid size value: %d (max %d)", q.Size, MaxSize))
	}
	if q.Size < 0 || q.Page < 0 {
		errs = append(errs, fmt.Errorf("invalid paging: size=%d page=%d", q.Size, q.Page))
	}
	if dateFormat != "" {
		if _, err := datefmt.Layout(dateFormat); err != nil {
			errs = append(errs, fmt.Errorf("invalid dateFormat: %w", err))
		}
	}
	return errors.Join(errs...)
}

func validateDate(value, dateFormat string) error {
	value = strings.TrimPrefix(strings.TrimSpace(value), ">")
	if dateFormat == "" {
		if !datefmt.Valid(value) {
			return fmt.Errorf("unrecognized date %q", value)
		}
		return nil
	}
	if low, high, ok := datefmt.SplitRange(value); ok {
		if _, err := datefmt.Reformat(low, dateFormat); err != nil {
			return err
		}
		_, err := datefmt.Reformat(high, dateFormat)
		return err
	}
	_, err := datefmt.Reformat(value, dateFormat)
	return err
}

// SearchDates 按 dateFormat 把日期条件改写成 DD/MM/YYYY，给检索语句使用
// 区间和 ">" 前缀保留；dateFormat 为空时原样返回
func (q Query) SearchDates(dateFormat string) (Query, error) {
	if dateFormat == "" {
		return q, nil
	}
	var errs []error
	for _, d := range []*string{&q.BirthDate, &q.DeathDate, &q.LastSeenAliveDate} {
		if *d == "" {
			continue
		}
		v, err := displayDate(*d, dateFormat)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*d = v
	}
	return q, errors.Join(errs...)
}

func displayDate(value, dateFormat string) (string, error) {
	value = strings.TrimSpace(value)
	prefix := ""
	if strings.HasPrefix(value, ">") {
		prefix, value = ">", strings.TrimPrefix(value, ">")
	}
	if low, high, ok := datefmt.SplitRange(value); ok {
		l, err := datefmt.Display(low, dateFormat)
		if err != nil {
			return "", err
		}
		h, err := datefmt.Display(high, dateFormat)
		if err != nil {
			return "", err
		}
		return prefix + l + "-" + h, nil
	}
	v, err := datefmt.Display(value, dateFormat)
	if err != nil {
		return "", err
	}
	return prefix + v, nil
}

// Validate 打分参数范围检查
func (p ScoreParams) Validate() error {
	var errs []error
	if p.PruneScore != nil && (*p.PruneScore < 0 || *p.PruneScore > 1) {
		errs = append(errs, fmt.Errorf("invalid pruneScore: %v", *p.PruneScore))
	}
	if p.CandidateNumber < 0 {
		errs = append(errs, fmt.Errorf("invalid candidateNumber: %d", p.CandidateNumber))
	}
	return errors.Join(errs...)
}
