// Package csvio 批量匹配的 CSV 读写
package csvio

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"deces-backend/types"
)

// ResultHeader 结果文件追加在原始列之后的列，按匹配记录的字段路径排列
var ResultHeader = []string{
	"score", "source", "id",
	"name.last", "name.first", "sex",
	"birth.date", "birth.location.city", "birth.location.departmentCode",
	"birth.location.country", "birth.location.countryCode",
	"birth.location.latitude", "birth.location.longitude",
	"death.date", "death.certificateId", "death.age",
	"death.location.city", "death.location.cityCode", "death.location.departmentCode",
	"death.location.country", "death.location.countryCode",
	"death.location.latitude", "death.location.longitude",
}

// resultLabel 表头里去掉 ".location"，第一个点换成空格：birth.location.city -> birth city
func resultLabel(path string) string {
	return strings.Replace(strings.Replace(path, ".location", "", 1), ".", " ", 1)
}

func separator(sep string) (rune, error) {
	if sep == "" {
		return ',', nil
	}
	if sep == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(sep)
	if size != len(sep) || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid separator %q", sep)
	}
	return r, nil
}

// ParseRows 解析上传的 CSV，列数与表头不一致的行直接跳过
func ParseRows(data []byte, opts types.BulkOptions) ([]string, []types.BulkRecord, error) {
	sep, err := separator(opts.Sep)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("empty csv")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	var records []types.BulkRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(row) != len(header) {
			continue
		}

		source := make(map[string]string, len(header))
		for i, h := range header {
			source[h] = row[i]
		}
		records = append(records, types.BulkRecord{
			Source: source,
			Query:  buildQuery(row, index, opts),
		})
	}
	return header, records, nil
}

func buildQuery(row []string, index map[string]int, opts types.BulkOptions) types.Query {
	get := func(field string) string {
		if i, ok := index[opts.Column(field)]; ok {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	q := types.Query{
		FullText:          get("q"),
		FirstName:         get("firstName"),
		LastName:          get("lastName"),
		LegalName:         get("legalName"),
		Sex:               get("sex"),
		BirthDate:         get("birthDate"),
		BirthCity:         get("birthCity"),
		BirthDepartment:   get("birthDepartment"),
		BirthCountry:      get("birthCountry"),
		DeathDate:         get("deathDate"),
		DeathCity:         get("deathCity"),
		DeathDepartment:   get("deathDepartment"),
		DeathCountry:      get("deathCountry"),
		DeathAge:          get("deathAge"),
		LastSeenAliveDate: get("lastSeenAliveDate"),
		Size:              opts.Size,
		Page:              1,
	}
	q.BirthGeoPoint = geoPoint(get("birthGeoPoint"))
	q.DeathGeoPoint = geoPoint(get("deathGeoPoint"))
	q.Normalize()
	return q
}

// geoPoint 坐标列是 JSON：{"latitude":48.85,"longitude":2.35,"distance":"10km"}
// 空值或解析失败视为没给
func geoPoint(value string) *types.GeoPoint {
	if value == "" {
		return nil
	}
	var p types.GeoPoint
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return nil
	}
	return &p
}

// WriteResults 原始列 + 结果列；没有匹配的行结果列留空
func WriteResults(w io.Writer, sep string, header []string, records []types.BulkRecord) error {
	comma, err := separator(sep)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	writer.Comma = comma

	columns := append([]string(nil), header...)
	for _, path := range ResultHeader {
		columns = append(columns, resultLabel(path))
	}
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := make([]string, 0, len(header)+len(ResultHeader))
		for _, h := range header {
			row = append(row, r.Source[h])
		}
		row = append(row, matchColumns(r.Match)...)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func matchColumns(p *types.Person) []string {
	if p == nil {
		return make([]string, len(ResultHeader))
	}
	b, d := p.Birth.Location, p.Death.Location
	age := ""
	if p.Death.Age > 0 {
		age = strconv.Itoa(p.Death.Age)
	}
	return []string{
		strconv.FormatFloat(p.Score, 'f', -1, 64), p.Source, p.ID,
		p.Name.Last.String(), p.Name.First.String(), p.Sex,
		p.Birth.Date, b.City.String(), b.DepartmentCode,
		b.Country.String(), b.CountryCode,
		coord(b.Latitude), coord(b.Longitude),
		p.Death.Date, p.Death.CertificateID, age,
		d.City.String(), d.CityCode, d.DepartmentCode,
		d.Country.String(), d.CountryCode,
		coord(d.Latitude), coord(d.Longitude),
	}
}

func coord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
