// Package datefmt 处理查询里的日期写法：掩码、区间和自定义格式
// 内部统一为 8 位 YYYYMMDD，未知段补 0
package datefmt

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var masks = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`), "${3}${2}${1}"},
	{regexp.MustCompile(`^(\d{2})/(\d{4})$`), "${2}${1}00"},
	{regexp.MustCompile(`^(\d{8})$`), "${1}"},
	{regexp.MustCompile(`^(\d{4})$`), "${1}0000"},
}

// Mask 把 DD/MM/YYYY、MM/YYYY、YYYYMMDD、YYYY 转成 YYYYMMDD
// 不认识的写法原样返回
func Mask(value string) string {
	v := strings.TrimSpace(value)
	for _, m := range masks {
		if m.re.MatchString(v) {
			return m.re.ReplaceAllString(v, m.repl)
		}
	}
	return v
}

// Valid 单个日期或区间都满足掩码
func Valid(value string) bool {
	if low, high, ok := SplitRange(value); ok {
		return valid(low) && valid(high)
	}
	return valid(value)
}

func valid(value string) bool {
	v := strings.TrimSpace(value)
	for _, m := range masks {
		if m.re.MatchString(v) {
			return true
		}
	}
	return false
}

// SplitRange 拆分 "A-B" 形式的区间
func SplitRange(value string) (string, string, bool) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return "", "", false
	}
	low, high := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if low == "" || high == "" {
		return "", "", false
	}
	return low, high, true
}

// Layout 把 moment 风格的格式 (DD/MM/YYYY) 翻译成 Go 的 layout
func Layout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("empty date format")
	}
	var b strings.Builder
	for i := 0; i < len(format); {
		switch {
		case strings.HasPrefix(format[i:], "YYYY"):
			b.WriteString("2006")
			i += 4
		case strings.HasPrefix(format[i:], "YY"):
			b.WriteString("06")
			i += 2
		case strings.HasPrefix(format[i:], "MM"):
			b.WriteString("01")
			i += 2
		case strings.HasPrefix(format[i:], "DD"):
			b.WriteString("02")
			i += 2
		case format[i] == 'M':
			b.WriteString("1")
			i++
		case format[i] == 'D':
			b.WriteString("2")
			i++
		case isLetter(format[i]):
			return "", fmt.Errorf("unsupported date token %q in format %q", format[i], format)
		default:
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String(), nil
}

// Reformat 按 format 解析 value，输出 YYYYMMDD
func Reformat(value, format string) (string, error) {
	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("parse date %q with format %q: %w", value, format, err)
	}
	return t.Format("20060102"), nil
}

// Display 输出 DD/MM/YYYY，给检索语句使用
func Display(value, format string) (string, error) {
	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("parse date %q with format %q: %w", value, format, err)
	}
	return t.Format("02/01/2006"), nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
