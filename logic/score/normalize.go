package score

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"deces-backend/types"
)

var (
	ligatures   = strings.NewReplacer("œ", "oe", "Œ", "oe", "æ", "ae", "Æ", "ae", "ß", "ss")
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
	tokenSplit  = regexp.MustCompile(`,\s*|\s+`)
	spaceRepeat = regexp.MustCompile(`\s+`)
)

// normalize 去重音、转小写、非字母数字统一成单个空格
func normalize(s string) string {
	if s == "" {
		return ""
	}
	s = ligatures.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, norm.NFKD.String(s))
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRepeat.ReplaceAllString(s, " "))
}

// normalizeText 逐项 normalize，保持单值/多值形态
func normalizeText(t types.Text) types.Text {
	return t.Map(normalize)
}

// rule 一条正则改写，all=false 时只替换第一次匹配
type rule struct {
	re   *regexp.Regexp
	repl string
	all  bool
}

func once(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl}
}

func every(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl, all: true}
}

func (r rule) apply(s string) string {
	if r.all {
		return r.re.ReplaceAllString(s, r.repl)
	}
	loc := r.re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	dst := r.re.ExpandString(nil, r.repl, s, loc)
	return s[:loc[0]] + string(dst) + s[loc[1]:]
}

// applyRegex 先 normalize 再按顺序执行改写表
func applyRegex(t types.Text, table []rule) types.Text {
	return t.Map(func(s string) string {
		return applyRules(normalize(s), table)
	})
}

func applyRules(s string, table []rule) string {
	for _, r := range table {
		s = r.apply(s)
	}
	return s
}

// tokenize 单值含多个词时拆成多值；多值默认原样返回，flatten 时逐项拆开
func tokenize(t types.Text, flatten bool) types.Text {
	if t.IsSequence() {
		if !flatten {
			return t
		}
		var out []string
		for _, item := range t.Items() {
			out = append(out, splitTokens(item)...)
		}
		return types.Sequence(out...)
	}
	parts := splitTokens(t.First())
	if len(parts) <= 1 {
		return t
	}
	return types.Sequence(parts...)
}

func splitTokens(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{""}
	}
	return tokenSplit.Split(s, -1)
}

// isMultiToken 字符串含多个词
func isMultiToken(s string) bool {
	return len(splitTokens(s)) > 1
}
