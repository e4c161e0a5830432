package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Text 单值或多值字符串 (历史档案里的多个名字/城市)
// 零值为空的单值
type Text struct {
	values   []string
	sequence bool
}

func Scalar(s string) Text {
	return Text{values: []string{s}}
}

func Sequence(items ...string) Text {
	return Text{values: append([]string(nil), items...), sequence: true}
}

func (t Text) IsSequence() bool {
	return t.sequence
}

// Items 返回所有取值，单值返回长度为 1 的切片
func (t Text) Items() []string {
	if len(t.values) == 0 {
		if t.sequence {
			return nil
		}
		return []string{""}
	}
	return append([]string(nil), t.values...)
}

func (t Text) First() string {
	if len(t.values) == 0 {
		return ""
	}
	return t.values[0]
}

// IsEmpty 单值为空串或多值为空列表
func (t Text) IsEmpty() bool {
	if t.sequence {
		return len(t.values) == 0
	}
	return t.First() == ""
}

// String 多值用空格拼接
func (t Text) String() string {
	return strings.Join(t.values, " ")
}

// Map 对每个取值做变换，保持单值/多值形态
func (t Text) Map(f func(string) string) Text {
	if !t.sequence {
		return Scalar(f(t.First()))
	}
	out := make([]string, len(t.values))
	for i, v := range t.values {
		out[i] = f(v)
	}
	return Text{values: out, sequence: true}
}

func (t Text) Equal(o Text) bool {
	if t.sequence != o.sequence {
		return false
	}
	a, b := t.Items(), o.Items()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t.sequence {
		if t.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(t.values)
	}
	return json.Marshal(t.First())
}

func (t *Text) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*t = Text{}
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("text: invalid array: %w", err)
		}
		*t = Sequence(items...)
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("text: expected string or array: %w", err)
	}
	*t = Scalar(v)
	return nil
}
