package score

// soundexCodes 法语辅音分组
var soundexCodes = map[byte]byte{
	'b': '1', 'p': '1',
	'c': '2', 'k': '2', 'q': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
	'g': '7', 'j': '7',
	'x': '8', 'z': '8', 's': '8',
	'f': '9', 'v': '9',
}

// soundex 法语 soundex：保留首字母，其余辅音编码，去掉相邻重复，补齐 4 位
func soundex(s string) string {
	letters := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			letters = append(letters, c)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	out := []byte{letters[0]}
	last := soundexCodes[letters[0]]
	for _, c := range letters[1:] {
		code, ok := soundexCodes[c]
		if !ok {
			continue // 元音及 h w y
		}
		if code == last {
			continue
		}
		out = append(out, code)
		last = code
		if len(out) == 4 {
			break
		}
	}
	for len(out) < 4 {
		out = append(out, '0')
	}
	return string(out)
}
