package catalog

// Normalize reduces s to its ASCII letters and digits, lowercased. The same
// function keys the exact-match index and normalizes queries, so
// "Warm White", "warm_white" and "WARM-WHITE" all meet at "warmwhite".
func Normalize(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			buf = append(buf, c)
		case c >= 'A' && c <= 'Z':
			buf = append(buf, c+('a'-'A'))
		}
	}
	return string(buf)
}
