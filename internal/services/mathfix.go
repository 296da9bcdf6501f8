package services

import "strings"

// FixMathEscapes repairs double-escaped backslashes inside math spans:
// within $...$ or $$...$$ delimiters, any run of two or more backslashes
// immediately followed by an ASCII letter collapses to a single
// backslash ("\\frac" stored through one JSON round trip too many
// becomes "\frac" again). Text outside math delimiters is never touched,
// so prose that legitimately contains backslashes or braces survives
// unchanged. The repair is idempotent: after one pass every such run has
// length one, so a second pass finds nothing to do.
func FixMathEscapes(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inMath := false
	for i := 0; i < len(s); {
		c := s[i]
		if c == '$' {
			// $$ toggles the same as $: both delimiters bound a span.
			b.WriteByte(c)
			i++
			if i < len(s) && s[i] == '$' {
				b.WriteByte('$')
				i++
			}
			inMath = !inMath
			continue
		}
		if inMath && c == '\\' {
			run := 0
			for i+run < len(s) && s[i+run] == '\\' {
				run++
			}
			if run >= 2 && i+run < len(s) && isASCIILetter(s[i+run]) {
				b.WriteByte('\\')
			} else {
				b.WriteString(s[i : i+run])
			}
			i += run
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
