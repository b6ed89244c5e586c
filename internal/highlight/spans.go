package highlight

import "strings"

// Span is a run of raw, unescaped text with its class. Unclassified runs
// have an empty Class.
type Span struct {
	Text  string
	Class Class
}

var entities = map[string]byte{"&amp;": '&', "&lt;": '<', "&gt;": '>'}

// Spans tokenizes code and returns it as consecutive raw-text runs, for
// hosts that color text directly instead of rendering markup. Concatenating
// the Text fields reproduces code.
func (r *Registry) Spans(code, language string) []Span {
	escaped, tokens := r.Tokens(code, language)
	var out []Span
	pos := 0
	for _, tok := range tokens {
		if tok.Start > pos {
			out = append(out, Span{Text: unescape(escaped[pos:tok.Start])})
		}
		out = append(out, Span{Text: unescape(escaped[tok.Start:tok.End]), Class: tok.Class})
		pos = tok.End
	}
	if pos < len(escaped) {
		out = append(out, Span{Text: unescape(escaped[pos:])})
	}
	return out
}

func unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' {
			if end := strings.IndexByte(s[i:], ';'); end > 0 {
				if c, ok := entities[s[i:i+end+1]]; ok {
					b.WriteByte(c)
					i += end
					continue
				}
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
