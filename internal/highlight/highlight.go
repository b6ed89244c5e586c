// Package highlight classifies source code into non-overlapping spans with
// a per-language registry of prioritized regex rules.
package highlight

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/kobzarvs/qblocks/internal/logger"
)

// Class is the semantic class of a token.
type Class string

const (
	ClassComment     Class = "comment"
	ClassString      Class = "string"
	ClassKeyword     Class = "keyword"
	ClassNumber      Class = "number"
	ClassFunction    Class = "function"
	ClassOperator    Class = "operator"
	ClassPunctuation Class = "punctuation"
	ClassType        Class = "type"
	ClassBuiltin     Class = "builtin"
	ClassTag         Class = "tag"
	ClassAttr        Class = "attr"
	ClassProperty    Class = "property"
)

// LineBreak replaces newlines in highlighted markup.
const LineBreak = "<br>"

// Rule classifies every match of Pattern. Lower Priority wins when two
// matches start at the same offset.
type Rule struct {
	Pattern  *regexp.Regexp
	Class    Class
	Priority int
	// Group selects a capture group as the token (0 for the whole match).
	Group int
}

// Token is an accepted span [Start, End) over the escaped text.
type Token struct {
	Start    int
	End      int
	Class    Class
	Priority int
}

// Backend is an alternative tokenizer that may claim a language. Its
// tokens are byte offsets into the raw, unescaped code.
type Backend interface {
	Tokens(language, code string) ([]Token, bool)
}

// Registry maps language tags to ordered rule lists.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string][]Rule
	aliases  map[string]string
	fallback []Rule
	backend  Backend
}

// NewRegistry returns an empty registry whose unknown-language fallback is
// the generic rule set.
func NewRegistry() *Registry {
	return &Registry{
		rules:    make(map[string][]Rule),
		aliases:  make(map[string]string),
		fallback: genericRules(),
	}
}

// Register installs the rule list for a language tag, replacing any
// existing one, and records aliases for it.
func (r *Registry) Register(tag string, rules []Rule, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag = normalizeTag(tag)
	r.rules[tag] = append([]Rule(nil), rules...)
	for _, a := range aliases {
		r.aliases[normalizeTag(a)] = tag
	}
}

// Extend appends rules to a language, creating it when absent.
func (r *Registry) Extend(tag string, rules ...Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag = r.resolveLocked(normalizeTag(tag))
	r.rules[tag] = append(r.rules[tag], rules...)
}

// Alias records aliases for a language tag, itself resolved first.
func (r *Registry) Alias(tag string, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag = r.resolveLocked(normalizeTag(tag))
	for _, a := range aliases {
		r.aliases[normalizeTag(a)] = tag
	}
}

// SetBackend installs a parser backend consulted before the regex rules.
func (r *Registry) SetBackend(b Backend) {
	r.mu.Lock()
	r.backend = b
	r.mu.Unlock()
}

// Languages returns the registered tags, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rules))
	for tag := range r.rules {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Resolve maps an alias to its canonical tag. Unknown tags are returned
// normalized but unchanged.
func (r *Registry) Resolve(tag string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(normalizeTag(tag))
}

func (r *Registry) resolveLocked(tag string) string {
	if canonical, ok := r.aliases[tag]; ok {
		return canonical
	}
	return tag
}

func (r *Registry) lookup(tag string) ([]Rule, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tag = r.resolveLocked(normalizeTag(tag))
	if rules, ok := r.rules[tag]; ok {
		return rules, tag
	}
	return r.fallback, tag
}

// Tokens escapes code and returns the escaped text together with the
// accepted, non-overlapping tokens sorted by offset.
func (r *Registry) Tokens(code, language string) (string, []Token) {
	escaped, offsets := escape(code)
	valid := boundaries(offsets, len(escaped))
	rules, tag := r.lookup(language)

	r.mu.RLock()
	backend := r.backend
	r.mu.RUnlock()

	var found []Token
	if backend != nil {
		if raw, ok := backend.Tokens(tag, code); ok {
			found = remap(raw, offsets)
			return escaped, resolve(found)
		}
	}
	for _, rule := range rules {
		for _, tok := range matchRule(rule, escaped) {
			// A match may not split an entity such as &lt;.
			if valid[tok.Start] && valid[tok.End] {
				found = append(found, tok)
			}
		}
	}
	return escaped, resolve(found)
}

func boundaries(offsets []int, n int) []bool {
	valid := make([]bool, n+1)
	for _, off := range offsets {
		valid[off] = true
	}
	return valid
}

// Highlight returns code as escaped markup with classified spans and
// explicit line breaks.
func (r *Registry) Highlight(code, language string) string {
	escaped, tokens := r.Tokens(code, language)
	return render(escaped, tokens)
}

// matchRule finds every non-overlapping match of one rule. A rule that
// panics is skipped and logged.
func matchRule(rule Rule, text string) (tokens []Token) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("highlight rule skipped", "class", rule.Class, "panic", fmt.Sprint(rec))
			tokens = nil
		}
	}()
	if rule.Pattern == nil {
		return nil
	}
	for _, m := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if g := rule.Group; g > 0 && 2*g+1 < len(m) {
			start, end = m[2*g], m[2*g+1]
		}
		if start < 0 || end <= start {
			continue
		}
		tokens = append(tokens, Token{Start: start, End: end, Class: rule.Class, Priority: rule.Priority})
	}
	return tokens
}

// resolve sorts tokens by start then priority and greedily keeps those
// that do not overlap an already accepted token.
func resolve(tokens []Token) []Token {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Start != tokens[j].Start {
			return tokens[i].Start < tokens[j].Start
		}
		return tokens[i].Priority < tokens[j].Priority
	})
	accepted := make([]Token, 0, len(tokens))
	end := 0
	for _, tok := range tokens {
		// Accepted tokens are disjoint and sorted, so overlap can only be
		// with the furthest accepted end.
		if tok.Start < end {
			continue
		}
		accepted = append(accepted, tok)
		end = tok.End
	}
	return accepted
}

// render wraps tokens from the end of the text toward the start so earlier
// offsets stay valid, then converts newlines.
func render(escaped string, tokens []Token) string {
	out := escaped
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		out = out[:tok.Start] + `<span class="token ` + string(tok.Class) + `">` + out[tok.Start:tok.End] + `</span>` + out[tok.End:]
	}
	return strings.ReplaceAll(out, "\n", LineBreak)
}

// escape replaces the three HTML-sensitive characters and returns, for
// every raw byte offset, the corresponding offset in the escaped text.
func escape(code string) (string, []int) {
	var b strings.Builder
	b.Grow(len(code))
	offsets := make([]int, len(code)+1)
	for i := 0; i < len(code); i++ {
		offsets[i] = b.Len()
		switch code[i] {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(code[i])
		}
	}
	offsets[len(code)] = b.Len()
	return b.String(), offsets
}

func remap(raw []Token, offsets []int) []Token {
	out := make([]Token, 0, len(raw))
	limit := len(offsets) - 1
	for _, tok := range raw {
		if tok.Start < 0 || tok.End > limit || tok.End <= tok.Start {
			continue
		}
		tok.Start = offsets[tok.Start]
		tok.End = offsets[tok.End]
		out = append(out, tok)
	}
	return out
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry preloaded with the builtin languages.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}

// Highlight highlights code with the default registry.
func Highlight(code, language string) string {
	return Default().Highlight(code, language)
}
