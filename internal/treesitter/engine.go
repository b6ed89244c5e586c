// Package treesitter is a parser-backed tokenizer for code blocks. It
// implements highlight.Backend for the languages it has grammars for; the
// highlighter falls back to its regex rules for everything else.
package treesitter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"
	"go.uber.org/multierr"

	"github.com/kobzarvs/qblocks/internal/highlight"
	"github.com/kobzarvs/qblocks/internal/logger"
)

const cacheSize = 64

type grammar struct {
	name  string
	lang  *sitter.Language
	query string
}

func grammars() []grammar {
	return []grammar{
		{"go", golang.GetLanguage(), goQuery},
		{"yaml", yaml.GetLanguage(), yamlQuery},
		{"toml", toml.GetLanguage(), tomlQuery},
		{"bash", bash.GetLanguage(), bashQuery},
	}
}

type cacheKey struct {
	language string
	code     string
}

// Engine parses code snippets on demand. Results are cached per
// (language, code) pair since hosts re-render unchanged blocks often.
type Engine struct {
	mu      sync.Mutex
	parsers map[string]*sitter.Parser
	queries map[string]*sitter.Query
	cache   map[cacheKey][]highlight.Token
	order   []cacheKey
}

func New() *Engine {
	return &Engine{
		parsers: make(map[string]*sitter.Parser),
		queries: make(map[string]*sitter.Query),
		cache:   make(map[cacheKey][]highlight.Token),
	}
}

// Start builds a parser and compiles the highlight query for every grammar.
// A grammar whose query fails to compile is left out; the errors are
// returned together.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs error
	for _, g := range grammars() {
		query, err := sitter.NewQuery([]byte(g.query), g.lang)
		if err != nil {
			logger.Warn("tree-sitter query rejected", "language", g.name, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("%s query: %w", g.name, err))
			continue
		}
		p := sitter.NewParser()
		p.SetLanguage(g.lang)
		e.parsers[g.name] = p
		e.queries[g.name] = query
	}
	return errs
}

func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, p := range e.parsers {
		p.Close()
		delete(e.parsers, name)
	}
	for name, q := range e.queries {
		q.Close()
		delete(e.queries, name)
	}
	e.cache = make(map[cacheKey][]highlight.Token)
	e.order = nil
}

// Languages lists the languages the engine claims, sorted.
func (e *Engine) Languages() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.queries))
	for name := range e.queries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Tokens implements highlight.Backend. Offsets are bytes into code.
func (e *Engine) Tokens(language, code string) ([]highlight.Token, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	query, ok := e.queries[language]
	if !ok {
		return nil, false
	}
	key := cacheKey{language: language, code: code}
	if toks, ok := e.cache[key]; ok {
		return toks, true
	}

	source := []byte(code)
	tree, err := e.parsers[language].ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		logger.Warn("tree-sitter parse failed", "language", language, "error", err)
		return nil, false
	}
	defer tree.Close()

	toks := queryTokens(query, tree, source)
	e.remember(key, toks)
	return toks, true
}

func (e *Engine) remember(key cacheKey, toks []highlight.Token) {
	if len(e.order) >= cacheSize {
		delete(e.cache, e.order[0])
		e.order = e.order[1:]
	}
	e.cache[key] = toks
	e.order = append(e.order, key)
}

func queryTokens(query *sitter.Query, tree *sitter.Tree, source []byte) []highlight.Token {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	var out []highlight.Token
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			class, priority, ok := captureClass(query.CaptureNameForId(capture.Index))
			if !ok {
				continue
			}
			start, end := int(capture.Node.StartByte()), int(capture.Node.EndByte())
			if end <= start {
				continue
			}
			out = append(out, highlight.Token{Start: start, End: end, Class: class, Priority: priority})
		}
	}
	return out
}

// captureClass maps a query capture name to a highlight class. Captures
// without a class (variables, parameters) are dropped.
func captureClass(name string) (highlight.Class, int, bool) {
	switch name {
	case "comment":
		return highlight.ClassComment, 1, true
	case "string":
		return highlight.ClassString, 2, true
	case "keyword":
		return highlight.ClassKeyword, 3, true
	case "type":
		return highlight.ClassType, 4, true
	case "builtin":
		return highlight.ClassBuiltin, 4, true
	case "number":
		return highlight.ClassNumber, 5, true
	case "function":
		return highlight.ClassFunction, 6, true
	case "property":
		return highlight.ClassProperty, 6, true
	case "operator":
		return highlight.ClassOperator, 7, true
	case "punctuation":
		return highlight.ClassPunctuation, 8, true
	}
	return "", 0, false
}
