package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/kobzarvs/qblocks/internal/highlight"
)

type HighlightRule struct {
	Pattern  string `toml:"pattern"`
	Class    string `toml:"class"`
	Priority int    `toml:"priority"`
	Group    int    `toml:"group"`
}

type Language struct {
	Name    string          `toml:"name"`
	Aliases []string        `toml:"aliases"`
	Extend  bool            `toml:"extend"`
	Rules   []HighlightRule `toml:"rule"`
}

type Languages struct {
	Languages []Language `toml:"language"`
}

// Apply registers the configured languages in reg. A language with Extend
// set appends to the builtin rules instead of replacing them; its aliases
// are added either way. Rules whose
// pattern does not compile are skipped; their errors are returned combined
// after every valid rule has been registered.
func (l Languages) Apply(reg *highlight.Registry) error {
	var errs error
	for _, lang := range l.Languages {
		if lang.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("language without name"))
			continue
		}
		rules := make([]highlight.Rule, 0, len(lang.Rules))
		for i, r := range lang.Rules {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("language %s rule %d: %w", lang.Name, i, err))
				continue
			}
			rules = append(rules, highlight.Rule{
				Pattern:  re,
				Class:    highlight.Class(r.Class),
				Priority: r.Priority,
				Group:    r.Group,
			})
		}
		if lang.Extend {
			reg.Extend(lang.Name, rules...)
			reg.Alias(lang.Name, lang.Aliases...)
			continue
		}
		reg.Register(lang.Name, rules, lang.Aliases...)
	}
	return errs
}

func LoadLanguages() (Languages, error) {
	path, err := LanguagesPath()
	if err != nil {
		return Languages{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Languages{}, nil
		}
		return Languages{}, err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Languages{}, err
	}
	return cfg, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
