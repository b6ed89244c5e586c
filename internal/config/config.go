package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type EditorOptions struct {
	DefaultCodeLanguage string `toml:"default-code-language"`
	AutosaveSeconds     int    `toml:"autosave-seconds"`
	FrameMillis         int    `toml:"frame-ms"`
}

// DragOptions tunes drag-and-drop classification. Distances are in host
// units (terminal cells for the TUI).
type DragOptions struct {
	LateralBand float64 `toml:"lateral-band"`
	Hysteresis  float64 `toml:"hysteresis"`
}

type TableOptions struct {
	DragDistance     float64 `toml:"drag-distance"`
	HoldMillis       int     `toml:"hold-ms"`
	AutoscrollMargin float64 `toml:"autoscroll-margin"`
	AutoscrollSpeed  float64 `toml:"autoscroll-speed"`
}

type Theme struct {
	Theme               string `toml:"theme"`
	Foreground          string `toml:"foreground"`
	Background          string `toml:"background"`
	TitleForeground     string `toml:"title-foreground"`
	HandleForeground    string `toml:"handle-foreground"`
	DropForeground      string `toml:"drop-foreground"`
	SelectionBackground string `toml:"selection-background"`
	TableBorder         string `toml:"table-border"`
	SyntaxKeyword       string `toml:"syntax-keyword"`
	SyntaxString        string `toml:"syntax-string"`
	SyntaxComment       string `toml:"syntax-comment"`
	SyntaxType          string `toml:"syntax-type"`
	SyntaxFunction      string `toml:"syntax-function"`
	SyntaxNumber        string `toml:"syntax-number"`
	SyntaxOperator      string `toml:"syntax-operator"`
	SyntaxPunctuation   string `toml:"syntax-punctuation"`
	SyntaxBuiltin       string `toml:"syntax-builtin"`
	SyntaxTag           string `toml:"syntax-tag"`
	SyntaxAttr          string `toml:"syntax-attr"`
	SyntaxProperty      string `toml:"syntax-property"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Drag   DragOptions   `toml:"drag"`
	Table  TableOptions  `toml:"table"`
	Theme  Theme         `toml:"theme"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			DefaultCodeLanguage: "javascript",
			AutosaveSeconds:     15,
			FrameMillis:         16,
		},
		Drag: DragOptions{
			LateralBand: 6,
			Hysteresis:  0.5,
		},
		Table: TableOptions{
			DragDistance:     2,
			HoldMillis:       150,
			AutoscrollMargin: 4,
			AutoscrollSpeed:  8,
		},
		Theme: Theme{
			Foreground:          "#B3B1AD",
			Background:          "#0A0E14",
			TitleForeground:     "#E6B450",
			HandleForeground:    "#3E4B59",
			DropForeground:      "#59C2FF",
			SelectionBackground: "#27425A",
			TableBorder:         "#3E4B59",
			SyntaxKeyword:       "#FFA759",
			SyntaxString:        "#BAE67E",
			SyntaxComment:       "#5C6773",
			SyntaxType:          "#5CCFE6",
			SyntaxFunction:      "#FFD173",
			SyntaxNumber:        "#D4BFFF",
			SyntaxOperator:      "#F29668",
			SyntaxPunctuation:   "#C0C0C0",
			SyntaxBuiltin:       "#73D0FF",
			SyntaxTag:           "#39BAE6",
			SyntaxAttr:          "#FFD173",
			SyntaxProperty:      "#E6B673",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}

	if userCfg.Editor.DefaultCodeLanguage != "" {
		cfg.Editor.DefaultCodeLanguage = userCfg.Editor.DefaultCodeLanguage
	}
	if userCfg.Editor.AutosaveSeconds > 0 {
		cfg.Editor.AutosaveSeconds = userCfg.Editor.AutosaveSeconds
	}
	if userCfg.Editor.FrameMillis > 0 {
		cfg.Editor.FrameMillis = userCfg.Editor.FrameMillis
	}
	if userCfg.Drag.LateralBand > 0 {
		cfg.Drag.LateralBand = userCfg.Drag.LateralBand
	}
	if userCfg.Drag.Hysteresis > 0 {
		cfg.Drag.Hysteresis = userCfg.Drag.Hysteresis
	}
	if userCfg.Table.DragDistance > 0 {
		cfg.Table.DragDistance = userCfg.Table.DragDistance
	}
	if userCfg.Table.HoldMillis > 0 {
		cfg.Table.HoldMillis = userCfg.Table.HoldMillis
	}
	if userCfg.Table.AutoscrollMargin > 0 {
		cfg.Table.AutoscrollMargin = userCfg.Table.AutoscrollMargin
	}
	if userCfg.Table.AutoscrollSpeed > 0 {
		cfg.Table.AutoscrollSpeed = userCfg.Table.AutoscrollSpeed
	}

	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	set := func(field *string, v string) {
		if v != "" {
			*field = v
		}
	}
	set(&dst.Foreground, src.Foreground)
	set(&dst.Background, src.Background)
	set(&dst.TitleForeground, src.TitleForeground)
	set(&dst.HandleForeground, src.HandleForeground)
	set(&dst.DropForeground, src.DropForeground)
	set(&dst.SelectionBackground, src.SelectionBackground)
	set(&dst.TableBorder, src.TableBorder)
	set(&dst.SyntaxKeyword, src.SyntaxKeyword)
	set(&dst.SyntaxString, src.SyntaxString)
	set(&dst.SyntaxComment, src.SyntaxComment)
	set(&dst.SyntaxType, src.SyntaxType)
	set(&dst.SyntaxFunction, src.SyntaxFunction)
	set(&dst.SyntaxNumber, src.SyntaxNumber)
	set(&dst.SyntaxOperator, src.SyntaxOperator)
	set(&dst.SyntaxPunctuation, src.SyntaxPunctuation)
	set(&dst.SyntaxBuiltin, src.SyntaxBuiltin)
	set(&dst.SyntaxTag, src.SyntaxTag)
	set(&dst.SyntaxAttr, src.SyntaxAttr)
	set(&dst.SyntaxProperty, src.SyntaxProperty)
}

// SyntaxColors maps highlight classes to theme colors.
func (t Theme) SyntaxColors() map[string]string {
	return map[string]string{
		"keyword":     t.SyntaxKeyword,
		"string":      t.SyntaxString,
		"comment":     t.SyntaxComment,
		"type":        t.SyntaxType,
		"function":    t.SyntaxFunction,
		"number":      t.SyntaxNumber,
		"operator":    t.SyntaxOperator,
		"punctuation": t.SyntaxPunctuation,
		"builtin":     t.SyntaxBuiltin,
		"tag":         t.SyntaxTag,
		"attr":        t.SyntaxAttr,
		"property":    t.SyntaxProperty,
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QBLOCKS_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qblocks"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qblocks"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
