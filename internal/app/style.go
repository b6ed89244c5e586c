package app

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qblocks/internal/config"
	"github.com/kobzarvs/qblocks/internal/highlight"
)

type styles struct {
	text       tcell.Style
	title      tcell.Style
	muted      tcell.Style
	handle     tcell.Style
	drop       tcell.Style
	selection  tcell.Style
	border     tcell.Style
	heading    tcell.Style
	status     tcell.Style
	menu       tcell.Style
	menuActive tcell.Style
	syntax     map[highlight.Class]tcell.Style
}

func newStyles(t config.Theme) styles {
	bg := parseColor(t.Background, tcell.ColorDefault)
	fg := parseColor(t.Foreground, tcell.ColorDefault)
	base := tcell.StyleDefault.Foreground(fg).Background(bg)
	selBg := parseColor(t.SelectionBackground, tcell.ColorNavy)
	st := styles{
		text:       base,
		title:      base.Foreground(parseColor(t.TitleForeground, fg)).Bold(true),
		muted:      base.Foreground(parseColor(t.HandleForeground, tcell.ColorGray)),
		handle:     base.Foreground(parseColor(t.HandleForeground, tcell.ColorGray)),
		drop:       base.Foreground(parseColor(t.DropForeground, tcell.ColorAqua)).Bold(true),
		selection:  base.Background(selBg),
		border:     base.Foreground(parseColor(t.TableBorder, tcell.ColorGray)),
		heading:    base.Bold(true),
		status:     base.Reverse(true),
		menu:       base.Reverse(true),
		menuActive: base.Background(selBg).Bold(true),
		syntax:     make(map[highlight.Class]tcell.Style),
	}
	for class, color := range t.SyntaxColors() {
		st.syntax[highlight.Class(class)] = base.Foreground(parseColor(color, fg))
	}
	return st
}

func (st styles) forClass(c highlight.Class) tcell.Style {
	if s, ok := st.syntax[c]; ok {
		return s
	}
	return st.text
}

// parseColor accepts "#rrggbb", a tcell color name or "default".
func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
