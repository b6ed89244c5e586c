// Package app is the terminal host for the block editor: it wires the
// document store, the drag and table engines, highlighting and the session
// to a tcell screen.
package app

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/config"
	"github.com/kobzarvs/qblocks/internal/frame"
	"github.com/kobzarvs/qblocks/internal/highlight"
	"github.com/kobzarvs/qblocks/internal/logger"
	"github.com/kobzarvs/qblocks/internal/session"
	"github.com/kobzarvs/qblocks/internal/treesitter"
)

// App is the top-level runtime for qblocks.
type App struct {
	args  []string
	debug bool
}

func New(args []string, debug bool) *App {
	return &App{args: args, debug: debug}
}

func (a *App) Run() error {
	if err := logger.Init(a.debug); err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	reg := highlight.Default()
	if err := langs.Apply(reg); err != nil {
		logger.Warn("language rules skipped", "error", err)
	}

	ts := treesitter.New()
	if err := ts.Start(); err != nil {
		logger.Warn("tree-sitter grammars unavailable", "error", err)
	}
	defer ts.Stop()
	reg.SetBackend(ts)

	var path string
	if len(a.args) > 0 {
		path = a.args[0]
	}
	sm, err := session.NewManager(path, time.Duration(cfg.Editor.AutosaveSeconds)*time.Second)
	if err != nil {
		return err
	}
	defer func() {
		if err := sm.Stop(); err != nil {
			logger.Error("final save failed", "path", sm.Path(), "error", err)
		}
	}()

	doc, loaded := sm.Document()
	store, err := block.Open(doc, block.Options{CodeLanguage: cfg.Editor.DefaultCodeLanguage})
	if err != nil {
		return err
	}
	untrack := sm.Track(store)
	defer untrack()
	logger.Info("document opened", "path", sm.Path(), "loaded", loaded, "blocks", store.Len())

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	ticker := frame.NewTicker(time.Duration(cfg.Editor.FrameMillis)*time.Millisecond, func(fn func()) error {
		return s.PostEvent(tcell.NewEventInterrupt(fn))
	})
	defer ticker.Stop()

	v := newView(cfg, store, reg, ticker)
	v.dirty = sm.Dirty
	v.save = sm.ForceSave
	loop(s, v)
	return nil
}

// loop draws and dispatches events until the view asks to quit or the
// screen is finalized.
func loop(s tcell.Screen, v *view) {
	v.width, v.height = s.Size()
	v.relayout()
	v.draw(s)
	s.Show()
	for {
		ev := s.PollEvent()
		if ev == nil {
			return
		}
		if _, ok := ev.(*tcell.EventResize); ok {
			s.Sync()
		}
		v.handle(ev)
		if v.quit {
			return
		}
		v.draw(s)
		s.Show()
	}
}
