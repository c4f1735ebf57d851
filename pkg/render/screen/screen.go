// Package screen draws render views full-screen in a terminal with tcell.
package screen

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/mzt-timers/mzt-go/pkg/render"
	"github.com/mzt-timers/mzt-go/pkg/timer"
)

// Action is a user request decoded from a terminal event.
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionQuit
	ActionRedraw
)

// Screen is a full-screen countdown display.
type Screen struct {
	s   tcell.Screen
	cfg render.Config
}

// New initialises the terminal.
func New(cfg render.Config) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return Wrap(s, cfg), nil
}

// Wrap uses an already initialised tcell screen.
func Wrap(s tcell.Screen, cfg render.Config) *Screen {
	s.HideCursor()
	return &Screen{s: s, cfg: cfg}
}

// Close restores the terminal. Pending Events loops exit.
func (sc *Screen) Close() {
	sc.s.Fini()
}

func styleFor(k timer.Kind) tcell.Style {
	switch k {
	case timer.KindRunning:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	case timer.KindPaused:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
}

// Draw replaces the screen contents with v.
func (sc *Screen) Draw(v render.View) {
	sc.s.Clear()
	w, h := sc.s.Size()
	mid := h / 2
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	sc.center(mid-2, strings.ToUpper(v.Label), styleFor(v.Kind))
	sc.center(mid, v.Time, styleFor(v.Kind))

	if v.Segment > 0 {
		width := sc.cfg.Width
		if width <= 0 {
			width = min(w-4, 40)
		}
		sc.center(mid+1, render.Bar(v, width), styleFor(v.Kind))
	}
	if v.Total != "" {
		sc.center(mid+2, "total "+v.Total, dim)
	}
	if len(v.Past) > 0 {
		sc.center(mid+4, "done  "+strings.Join(v.Past, "  "), dim)
	}
	if len(v.Future) > 0 {
		sc.center(mid+5, "next  "+strings.Join(v.Future, "  "), dim)
	}

	sc.put(0, h-1, "space: pause/resume   q: quit", dim)
	sc.s.Show()
}

func (sc *Screen) center(y int, text string, style tcell.Style) {
	w, _ := sc.s.Size()
	x := (w - len([]rune(text))) / 2
	sc.put(max(x, 0), y, text, style)
}

func (sc *Screen) put(x, y int, text string, style tcell.Style) {
	w, h := sc.s.Size()
	if y < 0 || y >= h {
		return
	}
	for _, r := range text {
		if x >= w {
			return
		}
		sc.s.SetContent(x, y, r, nil, style)
		x++
	}
}

// ActionFor decodes a terminal event.
func ActionFor(ev tcell.Event) Action {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return actionForKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		return ActionRedraw
	}
	return ActionNone
}

func actionForKey(k tcell.Key, r rune) Action {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyRune:
		switch r {
		case ' ', 'p':
			return ActionToggle
		case 'q', 'Q':
			return ActionQuit
		}
	}
	return ActionNone
}

// Events polls the terminal and delivers decoded actions until ctx is done
// or the screen is closed.
func (sc *Screen) Events(ctx context.Context) <-chan Action {
	out := make(chan Action)
	go func() {
		defer close(out)
		for {
			ev := sc.s.PollEvent()
			if ev == nil {
				return
			}
			a := ActionFor(ev)
			if a == ActionRedraw {
				sc.s.Sync()
			}
			if a == ActionNone {
				continue
			}
			select {
			case out <- a:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
