// Package host runs the terminal event loop around a reload.Manager.
package host

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/ZenLiuCN/reload"
	"github.com/rs/zerolog/log"
)

// App is what the loop drives, implemented by *reload.Manager.
type App interface {
	Update(reload.Event) reload.Event
	View() reload.View
}

// Host owns the loop. Every Update and View call happens on the goroutine running Run.
type Host struct {
	App      App
	Renderer *Renderer
	Interval time.Duration
}

// input is a line typed by the user.
type input struct {
	line string
}

// Dispatch delivers ev and every follow-up event it causes, rendering a frame after each step.
// A reload therefore shows the placeholder frame before the module is swapped.
func (h *Host) Dispatch(ev reload.Event) {
	for ev != reload.EventNone {
		ev = h.App.Update(ev)
		if err := h.Renderer.Render(h.App.View()); err != nil {
			log.Warn().Err(err).Msg("render")
		}
	}
}

// Press returns the event of the button labelled label in the current view.
func (h *Host) Press(label string) (reload.Event, bool) {
	for _, w := range h.App.View().Widgets {
		if w.Kind == reload.WidgetButton && w.Label == label {
			return w.OnPress, true
		}
	}
	return reload.EventNone, false
}

// Run renders the first frame then processes ticks and input lines until ctx is done or "q" is read.
// End of input stops reading, the loop keeps ticking.
func (h *Host) Run(ctx context.Context, in io.Reader) error {
	interval := h.Interval
	if interval <= 0 {
		interval = time.Second
	}
	lines := make(chan input)
	if in != nil {
		go read(ctx, in, lines)
	} else {
		lines = nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	if err := h.Renderer.Render(h.App.View()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Dispatch(reload.EventTick)
		case l, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			switch l.line {
			case "":
			case "q", "quit":
				return nil
			default:
				if ev, found := h.Press(l.line); found {
					h.Dispatch(ev)
				} else {
					log.Warn().Str("input", l.line).Msg("no such button")
				}
			}
		}
	}
}

func read(ctx context.Context, in io.Reader, out chan<- input) {
	defer close(out)
	s := bufio.NewScanner(in)
	for s.Scan() {
		select {
		case out <- input{strings.TrimSpace(s.Text())}:
		case <-ctx.Done():
			return
		}
	}
	if err := s.Err(); err != nil {
		log.Warn().Err(err).Msg("read input")
	}
}
