package host

import (
	"fmt"
	"io"
	"strings"

	"github.com/ZenLiuCN/reload"
)

const clearScreen = "\033[H\033[2J"

// Renderer draws views as text frames. Unchanged frames are skipped.
type Renderer struct {
	Out   io.Writer
	Clear bool //clear the terminal before each frame
	last  string
	drawn bool
}

// Frame formats a view, one widget per line. The empty view is an empty frame.
func Frame(v reload.View) string {
	var b strings.Builder
	for _, w := range v.Widgets {
		switch w.Kind {
		case reload.WidgetButton:
			fmt.Fprintf(&b, "[%s]\n", w.Label)
		default:
			b.WriteString(w.Label)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render draws v unless it equals the last drawn frame.
func (r *Renderer) Render(v reload.View) error {
	f := Frame(v)
	if r.drawn && f == r.last {
		return nil
	}
	r.last, r.drawn = f, true
	if r.Clear {
		f = clearScreen + f
	} else {
		f = "----\n" + f
	}
	_, err := io.WriteString(r.Out, f)
	return err
}
