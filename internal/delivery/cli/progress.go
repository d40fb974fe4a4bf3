package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// progressBar redraws one line on the diagnostic stream. Every redraw is a
// single Write so it cannot interleave with log entries.
type progressBar struct {
	w      io.Writer
	bar    progress.Model
	drawn  bool
	closed bool
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) update(done, total int) {
	if total == 0 {
		return
	}
	fmt.Fprintf(p.w, "\rProgress %s %d/%d", p.bar.ViewAs(float64(done)/float64(total)), done, total)
	p.drawn = true
}

// finish ends the progress line.
func (p *progressBar) finish() {
	if p.drawn && !p.closed {
		fmt.Fprintln(p.w)
		p.closed = true
	}
}
