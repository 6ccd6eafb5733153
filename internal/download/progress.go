package download

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"flutter-bootstrap/internal/logger"
)

// Progress receives transfer updates. The total may be unknown (<= 0) until SetTotal.
type Progress interface {
	SetTotal(total int64)
	Update(done int64)
	Done()
}

// NewProgress returns a bar redrawn in place when out is a terminal, and
// coarse log lines otherwise.
func NewProgress(name string, out *os.File) Progress {
	if out != nil && (isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())) {
		return newBar(name, out)
	}
	return &logProgress{name: name}
}

// Bar renders a gradient progress bar followed by the byte count.
type Bar struct {
	name  string
	out   io.Writer
	model progress.Model
	total int64
	done  int64
}

func newBar(name string, out io.Writer) *Bar {
	return &Bar{
		name:  name,
		out:   out,
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (b *Bar) SetTotal(total int64) { b.total = total }

func (b *Bar) Update(done int64) {
	b.done = done
	fmt.Fprintf(b.out, "\r%s %s", b.name, b.render())
}

func (b *Bar) Done() {
	if b.total <= 0 {
		b.total = b.done
	}
	fmt.Fprintf(b.out, "\r%s %s\n", b.name, b.render())
}

func (b *Bar) render() string {
	if b.total <= 0 {
		return humanize.IBytes(uint64(b.done))
	}
	return fmt.Sprintf("%s %s / %s", b.model.ViewAs(fraction(b.done, b.total)),
		humanize.IBytes(uint64(b.done)), humanize.IBytes(uint64(b.total)))
}

// logProgress reports every 10% (or every 10 MiB when the size is unknown).
type logProgress struct {
	name     string
	total    int64
	reported int64
}

const unknownSizeStep = 10 << 20

func (p *logProgress) SetTotal(total int64) { p.total = total }

func (p *logProgress) Update(done int64) {
	if p.total > 0 {
		step := int64(fraction(done, p.total) * 10)
		if step > p.reported {
			p.reported = step
			logger.Info("[INFO] %s: %d%% (%s / %s)\n", p.name, step*10,
				humanize.IBytes(uint64(done)), humanize.IBytes(uint64(p.total)))
		}
		return
	}
	if done/unknownSizeStep > p.reported {
		p.reported = done / unknownSizeStep
		logger.Info("[INFO] %s: %s\n", p.name, humanize.IBytes(uint64(done)))
	}
}

func (p *logProgress) Done() {}

func fraction(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	f := float64(done) / float64(total)
	if f > 1 {
		return 1
	}
	return f
}
