// Package display renders quiz feedback, tables and assistant answers for
// the terminal.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Marks printed in front of graded answers
const (
	MarkCorrect = "✅"
	MarkWrong   = "❌"
)

// Printer writes colored feedback lines. Color is switched off when the
// writer is not a terminal or NO_COLOR is set.
type Printer struct {
	w      io.Writer
	color  bool
	good   *color.Color
	bad    *color.Color
	muted  *color.Color
	accent *color.Color
}

// NewPrinter detects whether w is a color capable terminal.
func NewPrinter(w io.Writer) *Printer {
	return newPrinter(w, IsTerminal(w) && os.Getenv("NO_COLOR") == "")
}

// NewPlainPrinter never emits escape codes.
func NewPlainPrinter(w io.Writer) *Printer {
	return newPrinter(w, false)
}

func newPrinter(w io.Writer, enabled bool) *Printer {
	p := &Printer{
		w:      w,
		color:  enabled,
		good:   color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
		muted:  color.New(color.FgHiBlack),
		accent: color.New(color.FgCyan, color.Bold),
	}
	for _, c := range []*color.Color{p.good, p.bad, p.muted, p.accent} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Color reports whether escape codes are written.
func (p *Printer) Color() bool {
	return p.color
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Prompt writes text without a trailing newline.
func (p *Printer) Prompt(text string) {
	fmt.Fprint(p.w, p.accent.Sprint(text))
}

// Println writes a plain line.
func (p *Printer) Println(a ...interface{}) {
	fmt.Fprintln(p.w, a...)
}

// Printf writes formatted plain text.
func (p *Printer) Printf(format string, a ...interface{}) {
	fmt.Fprintf(p.w, format, a...)
}

// Correct prints the success mark followed by the rule, if any.
func (p *Printer) Correct(rule string) {
	line := p.good.Sprint(MarkCorrect)
	if rule != "" {
		line += " " + p.muted.Sprint(rule)
	}
	fmt.Fprintln(p.w, line)
}

// Wrong prints the failure mark, the expected answer and the rule, if any.
func (p *Printer) Wrong(expected, rule string) {
	line := p.bad.Sprint(MarkWrong) + " " + p.bad.Sprint(expected)
	if rule != "" {
		line += " " + p.muted.Sprint(rule)
	}
	fmt.Fprintln(p.w, line)
}

// Muted prints a dimmed line.
func (p *Printer) Muted(text string) {
	fmt.Fprintln(p.w, p.muted.Sprint(text))
}

// Score prints the end of session summary.
func (p *Printer) Score(correct, rounds int) {
	c := p.good
	if rounds > 0 && correct*2 < rounds {
		c = p.bad
	}
	fmt.Fprintf(p.w, "Score: %s\n", c.Sprintf("%d/%d", correct, rounds))
}
