package diag

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// PrettyOpts controls the human-readable rendering of diagnostics.
type PrettyOpts struct {
	// Color enables ANSI colors.
	Color bool
	// Context prints the offending source line with a caret underline.
	Context bool
	// ReadFile loads source text for context lines. If nil, os.ReadFile is
	// used. Files are read at most once per call to Pretty.
	ReadFile func(filename string) ([]byte, error)
}

type palette struct {
	sev   map[Severity]*color.Color
	bold  *color.Color
	caret *color.Color
	note  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[Severity]*color.Color{
			SevError:   color.New(color.FgRed, color.Bold),
			SevWarning: color.New(color.FgYellow, color.Bold),
			SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		bold:  color.New(color.Bold),
		caret: color.New(color.FgGreen, color.Bold),
		note:  color.New(color.FgBlue, color.Bold),
	}
	for _, c := range []*color.Color{p.sev[SevError], p.sev[SevWarning], p.sev[SevInfo], p.bold, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes diagnostics in a human-readable form:
//
//	<path>:<line>:<col>: <severity>[<code>]: <message>
//	   12 | // @doc(file = "missing.md")
//	      |    ^~~~~~~~~~~~~~~~~~~~~~~~~
//	   note: <message>
//
// Diagnostics are written in the order given; callers usually sort them
// first with Bag.Sort.
func Pretty(w io.Writer, items []Diagnostic, opts PrettyOpts) error {
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	sources := map[string][][]byte{}
	lines := func(filename string) [][]byte {
		if l, ok := sources[filename]; ok {
			return l
		}
		var l [][]byte
		if data, err := readFile(filename); err == nil {
			l = bytes.Split(data, []byte("\n"))
		}
		sources[filename] = l
		return l
	}

	p := newPalette(opts.Color)
	for _, d := range items {
		sev := p.sev[d.Severity]
		if sev == nil {
			sev = p.bold
		}
		loc := "<unknown>"
		if d.Primary.IsValid() {
			loc = d.Primary.Start.String()
		}
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n",
			p.bold.Sprint(loc),
			sev.Sprintf("%s[%s]", d.Severity, d.Code),
			p.bold.Sprint(d.Message)); err != nil {
			return err
		}
		if opts.Context && d.Primary.IsValid() && d.Primary.Start.Filename != "" {
			if err := writeContext(w, p, lines(d.Primary.Start.Filename), d.Primary); err != nil {
				return err
			}
		}
		for _, n := range d.Notes {
			var err error
			if n.Span.IsValid() {
				_, err = fmt.Fprintf(w, "   %s %s: %s\n", p.note.Sprint("note:"), n.Span.Start, n.Msg)
			} else {
				_, err = fmt.Fprintf(w, "   %s %s\n", p.note.Sprint("note:"), n.Msg)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func writeContext(w io.Writer, p palette, lines [][]byte, sp Span) error {
	idx := sp.Start.Line - 1
	if idx < 0 || idx >= len(lines) {
		return nil
	}
	line := string(bytes.TrimRight(lines[idx], "\r"))
	gutter := fmt.Sprintf("%5d", sp.Start.Line)
	if _, err := fmt.Fprintf(w, "%s | %s\n", gutter, line); err != nil {
		return err
	}

	start := clamp(sp.Start.Column-1, 0, len(line))
	end := len(line)
	if sp.End.Line == sp.Start.Line && sp.End.Column > sp.Start.Column {
		end = clamp(sp.End.Column-1, start, len(line))
	}
	var pad strings.Builder
	for _, r := range line[:start] {
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
	}
	width := runewidth.StringWidth(line[start:end])
	if width < 1 {
		width = 1
	}
	underline := "^" + strings.Repeat("~", width-1)
	_, err := fmt.Fprintf(w, "%s | %s%s\n", strings.Repeat(" ", len(gutter)), pad.String(), p.caret.Sprint(underline))
	return err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
