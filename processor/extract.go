package processor

import (
	"bytes"
	"go/ast"
	"go/token"
	"strings"
)

// annotationText is the annotation portion of a doc comment, ready to be
// parsed, along with what is needed to map parsed positions back into the
// source file.
type annotationText struct {
	buf      *bytes.Buffer
	adjuster posAdjuster
	// last is the index, in the comment group, of the last comment that
	// contributed text.
	last int
	// block is true if the text came from /* */ comments.
	block bool
}

// extractAnnotations finds the annotations in a doc comment. Annotations
// start at the first line whose text begins with '@' and run until a blank
// line, a directive (such as //go:generate), or the end of the group. It
// returns nil if the comment has no annotations.
func extractAnnotations(fset *token.FileSet, doc *ast.CommentGroup) *annotationText {
	if doc == nil {
		return nil
	}
	var buf bytes.Buffer
	var adjuster posAdjuster
	found, done := false, false
	prevSingleLine := false
	last := -1
	var pos, end token.Position
	for i, l := range doc.List {
		txt := l.Text
		singleLine := false
		if strings.HasPrefix(txt, "/*") {
			txt = txt[2:]
			txt = strings.TrimSuffix(txt, "*/")
		} else if strings.HasPrefix(txt, "//") {
			singleLine = true
			txt = txt[2:]
			if isDirective(txt) {
				if found {
					break
				}
				continue
			}
		}

		if singleLine != prevSingleLine {
			if found {
				break
			}
			prevSingleLine = singleLine
		}

		pos = fset.Position(l.Slash)
		// skip past opening "//" or "/*"
		pos.Offset += 2
		pos.Column += 2

		for _, line := range strings.Split(txt, "\n") {
			trimmed := strings.TrimSpace(line)
			if found && trimmed == "" {
				done = true
				break
			}
			if !found && trimmed != "" && trimmed[0] == '@' {
				found = true
			}
			if found {
				adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: pos})
				buf.WriteString(line)
				buf.WriteByte('\n')
				last = i
				end = pos
				end.Offset += len(line)
				end.Column += len(line)
			}
			pos.Offset += len(line) + 1
			pos.Line++
			pos.Column = 1
		}
		if done {
			break
		}
	}
	if !found {
		return nil
	}
	// the end of input maps to the end of the last line
	adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: end})
	return &annotationText{buf: &buf, adjuster: adjuster, last: last, block: !prevSingleLine}
}

// isDirective reports whether the text of a // comment, without the leading
// slashes, is a tool directive. It follows the rule of go/ast: "line ",
// "extern " and "export " comments, and "name:arg" comments such as
// "go:generate ..." or "nolint:foo".
func isDirective(txt string) bool {
	if strings.HasPrefix(txt, "line ") || strings.HasPrefix(txt, "extern ") || strings.HasPrefix(txt, "export ") {
		return true
	}
	colon := strings.IndexByte(txt, ':')
	if colon <= 0 || colon+1 >= len(txt) {
		return false
	}
	for i := 0; i <= colon+1; i++ {
		if i == colon {
			continue
		}
		b := txt[i]
		if !('a' <= b && b <= 'z' || '0' <= b && b <= '9') {
			return false
		}
	}
	return true
}

type posAdj struct {
	outOffset int
	inPos     token.Position
}

// posAdjuster maps positions in extracted annotation text to positions in
// the source file. There is one entry per extracted line plus a final entry
// for the end of input.
type posAdjuster []posAdj

func (a posAdjuster) adjustPosition(pos token.Position) token.Position {
	if len(a) == 0 || !pos.IsValid() {
		return pos
	}
	idx := pos.Line - 1
	if idx >= len(a) {
		idx = len(a) - 1
	}
	el := a[idx]
	delta := pos.Offset - el.outOffset
	if delta < 0 {
		delta = 0
	}
	var tok token.Position
	tok.Filename = el.inPos.Filename
	tok.Line = el.inPos.Line
	tok.Column = el.inPos.Column + delta
	tok.Offset = el.inPos.Offset + delta
	return tok
}

// hasAnnotationLine reports whether any line of the comment group starts
// with '@', returning the position of the comment that holds it.
func hasAnnotationLine(doc *ast.CommentGroup) (token.Pos, bool) {
	if doc == nil {
		return token.NoPos, false
	}
	for _, l := range doc.List {
		txt := strings.TrimPrefix(strings.TrimPrefix(l.Text, "//"), "/*")
		for _, line := range strings.Split(txt, "\n") {
			trimmed := strings.TrimLeft(line, " \t*")
			if strings.HasPrefix(trimmed, "@") {
				return l.Slash, true
			}
		}
	}
	return token.NoPos, false
}
