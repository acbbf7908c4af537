package processor

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jhump/docfile/diag"
)

// RewriteSources is a Processor that writes out every source file in which
// some element gained documentation. The text of each documentation file is
// spliced into the element's doc comment, after the annotations and a blank
// comment line:
//
//	// Widget does things.
//	//
//	// @doc(file = "widget.md")
//	//
//	// <contents of widget.md>
//	type Widget struct{}
//
// Anything that follows the annotations in the doc comment is replaced, so
// rewriting a file that was already rewritten yields the same file, as long
// as the documentation files have not changed. Directives at the end of a
// doc comment, such as //go:generate lines, are kept.
//
// The output is not reformatted. Files whose content would not change are not
// written. Doc comments written with /* */ are left alone and a warning is
// reported.
func RewriteSources(ctx *Context, output OutputFactory) error {
	for _, f := range ctx.Package.Files {
		edits := fileEdits(ctx, f)
		if len(edits) == 0 {
			continue
		}
		pos := ctx.Package.Fset.Position(f.AST.Package)
		src, err := os.ReadFile(f.Name)
		if err != nil {
			return NewErrorWithPosition(pos, err)
		}
		// edits are byte offsets into the file as it was parsed
		if changedSinceLoad(ctx.Package.Fset, f, src) {
			return NewErrorWithPosition(pos, errFileChanged)
		}
		for i := range edits {
			edits[i].text = renderDocLines(indentation(src, edits[i].indentAt), edits[i].texts)
		}
		out := applyEdits(src, edits)
		if bytes.Equal(out, src) {
			ctx.Logger.Debug("file already up to date", "file", f.Name)
			continue
		}
		if err := writeOutput(ctx.Package, filepath.Base(f.Name), out, output); err != nil {
			return err
		}
		ctx.Logger.Info("rewrote source file", "file", f.Name, "elements", len(edits))
	}
	return nil
}

func writeOutput(pkg *Package, name string, data []byte, output OutputFactory) error {
	w, err := output(pkg, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	return w.Close()
}

var errFileChanged = errors.New("file changed since it was loaded")

func changedSinceLoad(fset *token.FileSet, f *File, src []byte) bool {
	if tf := fset.File(f.AST.Package); tf != nil && tf.Size() != len(src) {
		return true
	}
	return f.Hash != [sha256.Size]byte{} && f.Hash != sha256.Sum256(src)
}

// generatedMarker is the last line of the text inserted by RewriteSources.
const generatedMarker = "// Generated by docfile. DO NOT EDIT."

type edit struct {
	start, end int
	// indentAt is the offset of the doc comment's first comment, which
	// determines indentation of the inserted lines.
	indentAt int
	texts    []string
	text     string
}

func fileEdits(ctx *Context, f *File) []edit {
	fset := ctx.Package.Fset
	offset := func(p token.Pos) int {
		return fset.Position(p).Offset
	}
	var edits []edit
	// names declared together, as in "X, Y int", share a doc comment
	seen := map[*ast.CommentGroup]struct{}{}
	for _, el := range f.Elements {
		texts := el.DocTexts()
		if len(texts) == 0 {
			continue
		}
		if _, ok := seen[el.Doc]; ok {
			continue
		}
		seen[el.Doc] = struct{}{}
		if el.text.block {
			diag.ReportWarning(ctx.Reporter, diag.RewriteSkipped, diag.SpanOf(fset.Position(el.Doc.Pos()), fset.Position(el.Doc.End())),
				fmt.Sprintf("documentation for %s is not written into source: /* */ doc comments cannot be rewritten", el.Name)).Emit()
			continue
		}
		list := el.Doc.List
		start := offset(list[el.text.last].End())
		end := start
		region := docRegion(el)
		if !replaceable(region) {
			diag.ReportWarning(ctx.Reporter, diag.RewriteSkipped, diag.SpanOf(fset.Position(region[0].Pos()), fset.Position(region[len(region)-1].End())),
				fmt.Sprintf("documentation for %s is not written into source: the text after its annotations was not generated by docfile", el.Name)).
				WithNote(diag.Span{}, "move hand-written text above the annotations").Emit()
			continue
		}
		if len(region) > 0 {
			end = offset(region[len(region)-1].End())
		}
		edits = append(edits, edit{start: start, end: end, indentAt: offset(list[0].Slash), texts: texts})
	}
	return edits
}

// indentation returns the whitespace that precedes the given offset on its
// line. It returns "" if anything else precedes it.
func indentation(src []byte, off int) string {
	lineStart := bytes.LastIndexByte(src[:off], '\n') + 1
	prefix := src[lineStart:off]
	if len(bytes.TrimLeft(prefix, " \t")) != 0 {
		return ""
	}
	return string(prefix)
}

// renderDocLines renders documentation texts as // comment lines, each text
// preceded by a blank comment line. The result starts with a newline and does
// not end with one, so that it can be inserted right after a comment.
func renderDocLines(indent string, texts []string) string {
	var sb strings.Builder
	for _, text := range texts {
		text = strings.TrimSuffix(text, "\n")
		if text == "" {
			continue
		}
		sb.WriteString("\n" + indent + "//")
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSuffix(line, "\r")
			sb.WriteString("\n" + indent + "//")
			if line != "" {
				sb.WriteByte(' ')
				sb.WriteString(line)
			}
		}
	}
	if sb.Len() > 0 {
		sb.WriteString("\n" + indent + "//\n" + indent + generatedMarker)
	}
	return sb.String()
}

func applyEdits(src []byte, edits []edit) []byte {
	sort.Slice(edits, func(i, j int) bool {
		return edits[i].start > edits[j].start
	})
	out := append([]byte(nil), src...)
	for _, e := range edits {
		var buf bytes.Buffer
		buf.Grow(len(out) - (e.end - e.start) + len(e.text))
		buf.Write(out[:e.start])
		buf.WriteString(e.text)
		buf.Write(out[e.end:])
		out = buf.Bytes()
	}
	return out
}

// docRegion returns the comments of a doc comment that follow its
// annotations, up to any trailing directives.
func docRegion(el *Element) []*ast.Comment {
	list := el.Doc.List[el.text.last+1:]
	for i, c := range list {
		if isDirective(strings.TrimPrefix(c.Text, "//")) || strings.HasPrefix(c.Text, "/*") {
			return list[:i]
		}
	}
	return list
}

// replaceable reports whether the given region may be overwritten: it is
// empty, blank, or ends with the generated marker.
func replaceable(region []*ast.Comment) bool {
	if len(region) == 0 {
		return true
	}
	if strings.TrimRight(region[len(region)-1].Text, " \t\r") == generatedMarker {
		return true
	}
	for _, c := range region {
		if strings.TrimSpace(strings.TrimPrefix(c.Text, "//")) != "" {
			return false
		}
	}
	return true
}
