package expander

import (
	"errors"
	"log/slog"

	"github.com/jhump/docfile"
	"github.com/jhump/docfile/diag"
	"github.com/jhump/docfile/parser"
)

// Item is a declared element along with its annotations. Expansion only ever
// changes Annotations.
type Item struct {
	// Name is the element's name, such as "Widget" or "Widget.Close". For
	// packages, it is the package name.
	Name string
	Kind docfile.ElementType
	// Span covers the element's declaration.
	Span        diag.Span
	Annotations []parser.Annotation
}

// WithAnnotation returns a copy of the item with the given annotation
// appended. The receiver's annotation slice is never modified.
func (it Item) WithAnnotation(a parser.Annotation) Item {
	annos := make([]parser.Annotation, len(it.Annotations), len(it.Annotations)+1)
	copy(annos, it.Annotations)
	it.Annotations = append(annos, a)
	return it
}

// Expander expands file-reference annotations of one shape.
type Expander struct {
	Shape ShapeKind
	// DocName is the name of the produced documentation annotation. If
	// empty, DefaultDocName is used.
	DocName string
	// Logger receives debug output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (e *Expander) docName() string {
	if e.DocName == "" {
		return DefaultDocName
	}
	return e.DocName
}

func (e *Expander) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Expand processes one occurrence of a file-reference annotation on item.
// The loc span is where the annotation was written; the file it names is
// resolved relative to loc's file.
//
// On success, the returned item has one more annotation than the input: the
// documentation annotation holding the referenced file's text. Otherwise the
// item is returned unchanged. Failures are reported to rep as exactly one
// error diagnostic and never returned.
func (e *Expander) Expand(item Item, anno parser.Annotation, loc diag.Span, rep diag.Reporter) Item {
	lit, ok, err := ExtractPath(e.Shape, anno)
	if err != nil {
		e.report(rep, err, "")
		return item
	}
	if !ok {
		e.logger().Debug("no file to expand", "annotation", anno.Name.String(), "pos", loc.String())
		return item
	}
	path := ResolvePath(loc, lit)
	doc, err := SlurpAndBuild(path, e.docName(), loc)
	if err != nil {
		e.report(rep, err, path)
		return item
	}
	e.logger().Debug("expanded documentation file", "annotation", anno.Name.String(), "path", path, "item", item.Name)
	return item.WithAnnotation(doc)
}

func (e *Expander) report(rep diag.Reporter, err error, path string) {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	var expErr *Error
	if !errors.As(err, &expErr) {
		diag.ReportError(rep, diag.UnknownCode, diag.Span{}, err.Error()).Emit()
		return
	}
	b := diag.ReportError(rep, expErr.Kind.Code(), expErr.Span, expErr.Message())
	if path != "" {
		b.WithNote(expErr.Span, "resolved path: "+path)
	}
	b.Emit()
}
