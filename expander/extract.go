package expander

import (
	"strings"

	"github.com/jhump/docfile/diag"
	"github.com/jhump/docfile/parser"
)

// PathLiteral is the decoded path named by a file-reference annotation,
// along with the span of the string literal that held it.
type PathLiteral struct {
	Path string
	Span diag.Span
}

// ExtractPath finds the path named by the given annotation. The shape
// determines where the path is expected to be.
//
// For ShapeList, the first list entry named "file" holds the path. If the
// annotation is not in list form or has no "file" entry, ExtractPath returns
// false and a nil error: there is nothing to expand. For ShapeDirect, the
// annotation value itself must be a string literal.
//
// The returned error, if any, is always an *Error.
func ExtractPath(shape ShapeKind, anno parser.Annotation) (PathLiteral, bool, error) {
	switch shape {
	case ShapeList:
		if anno.Kind != parser.List {
			return PathLiteral{}, false, nil
		}
		item, ok := anno.Find(FileKey)
		if !ok {
			return PathLiteral{}, false, nil
		}
		return extractLiteral(item, spanOfItem(item))
	case ShapeDirect:
		return extractLiteral(anno.MetaItem, annotationSpan(anno))
	default:
		return PathLiteral{}, false, nil
	}
}

// extractLiteral pulls a string literal out of a name/value item. When the
// item has some other form, the error is anchored at fallback.
func extractLiteral(item parser.MetaItem, fallback diag.Span) (PathLiteral, bool, error) {
	if item.Kind != parser.NameValue {
		return PathLiteral{}, false, newSyntaxError(fallback)
	}
	span := diag.SpanOf(item.Value.Pos(), item.Value.End())
	lit, ok := item.Value.(parser.LiteralNode)
	if !ok || !lit.IsString() {
		return PathLiteral{}, false, newSyntaxError(span)
	}
	p := lit.StringVal()
	if strings.IndexByte(p, 0) >= 0 {
		return PathLiteral{}, false, newPathError(span)
	}
	return PathLiteral{Path: p, Span: span}, true, nil
}

func spanOfItem(item parser.MetaItem) diag.Span {
	return diag.SpanOf(item.Pos(), item.End())
}

func annotationSpan(anno parser.Annotation) diag.Span {
	return diag.SpanOf(anno.At, anno.End())
}
