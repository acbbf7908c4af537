package expander

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/jhump/docfile/diag"
	"github.com/jhump/docfile/parser"
)

// ResolvePath joins the given path against the directory of the source file
// in loc. Absolute paths are returned as is.
func ResolvePath(loc diag.Span, p PathLiteral) string {
	if filepath.IsAbs(p.Path) {
		return p.Path
	}
	return filepath.Join(filepath.Dir(loc.Filename()), p.Path)
}

// SlurpAndBuild reads the file at path and returns a documentation annotation
// named docName whose value is the file's exact contents. The annotation is
// positioned at span. Any failure is returned as an *Error of kind KindIO
// anchored at span.
func SlurpAndBuild(path, docName string, span diag.Span) (parser.Annotation, error) {
	text, err := readText(path)
	if err != nil {
		return parser.Annotation{}, newIOError(span, err)
	}
	return parser.NewNameValue(docName, text, span.Start, span.End), nil
}

func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, errInvalidUTF8)
	}
	return string(data), nil
}
