package expander

import (
	"errors"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhump/docfile"
	"github.com/jhump/docfile/diag"
	"github.com/jhump/docfile/parser"
)

const widgetDoc = "# Widget\n\nA widget does *widget things*.\n\n\tindented block\n"

// parseAnno parses a single annotation and positions it as if it were
// written on line 10 of the given source file.
func parseAnno(t *testing.T, srcFile, text string) parser.Annotation {
	t.Helper()
	annos, err := parser.ParseAnnotations("", strings.NewReader(text))
	require.Nil(t, err)
	require.Len(t, annos, 1)
	a := annos[0]
	a.Remap(func(p token.Position) token.Position {
		p.Filename = srcFile
		p.Line += 9
		return p
	})
	return a
}

func newItem(annos ...parser.Annotation) Item {
	return Item{Name: "Widget", Kind: docfile.Types, Annotations: annos}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func expand(shape ShapeKind, item Item, anno parser.Annotation) (Item, *diag.Bag) {
	bag := diag.NewBag(0)
	e := &Expander{Shape: shape}
	return e.Expand(item, anno, annotationSpan(anno), bag), bag
}

func TestExpand_ListShape(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "widget.go")
	writeFile(t, filepath.Join(dir, "docs", "widget.md"), widgetDoc)

	anno := parseAnno(t, src, `@doc(file = "docs/widget.md", hidden)`)
	item := newItem(anno)
	got, bag := expand(ShapeList, item, anno)

	assert.Equal(t, 0, bag.Len())
	require.Len(t, got.Annotations, 2)
	assert.Equal(t, anno.String(), got.Annotations[0].String())
	doc := got.Annotations[1]
	assert.Equal(t, DefaultDocName, doc.Name.Name)
	assert.True(t, doc.Generated)
	v, ok := doc.StringValue()
	require.True(t, ok)
	assert.Equal(t, widgetDoc, v)
	assert.Equal(t, src, doc.At.Filename)
	assert.Equal(t, 10, doc.At.Line)

	// input untouched
	assert.Len(t, item.Annotations, 1)
}

func TestExpand_DirectShape(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "widget.go")
	writeFile(t, filepath.Join(dir, "README.md"), widgetDoc)

	anno := parseAnno(t, src, "@doc_file = `README.md`")
	deprecated := parseAnno(t, src, "@deprecated")
	got, bag := expand(ShapeDirect, newItem(deprecated, anno), anno)

	assert.Equal(t, 0, bag.Len())
	require.Len(t, got.Annotations, 3)
	assert.Equal(t, "deprecated", got.Annotations[0].Name.Name)
	assert.Equal(t, "doc_file", got.Annotations[1].Name.Name)
	v, ok := got.Annotations[2].StringValue()
	require.True(t, ok)
	assert.Equal(t, widgetDoc, v)
}

func TestExpand_CustomDocName(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "widget.go")
	writeFile(t, filepath.Join(dir, "a.md"), "text")

	anno := parseAnno(t, src, `@doc_file = "a.md"`)
	e := &Expander{Shape: ShapeDirect, DocName: "description"}
	got := e.Expand(newItem(anno), anno, annotationSpan(anno), nil)
	require.Len(t, got.Annotations, 2)
	assert.Equal(t, "description", got.Annotations[1].Name.Name)
	assert.Equal(t, `@description = "text"`, got.Annotations[1].String())
}

func TestExpand_ListShapeNoOp(t *testing.T) {
	src := filepath.Join(t.TempDir(), "widget.go")
	for _, text := range []string{
		`@doc(hidden, level = 3)`,
		`@doc()`,
		`@doc(files = "x.md")`,
		`@doc = "already expanded text"`,
		`@doc`,
	} {
		t.Run(text, func(t *testing.T) {
			anno := parseAnno(t, src, text)
			item := newItem(anno)
			got, bag := expand(ShapeList, item, anno)
			assert.Equal(t, item, got)
			assert.Equal(t, 0, bag.Len())
		})
	}
}

func TestExpand_SyntaxErrors(t *testing.T) {
	src := filepath.Join(t.TempDir(), "widget.go")
	cases := []struct {
		shape      ShapeKind
		text       string
		start, end int
	}{
		// anchored at the literal
		{ShapeList, `@doc(file = 42)`, 13, 15},
		{ShapeList, `@doc(file = true, file = "a.md")`, 13, 17},
		{ShapeList, `@doc(file = 'x')`, 13, 16},
		{ShapeList, `@doc(file = pkg.Path)`, 13, 21},
		{ShapeDirect, `@doc_file = 42`, 13, 15},
		{ShapeDirect, `@doc_file = -1.5`, 13, 17},
		{ShapeDirect, `@doc_file = nil`, 13, 16},
		// anchored at the list entry
		{ShapeList, `@doc(file)`, 6, 10},
		{ShapeList, `@doc(file(name = "a.md"))`, 6, 25},
		// anchored at the annotation
		{ShapeDirect, `@doc_file`, 1, 10},
		{ShapeDirect, `@doc_file(path = "a.md")`, 1, 25},
	}
	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			anno := parseAnno(t, src, c.text)
			item := newItem(anno)
			got, bag := expand(c.shape, item, anno)
			assert.Equal(t, item, got)
			require.Equal(t, 1, bag.Len())
			d := bag.Items()[0]
			assert.Equal(t, diag.SevError, d.Severity)
			assert.Equal(t, diag.DocFileSyntax, d.Code)
			assert.Equal(t, "invalid use of the file-reference annotation; expected a string literal", d.Message)
			assert.Equal(t, src, d.Primary.Filename())
			assert.Equal(t, 10, d.Primary.Start.Line)
			assert.Equal(t, c.start, d.Primary.Start.Column)
			assert.Equal(t, c.end, d.Primary.End.Column)
			assert.Empty(t, d.Notes)
		})
	}
}

func TestExpand_PathError(t *testing.T) {
	src := filepath.Join(t.TempDir(), "widget.go")
	anno := parseAnno(t, src, `@doc(file = "docs/\x00.md")`)
	item := newItem(anno)
	got, bag := expand(ShapeList, item, anno)

	assert.Equal(t, item, got)
	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Equal(t, diag.DocFilePath, d.Code)
	assert.Equal(t, "invalid path in file-reference annotation: path contains NUL character", d.Message)
	assert.Equal(t, 13, d.Primary.Start.Column)
	assert.Equal(t, 27, d.Primary.End.Column)
}

func TestExpand_IOErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "widget.go")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	writeFile(t, filepath.Join(dir, "binary.md"), "caf\xe9")

	cases := []struct {
		name, path, cause string
	}{
		{"missing", "missing.md", "no such file or directory"},
		{"directory", "subdir", "is a directory"},
		{"not utf8", "binary.md", "not valid UTF-8"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			anno := parseAnno(t, src, `@doc_file = "`+c.path+`"`)
			item := newItem(anno)
			got, bag := expand(ShapeDirect, item, anno)

			assert.Equal(t, item, got)
			require.Equal(t, 1, bag.Len())
			d := bag.Items()[0]
			assert.Equal(t, diag.DocFileIO, d.Code)
			assert.True(t, strings.HasPrefix(d.Message, "could not read documentation file: "), d.Message)
			assert.Contains(t, d.Message, c.cause)
			// anchored at the whole annotation
			assert.Equal(t, annotationSpan(anno), d.Primary)
			require.Len(t, d.Notes, 1)
			assert.Equal(t, "resolved path: "+filepath.Join(dir, c.path), d.Notes[0].Msg)
		})
	}
}

func TestExpand_RepeatedDiagnosticsAreIdentical(t *testing.T) {
	src := filepath.Join(t.TempDir(), "widget.go")
	anno := parseAnno(t, src, `@doc(file = "nope.md")`)
	item := newItem(anno)

	_, bag1 := expand(ShapeList, item, anno)
	_, bag2 := expand(ShapeList, item, anno)
	assert.Equal(t, bag1.Items(), bag2.Items())
	assert.Len(t, item.Annotations, 1)
}

func TestExpand_OutputIsNotReexpanded(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "widget.go")
	writeFile(t, filepath.Join(dir, "a.md"), widgetDoc)

	anno := parseAnno(t, src, `@doc(file = "a.md")`)
	got, _ := expand(ShapeList, newItem(anno), anno)
	require.Len(t, got.Annotations, 2)

	again, bag := expand(ShapeList, got, got.Annotations[1])
	assert.Equal(t, got, again)
	assert.Equal(t, 0, bag.Len())
}

func TestSlurpAndBuild_KeepsCause(t *testing.T) {
	span := diag.At(tokenAt("widget.go", 3, 1))
	_, err := SlurpAndBuild(filepath.Join(t.TempDir(), "missing.md"), "doc", span)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var expErr *Error
	require.True(t, errors.As(err, &expErr))
	assert.Equal(t, KindIO, expErr.Kind)
	assert.Equal(t, span, expErr.Span)
	assert.Equal(t, span.Start, expErr.Pos())
	assert.True(t, errors.Is(expErr.Underlying(), fs.ErrNotExist))
	assert.True(t, strings.HasPrefix(err.Error(), "widget.go:3:1: could not read documentation file"), err.Error())
}

func TestSlurpAndBuild_ExactContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	contents := "  leading space\r\nunicode: é世\n\n\ntrailing blank lines\n\n"
	writeFile(t, path, contents)

	a, err := SlurpAndBuild(path, "doc", diag.Span{})
	require.NoError(t, err)
	v, ok := a.StringValue()
	require.True(t, ok)
	assert.Equal(t, contents, v)
}
