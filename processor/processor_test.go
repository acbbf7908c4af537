package processor

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhump/docfile"
	"github.com/jhump/docfile/diag"
	"github.com/jhump/docfile/expander"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}
}

// memOutput collects outputs in memory.
type memOutput struct {
	mu    sync.Mutex
	files map[string]*bytes.Buffer
}

func newMemOutput() *memOutput {
	return &memOutput{files: map[string]*bytes.Buffer{}}
}

func (m *memOutput) factory(pkg *Package, name string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var buf bytes.Buffer
	m.files[pkg.PkgPath+"/"+name] = &buf
	return nopCloser{&buf}, nil
}

func (m *memOutput) names() []string {
	var names []string
	for n := range m.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func execute(t *testing.T, dir string, procs ...Processor) (*Result, *memOutput) {
	t.Helper()
	pkgs, err := ParseDir(dir, "example.com/widgets", true)
	require.NoError(t, err)
	out := newMemOutput()
	cfg := Config{
		Packages:      pkgs,
		Processors:    procs,
		OutputFactory: out.factory,
		Jobs:          2,
	}
	res, err := cfg.Execute(context.Background())
	require.NoError(t, err)
	return res, out
}

const widgetsSrc = `// Package widgets makes widgets.
//
// @doc_file = "pkg.md"
package widgets

// Widget is a thing.
//
// @doc(file = "docs/widget.md")
type Widget struct {
	// @doc_file = "docs/name.md"
	Name string

	// X and Y share docs.
	// @doc_file = "docs/name.md"
	X, Y int
}

// Closer closes.
type Closer interface {
	// @doc_file = "docs/close.md"
	Close() error
}

// @doc_file = "docs/close.md"
func (w *Widget) Close() error { return nil }

// @doc_file = "docs/new.md"
func New() *Widget { return &Widget{} }

var (
	// @doc_file = "docs/name.md"
	A = 1
	// @deprecated
	B = 2
)

// @doc_file = "docs/name.md"
const Max = 10

// @doc(hidden)
func Hidden() {}
`

var widgetsDocs = map[string]string{
	"pkg.md":         "Package docs.\n",
	"docs/widget.md": "# Widget\n\nIt is *great*.\n",
	"docs/name.md":   "The name.\n",
	"docs/close.md":  "Closes it.\n",
	"docs/new.md":    "Makes a new one.\n",
}

func TestExecute_FindsAndExpandsElements(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, widgetsDocs)
	writeFiles(t, dir, map[string]string{"widgets.go": widgetsSrc})

	res, _ := execute(t, dir)
	assert.Equal(t, 0, res.Diagnostics.Len(), "%v", res.Diagnostics.Items())
	require.Len(t, res.Contexts, 1)
	c := res.Contexts[0]
	assert.Equal(t, 12, c.NumElements())

	names := func(et docfile.ElementType) []string {
		var ns []string
		for _, el := range c.ElementsOfType(et) {
			ns = append(ns, el.Name)
		}
		return ns
	}
	assert.Equal(t, []string{"widgets"}, names(docfile.Packages))
	assert.Equal(t, []string{"Widget"}, names(docfile.Types))
	assert.Equal(t, []string{"Widget.Name", "Widget.X", "Widget.Y"}, names(docfile.Fields))
	assert.Equal(t, []string{"Closer.Close"}, names(docfile.InterfaceMethods))
	assert.Equal(t, []string{"Widget.Close"}, names(docfile.Methods))
	assert.Equal(t, []string{"New", "Hidden"}, names(docfile.Functions))
	assert.Equal(t, []string{"A", "B"}, names(docfile.Variables))
	assert.Equal(t, []string{"Max"}, names(docfile.Constants))

	widget := c.ElementsOfType(docfile.Types)[0]
	require.Len(t, widget.SourceAnnotations(), 1)
	assert.Equal(t, []string{"# Widget\n\nIt is *great*.\n"}, widget.DocTexts())
	assert.Equal(t, 8, widget.SourceAnnotations()[0].At.Line)
	assert.Equal(t, 4, widget.SourceAnnotations()[0].At.Column)

	method := c.ElementsOfType(docfile.Methods)[0]
	assert.Equal(t, "Widget", method.Owner)
	assert.Equal(t, []string{"Closes it.\n"}, method.DocTexts())

	for _, el := range c.ElementsOfType(docfile.Fields) {
		assert.Equal(t, []string{"The name.\n"}, el.DocTexts(), el.Name)
	}
	assert.Empty(t, c.ElementsOfType(docfile.Functions)[1].Expansions())
	assert.Empty(t, c.ElementsOfType(docfile.Variables)[1].Expansions())

	assert.Len(t, c.ExpandedElements(), 10)
	assert.Equal(t, 10, res.NumExpanded())
}

const badSrc = `package bad

// @doc_file = 42
type A int

// @doc_file = "missing.md"
type B int

// @doc(file = "ok.md"
type C int

func f() {
	// @doc_file = "ok.md"
	_ = 1
}

// @doc_file = "ok.md"
var (
	x = 1
	y = 2
)

// @doc_file = "ok.md"
type D int
`

func TestExecute_Diagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.go": badSrc, "ok.md": "ok"})

	res, _ := execute(t, dir)
	items := res.Diagnostics.Items()
	require.Len(t, items, 5, "%v", items)

	type want struct {
		sev       diag.Severity
		code      diag.Code
		line, col int
	}
	wants := []want{
		{diag.SevError, diag.DocFileSyntax, 3, 16},
		{diag.SevError, diag.DocFileIO, 6, 4},
		{diag.SevError, diag.AnnotationSyntax, 9, 23},
		{diag.SevWarning, diag.AnnotationMisplaced, 13, 5},
		{diag.SevWarning, diag.AnnotationMisplaced, 17, 4},
	}
	for i, w := range wants {
		d := items[i]
		assert.Equal(t, w.sev, d.Severity, "diagnostic %d: %v", i, d)
		assert.Equal(t, w.code, d.Code, "diagnostic %d: %v", i, d)
		assert.Equal(t, filepath.Join(dir, "bad.go"), d.Primary.Filename(), "diagnostic %d", i)
		assert.Equal(t, w.line, d.Primary.Start.Line, "diagnostic %d: %v", i, d)
		assert.Equal(t, w.col, d.Primary.Start.Column, "diagnostic %d: %v", i, d)
	}
	assert.Contains(t, items[1].Message, "no such file or directory")
	require.Len(t, items[1].Notes, 1)
	assert.Contains(t, items[1].Notes[0].Msg, filepath.Join(dir, "missing.md"))
	assert.Contains(t, items[2].Message, "malformed annotation on C")
	assert.Contains(t, items[4].Message, "grouped declaration")

	// the run continues past the errors
	c := res.Contexts[0]
	d := c.ElementsOfType(docfile.Types)
	require.Len(t, d, 3)
	assert.Equal(t, "D", d[2].Name)
	assert.Equal(t, []string{"ok"}, d[2].DocTexts())
	assert.Empty(t, d[0].Expansions())
	assert.Empty(t, d[1].Expansions())
}

// newTestRegistry registers only a direct-shape "readme" annotation that
// produces "description" annotations.
func newTestRegistry() *expander.Registry {
	r := expander.NewRegistry()
	r.RegisterShape("readme", expander.ShapeDirect, "description", nil)
	return r
}

func TestExecute_CustomRegistryNames(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.go": "package a\n\n// @readme = \"a.md\"\n// @doc_file = \"a.md\"\ntype T int\n",
		"a.md": "text",
	})
	pkgs, err := ParseDir(dir, "example.com/a", false)
	require.NoError(t, err)

	registry := newTestRegistry()
	cfg := Config{Packages: pkgs, Registry: registry}
	res, err := cfg.Execute(context.Background())
	require.NoError(t, err)
	el := res.Contexts[0].GetElement(0)
	require.Len(t, el.Expansions(), 1)
	assert.Equal(t, "description", el.Expansions()[0].Name.Name)
	assert.Equal(t, 0, res.Diagnostics.Len())
}

func TestExecute_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, widgetsDocs)
	writeFiles(t, dir, map[string]string{"widgets.go": widgetsSrc})
	pkgs, err := ParseDir(dir, "example.com/widgets", false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{Packages: pkgs}
	_, err = cfg.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
