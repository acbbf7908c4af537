package processor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRuntimeDocs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, widgetsDocs)
	writeFiles(t, dir, map[string]string{
		"widgets.go": widgetsSrc,
		"box.go": `package widgets

// @doc_file = "docs/name.md"
type Box[T any] struct {
	// @doc_file = "docs/name.md"
	Value T
}

// @doc_file = "docs/new.md"
func init() {}

// @doc_file = "docs/name.md"
var _ = 1

// @doc_file = "docs/name.md"
type Pair = struct{ A, B int }
`,
		"widgets_test.go": `package widgets

// @doc_file = "docs/new.md"
func helper() {}
`,
		"ext_test.go": `package widgets_test

// @doc_file = "docs/new.md"
func Example() {}
`,
	})

	res, out := execute(t, dir, GenerateRuntimeDocs)
	assert.Equal(t, 0, res.Diagnostics.Len(), "%v", res.Diagnostics.Items())
	require.Equal(t, []string{"example.com/widgets/widgets.docs.go"}, out.names())
	got := out.files["example.com/widgets/widgets.docs.go"].String()

	assert.Contains(t, got, "package widgets")
	assert.Contains(t, got, `"github.com/jhump/docfile"`)
	assert.Contains(t, got, `"reflect"`)
	assert.Contains(t, got, "func init() {")
	assert.Contains(t, got, `docfile.RegisterPackageDoc("example.com/widgets", "Package docs.\n")`)
	assert.Contains(t, got, `(*Widget)(nil)).Elem(), "# Widget\n\nIt is *great*.\n")`)
	assert.Contains(t, got, `(*Widget)(nil)).Elem(), "Name", "The name.\n")`)
	assert.Contains(t, got, `(*Widget)(nil)).Elem(), "Close", "Closes it.\n")`)
	assert.Contains(t, got, `(*Closer)(nil)).Elem(), "Close", "Closes it.\n")`)
	assert.Contains(t, got, `New, "Makes a new one.\n")`)
	assert.Contains(t, got, `docfile.RegisterValueDoc("example.com/widgets", "A", "The name.\n")`)
	assert.Contains(t, got, `docfile.RegisterValueDoc("example.com/widgets", "Max", "The name.\n")`)

	assert.Equal(t, 1, strings.Count(got, "RegisterPackageDoc("))
	assert.Equal(t, 1, strings.Count(got, "RegisterTypeDoc("))
	assert.Equal(t, 3, strings.Count(got, "RegisterFieldDoc("))
	assert.Equal(t, 2, strings.Count(got, "RegisterMethodDoc("))
	assert.Equal(t, 1, strings.Count(got, "RegisterFunctionDoc("))
	assert.Equal(t, 2, strings.Count(got, "RegisterValueDoc("))

	assert.NotContains(t, got, "Box")
	assert.NotContains(t, got, "Pair")
	assert.NotContains(t, got, "helper")
	assert.NotContains(t, got, "Example")
}

func TestGenerateRuntimeDocs_NothingToRegister(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.go": "package a\n\n// @doc(hidden)\ntype T int\n",
	})
	_, out := execute(t, dir, GenerateRuntimeDocs)
	assert.Empty(t, out.names())
}
