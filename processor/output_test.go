package processor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTo(t *testing.T, factory OutputFactory, pkg *Package, name, data string) {
	t.Helper()
	w, err := factory(pkg, name)
	require.NoError(t, err)
	_, err = w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestDefaultOutputFactory(t *testing.T) {
	src := t.TempDir()
	pkg := &Package{PkgPath: "example.com/widgets", Dir: src}

	writeTo(t, DefaultOutputFactory(""), pkg, "widgets.docs.go", "package widgets\n")
	data, err := os.ReadFile(filepath.Join(src, "widgets.docs.go"))
	require.NoError(t, err)
	assert.Equal(t, "package widgets\n", string(data))

	// existing files are truncated
	writeTo(t, DefaultOutputFactory(""), pkg, "widgets.docs.go", "x")
	data, err = os.ReadFile(filepath.Join(src, "widgets.docs.go"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	root := t.TempDir()
	writeTo(t, DefaultOutputFactory(root), pkg, "widgets.go", "package widgets\n")
	data, err = os.ReadFile(filepath.Join(root, "example.com", "widgets", "widgets.go"))
	require.NoError(t, err)
	assert.Equal(t, "package widgets\n", string(data))

	_, err = DefaultOutputFactory("")(&Package{PkgPath: "example.com/nodir"}, "x.go")
	assert.ErrorContains(t, err, `"example.com/nodir"`)
}

func TestWriterOutputFactory(t *testing.T) {
	var buf bytes.Buffer
	factory := WriterOutputFactory(&buf)
	pkg := &Package{PkgPath: "example.com/widgets", Dir: filepath.FromSlash("/src/widgets")}
	writeTo(t, factory, pkg, "a.go", "package widgets\n")
	writeTo(t, factory, pkg, "b.go", "package widgets\n")

	a := filepath.Join(pkg.Dir, "a.go")
	b := filepath.Join(pkg.Dir, "b.go")
	assert.Equal(t, "// ==> "+a+" <==\npackage widgets\n// ==> "+b+" <==\npackage widgets\n", buf.String())
}
