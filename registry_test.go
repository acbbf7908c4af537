package docfile

import (
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name  string
	Count int
}

func (w *widget) Close() error { return nil }

type closer interface {
	Close() error
}

func newWidget() *widget { return &widget{} }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	wt := reflect.TypeOf(widget{})

	r.RegisterTypeDoc(wt, "A widget.\n")
	r.RegisterFieldDoc(wt, "Name", "The name.")
	r.RegisterMethodDoc(reflect.TypeOf(&widget{}), "Close", "Closes it.")
	r.RegisterMethodDoc(reflect.TypeOf((*closer)(nil)).Elem(), "Close", "Interface method.")
	r.RegisterFunctionDoc(newWidget, "Makes one.")
	r.RegisterValueDoc("example.com/w", "MaxWidgets", "Limit.")
	r.RegisterPackageDoc("example.com/w", "Package w.")

	text, ok := r.TypeDoc(wt)
	require.True(t, ok)
	assert.Equal(t, "A widget.\n", text)
	text, ok = r.TypeDoc(reflect.PtrTo(wt))
	require.True(t, ok)
	assert.Equal(t, "A widget.\n", text)

	text, ok = r.FieldDoc(wt, "Name")
	require.True(t, ok)
	assert.Equal(t, "The name.", text)
	_, ok = r.FieldDoc(wt, "Count")
	assert.False(t, ok)

	text, ok = r.MethodDoc(wt, "Close")
	require.True(t, ok)
	assert.Equal(t, "Closes it.", text)
	text, ok = r.MethodDoc(reflect.TypeOf(&widget{}), "Close")
	require.True(t, ok)
	assert.Equal(t, "Closes it.", text)
	text, ok = r.MethodDoc(reflect.TypeOf((*closer)(nil)).Elem(), "Close")
	require.True(t, ok)
	assert.Equal(t, "Interface method.", text)

	text, ok = r.FunctionDoc(newWidget)
	require.True(t, ok)
	assert.Equal(t, "Makes one.", text)
	_, ok = r.FunctionDoc(io.ReadAll)
	assert.False(t, ok)

	text, ok = r.ValueDoc("example.com/w", "MaxWidgets")
	require.True(t, ok)
	assert.Equal(t, "Limit.", text)
	text, ok = r.PackageDoc("example.com/w")
	require.True(t, ok)
	assert.Equal(t, "Package w.", text)

	assert.Equal(t, []string{"example.com/w"}, r.Packages())
}

func TestRegistry_AppendsParagraphs(t *testing.T) {
	r := NewRegistry()
	r.RegisterPackageDoc("p", "first")
	r.RegisterPackageDoc("p", "second\n")
	r.RegisterPackageDoc("p", "third")
	text, _ := r.PackageDoc("p")
	assert.Equal(t, "first\n\nsecond\n\nthird", text)
}

func TestRegistry_Panics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() { r.RegisterTypeDoc(reflect.TypeOf([]int{}), "x") })
	assert.Panics(t, func() { r.RegisterFieldDoc(reflect.TypeOf(0), "X", "x") })
	assert.Panics(t, func() { r.RegisterFieldDoc(reflect.TypeOf(widget{}), "Missing", "x") })
	assert.Panics(t, func() { r.RegisterFunctionDoc("not a func", "x") })
	var nilFunc func()
	assert.Panics(t, func() { r.RegisterFunctionDoc(nilFunc, "x") })
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.RegisterValueDoc("p", fmt.Sprintf("V%d", i), "doc")
			_, _ = r.ValueDoc("p", "V0")
			_ = r.Packages()
		}(i)
	}
	wg.Wait()
	for i := 0; i < 20; i++ {
		_, ok := r.ValueDoc("p", fmt.Sprintf("V%d", i))
		assert.True(t, ok)
	}
}

func TestDefaultRegistry(t *testing.T) {
	type local struct{}
	RegisterTypeDoc(reflect.TypeOf(local{}), "local type")
	text, ok := TypeDoc(reflect.TypeOf(local{}))
	require.True(t, ok)
	assert.Equal(t, "local type", text)
	assert.Same(t, defaultRegistry, DefaultRegistry())
}

func TestElementType(t *testing.T) {
	assert.Equal(t, "interface methods", InterfaceMethods.String())
	assert.Equal(t, "?42?", ElementType(42).String())
	assert.True(t, Fields.IsMember())
	assert.False(t, Functions.IsMember())
}
