package docfile

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

type memberKey struct {
	t    reflect.Type
	name string
}

type valueKey struct {
	pkgPath string
	name    string
}

// Registry holds documentation text for program elements. The zero value is
// not usable; use NewRegistry. Most programs use the package-level functions,
// which operate on a default registry populated by generated code.
type Registry struct {
	mu        sync.RWMutex
	types     map[reflect.Type]string
	members   map[memberKey]string
	functions map[uintptr]string
	values    map[valueKey]string
	packages  map[string]string
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:     map[reflect.Type]string{},
		members:   map[memberKey]string{},
		functions: map[uintptr]string{},
		values:    map[valueKey]string{},
		packages:  map[string]string{},
	}
}

// appendParagraph joins text onto existing, separated by a blank line.
func appendParagraph(existing, text string) string {
	if existing == "" {
		return text
	}
	if !strings.HasSuffix(existing, "\n") {
		existing += "\n"
	}
	return existing + "\n" + text
}

func addTo[K comparable](r *Registry, m map[K]string, k K, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m[k] = appendParagraph(m[k], text)
}

func getFrom[K comparable](r *Registry, m map[K]string, k K) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	text, ok := m[k]
	return text, ok
}

// RegisterTypeDoc registers documentation for the given named type.
func (r *Registry) RegisterTypeDoc(t reflect.Type, text string) {
	if t.Name() == "" {
		panic(fmt.Sprintf("cannot register documentation for unnamed type %v", t))
	}
	addTo(r, r.types, t, text)
}

// RegisterFieldDoc registers documentation for the named field of the given
// struct type.
func (r *Registry) RegisterFieldDoc(t reflect.Type, field, text string) {
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("cannot register field documentation for non-struct type %v", t))
	}
	if _, ok := t.FieldByName(field); !ok {
		panic(fmt.Sprintf("type %v has no field named %q", t, field))
	}
	addTo(r, r.members, memberKey{t: t, name: field}, text)
}

// RegisterMethodDoc registers documentation for the named method of the
// given type. The type should be the named type, not a pointer to it, even
// for methods with pointer receivers. For interface types, the method is one
// of the interface's methods.
func (r *Registry) RegisterMethodDoc(t reflect.Type, method, text string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	addTo(r, r.members, memberKey{t: t, name: method}, text)
}

// RegisterFunctionDoc registers documentation for the given function. It
// panics if fn is not a non-nil function.
func (r *Registry) RegisterFunctionDoc(fn interface{}, text string) {
	addTo(r, r.functions, funcKey(fn), text)
}

// RegisterValueDoc registers documentation for the package-level variable or
// constant with the given name in the given package.
func (r *Registry) RegisterValueDoc(pkgPath, name, text string) {
	addTo(r, r.values, valueKey{pkgPath: pkgPath, name: name}, text)
}

// RegisterPackageDoc registers documentation for the package with the given
// import path.
func (r *Registry) RegisterPackageDoc(pkgPath, text string) {
	addTo(r, r.packages, pkgPath, text)
}

// TypeDoc returns the documentation registered for the given type. If t is a
// pointer type with no documentation, its element type is queried.
func (r *Registry) TypeDoc(t reflect.Type) (string, bool) {
	if text, ok := getFrom(r, r.types, t); ok {
		return text, true
	}
	if t.Kind() == reflect.Ptr {
		return getFrom(r, r.types, t.Elem())
	}
	return "", false
}

// FieldDoc returns the documentation registered for the given field.
func (r *Registry) FieldDoc(t reflect.Type, field string) (string, bool) {
	return getFrom(r, r.members, memberKey{t: t, name: field})
}

// MethodDoc returns the documentation registered for the given method. Like
// RegisterMethodDoc, pointer types are treated as their element type.
func (r *Registry) MethodDoc(t reflect.Type, method string) (string, bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return getFrom(r, r.members, memberKey{t: t, name: method})
}

// FunctionDoc returns the documentation registered for the given function.
func (r *Registry) FunctionDoc(fn interface{}) (string, bool) {
	return getFrom(r, r.functions, funcKey(fn))
}

// ValueDoc returns the documentation registered for the given variable or
// constant.
func (r *Registry) ValueDoc(pkgPath, name string) (string, bool) {
	return getFrom(r, r.values, valueKey{pkgPath: pkgPath, name: name})
}

// PackageDoc returns the documentation registered for the given package.
func (r *Registry) PackageDoc(pkgPath string) (string, bool) {
	return getFrom(r, r.packages, pkgPath)
}

// Packages returns the import paths of all packages that have any registered
// package or value documentation, sorted.
func (r *Registry) Packages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	for p := range r.packages {
		seen[p] = struct{}{}
	}
	for k := range r.values {
		seen[k.pkgPath] = struct{}{}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func funcKey(fn interface{}) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("expecting a non-nil function, got %T", fn))
	}
	return v.Pointer()
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by the package-level functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterTypeDoc registers documentation for the given named type with the
// default registry.
func RegisterTypeDoc(t reflect.Type, text string) {
	defaultRegistry.RegisterTypeDoc(t, text)
}

// RegisterFieldDoc registers documentation for a struct field with the
// default registry.
func RegisterFieldDoc(t reflect.Type, field, text string) {
	defaultRegistry.RegisterFieldDoc(t, field, text)
}

// RegisterMethodDoc registers documentation for a method with the default
// registry.
func RegisterMethodDoc(t reflect.Type, method, text string) {
	defaultRegistry.RegisterMethodDoc(t, method, text)
}

// RegisterFunctionDoc registers documentation for a function with the
// default registry.
func RegisterFunctionDoc(fn interface{}, text string) {
	defaultRegistry.RegisterFunctionDoc(fn, text)
}

// RegisterValueDoc registers documentation for a variable or constant with
// the default registry.
func RegisterValueDoc(pkgPath, name, text string) {
	defaultRegistry.RegisterValueDoc(pkgPath, name, text)
}

// RegisterPackageDoc registers documentation for a package with the default
// registry.
func RegisterPackageDoc(pkgPath, text string) {
	defaultRegistry.RegisterPackageDoc(pkgPath, text)
}

// TypeDoc queries the default registry for type documentation.
func TypeDoc(t reflect.Type) (string, bool) {
	return defaultRegistry.TypeDoc(t)
}

// FieldDoc queries the default registry for field documentation.
func FieldDoc(t reflect.Type, field string) (string, bool) {
	return defaultRegistry.FieldDoc(t, field)
}

// MethodDoc queries the default registry for method documentation.
func MethodDoc(t reflect.Type, method string) (string, bool) {
	return defaultRegistry.MethodDoc(t, method)
}

// FunctionDoc queries the default registry for function documentation.
func FunctionDoc(fn interface{}) (string, bool) {
	return defaultRegistry.FunctionDoc(fn)
}

// ValueDoc queries the default registry for variable and constant
// documentation.
func ValueDoc(pkgPath, name string) (string, bool) {
	return defaultRegistry.ValueDoc(pkgPath, name)
}

// PackageDoc queries the default registry for package documentation.
func PackageDoc(pkgPath string) (string, bool) {
	return defaultRegistry.PackageDoc(pkgPath)
}
