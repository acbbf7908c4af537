package processor

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jhump/gopoet"

	"github.com/jhump/docfile"
)

var (
	docfilePkg    = gopoet.NewPackage(reflect.TypeOf(docfile.ElementType(0)).PkgPath())
	reflectTypeOf = gopoet.NewPackage("reflect").Symbol("TypeOf")
)

// GenerateRuntimeDocs is a Processor that generates a file named
// <package>.docs.go whose init function registers the expanded documentation
// with the docfile package, so that it can be queried at runtime with
// functions like docfile.TypeDoc.
//
// Elements that generated code cannot refer to are skipped: generic types
// and functions (and members of generic types), type aliases, init
// functions, blank identifiers, and anything declared in a _test.go file.
func GenerateRuntimeDocs(ctx *Context, output OutputFactory) error {
	pkg := ctx.Package
	if strings.HasSuffix(pkg.Name, "_test") {
		return nil
	}
	local := gopoet.NewPackage(pkg.PkgPath)

	initFunc := gopoet.NewFunc("init")
	n := 0
	for _, el := range ctx.ExpandedElements() {
		if reason := unregistrable(el); reason != "" {
			ctx.Logger.Debug("not registering documentation", "element", el.Name, "reason", reason)
			continue
		}
		for _, text := range el.DocTexts() {
			if n != 0 {
				initFunc.Println("")
			}
			n++
			generateRegistration(&initFunc.CodeBlock, local, pkg.PkgPath, el, text)
		}
	}
	if n == 0 {
		return nil
	}

	file := gopoet.NewGoFile(fmt.Sprintf("%s.docs.go", pkg.Name), pkg.PkgPath, pkg.Name)
	file.AddElement(initFunc)

	out, err := output(pkg, file.Name)
	if err != nil {
		return err
	}
	if err := gopoet.WriteGoFile(out, file); err != nil {
		_ = out.Close()
		return err
	}
	ctx.Logger.Info("generated runtime documentation", "package", pkg.PkgPath, "file", file.Name, "registrations", n)
	return out.Close()
}

func unregistrable(el *Element) string {
	switch {
	case el.File.IsTest():
		return "declared in a test file"
	case el.Generic:
		return "generic"
	case el.Kind == docfile.Types && el.Alias:
		return "type alias"
	case el.Ident.Name == "_":
		return "blank identifier"
	case el.Kind == docfile.Functions && el.Ident.Name == "init":
		return "init functions cannot be referenced"
	case el.Kind.IsMember() && el.Owner == "":
		return "unknown owner type"
	}
	return ""
}

func generateRegistration(cb *gopoet.CodeBlock, local gopoet.Package, pkgPath string, el *Element, text string) {
	name := el.Ident.Name
	switch el.Kind {
	case docfile.Packages:
		cb.Printlnf("%s(%q, %q)", docfilePkg.Symbol("RegisterPackageDoc"), pkgPath, text)
	case docfile.Types:
		cb.Printf("%s(", docfilePkg.Symbol("RegisterTypeDoc"))
		generateReflectType(cb, local.Symbol(name))
		cb.Printlnf(", %q)", text)
	case docfile.Fields:
		cb.Printf("%s(", docfilePkg.Symbol("RegisterFieldDoc"))
		generateReflectType(cb, local.Symbol(el.Owner))
		cb.Printlnf(", %q, %q)", name, text)
	case docfile.Methods, docfile.InterfaceMethods:
		cb.Printf("%s(", docfilePkg.Symbol("RegisterMethodDoc"))
		generateReflectType(cb, local.Symbol(el.Owner))
		cb.Printlnf(", %q, %q)", name, text)
	case docfile.Functions:
		cb.Printlnf("%s(%s, %q)", docfilePkg.Symbol("RegisterFunctionDoc"), local.Symbol(name), text)
	case docfile.Variables, docfile.Constants:
		cb.Printlnf("%s(%q, %q, %q)", docfilePkg.Symbol("RegisterValueDoc"), pkgPath, name, text)
	}
}

func generateReflectType(out *gopoet.CodeBlock, t gopoet.Symbol) {
	out.Printf("%s((*%s)(nil)).Elem()", reflectTypeOf, t)
}
