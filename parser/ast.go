package parser

import (
	"fmt"
	"go/constant"
	"go/token"
	"strconv"
	"strings"
)

// ValueNode is a node in the AST for the value half of a name/value meta
// item, such as the string literal in @doc_file = "README.md".
type ValueNode interface {
	Pos() token.Position
	End() token.Position
}

// nameNode is an AST node that represents a simple name/identifier.
type nameNode struct {
	Val string
	Pos token.Position
	End token.Position
}

// LiteralNode is a value node that represents a literal value, such as a
// number, boolean, rune, or string.
type LiteralNode struct {
	Val constant.Value // nil if literal nil
	// Raw is true if the literal was written as a raw (back-quoted) string.
	Raw      bool
	pos, end token.Position
}

// NewStringLiteral returns a literal node whose value is the given string.
// It is used to synthesize annotations that did not come from source.
func NewStringLiteral(s string, pos, end token.Position) LiteralNode {
	return LiteralNode{Val: constant.MakeString(s), pos: pos, end: end}
}

func (n LiteralNode) Pos() token.Position {
	return n.pos
}

func (n LiteralNode) End() token.Position {
	return n.end
}

// IsString returns true if the literal is a string or raw string literal.
func (n LiteralNode) IsString() bool {
	return n.Val != nil && n.Val.Kind() == constant.String
}

// StringVal returns the decoded contents of a string literal. It panics if
// the literal is not a string.
func (n LiteralNode) StringVal() string {
	return constant.StringVal(n.Val)
}

// KindName describes the kind of literal, for use in error messages.
func (n LiteralNode) KindName() string {
	if n.Val == nil {
		return "nil"
	}
	switch n.Val.Kind() {
	case constant.Bool:
		return "bool literal"
	case constant.String:
		return "string literal"
	case constant.Int:
		return "int literal"
	case constant.Float:
		return "float literal"
	case constant.Complex:
		return "imaginary literal"
	default:
		return "literal"
	}
}

func (n LiteralNode) String() string {
	if n.Val == nil {
		return "nil"
	}
	if n.IsString() {
		if n.Raw {
			return "`" + n.StringVal() + "`"
		}
		return strconv.Quote(n.StringVal())
	}
	return n.Val.String()
}

// RefNode is a value node that is a reference to an identifier, such as a
// constant name. Annotations in this package never resolve references; the
// node only exists so that such values can be reported precisely.
type RefNode struct {
	Ident Identifier
	end   token.Position
}

func (n RefNode) Pos() token.Position {
	return n.Ident.Pos
}

func (n RefNode) End() token.Position {
	return n.end
}

func (n RefNode) String() string {
	return n.Ident.String()
}

// Identifier is an AST node that refers to an identifier, possibly qualified
// with a package name/alias.
type Identifier struct {
	PackageAlias string
	Name         string
	Pos          token.Position
}

func (id Identifier) String() string {
	if id.PackageAlias == "" {
		return id.Name
	} else {
		return fmt.Sprintf("%s.%s", id.PackageAlias, id.Name)
	}
}

// MetaKind is the syntactic form of a meta item.
type MetaKind int

const (
	// Word is a bare name, as in @deprecated.
	Word MetaKind = iota
	// NameValue is a name with a value, as in @doc_file = "README.md".
	NameValue
	// List is a name with a parenthesized list of meta items, as in
	// @doc(file = "README.md", hidden).
	List
)

func (k MetaKind) String() string {
	switch k {
	case Word:
		return "word"
	case NameValue:
		return "name/value"
	case List:
		return "list"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

// MetaItem is a single structured item of metadata: an annotation body, or
// one of the entries in a list-form annotation.
type MetaItem struct {
	Name Identifier
	Kind MetaKind
	// Value is set when Kind is NameValue.
	Value ValueNode
	// List is set when Kind is List. It may be empty, as in @doc().
	List []MetaItem
	end  token.Position
}

func (m MetaItem) Pos() token.Position {
	return m.Name.Pos
}

func (m MetaItem) End() token.Position {
	return m.end
}

// Find returns the first entry of a list-form item with the given name.
func (m MetaItem) Find(name string) (MetaItem, bool) {
	for _, item := range m.List {
		if item.Name.String() == name {
			return item, true
		}
	}
	return MetaItem{}, false
}

// StringValue returns the decoded value of a name/value item whose value is
// a string literal.
func (m MetaItem) StringValue() (string, bool) {
	if m.Kind != NameValue {
		return "", false
	}
	lit, ok := m.Value.(LiteralNode)
	if !ok || !lit.IsString() {
		return "", false
	}
	return lit.StringVal(), true
}

func (m MetaItem) String() string {
	var sb strings.Builder
	m.write(&sb)
	return sb.String()
}

func (m MetaItem) write(sb *strings.Builder) {
	sb.WriteString(m.Name.String())
	switch m.Kind {
	case NameValue:
		sb.WriteString(" = ")
		sb.WriteString(fmt.Sprint(m.Value))
	case List:
		sb.WriteByte('(')
		for i, item := range m.List {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.write(sb)
		}
		sb.WriteByte(')')
	}
}

// Annotation is a fully parsed annotation: a meta item introduced by '@'.
type Annotation struct {
	MetaItem
	// At is the location of the leading '@'.
	At token.Position
	// Generated is true for annotations that were produced by a processor
	// instead of being parsed from source.
	Generated bool
}

// NewNameValue returns a synthesized name/value annotation with a string
// value, located at the given range.
func NewNameValue(name, value string, pos, end token.Position) Annotation {
	return Annotation{
		MetaItem: MetaItem{
			Name:  Identifier{Name: name, Pos: pos},
			Kind:  NameValue,
			Value: NewStringLiteral(value, pos, end),
			end:   end,
		},
		At:        pos,
		Generated: true,
	}
}

func (a Annotation) Pos() token.Position {
	return a.At
}

func (a Annotation) String() string {
	return "@" + a.MetaItem.String()
}

// Remap rewrites every position in the annotation using the given function.
// Annotations parsed from comment text report positions relative to that
// text; processors use Remap to translate them into source file positions.
func (a *Annotation) Remap(f func(token.Position) token.Position) {
	a.At = f(a.At)
	a.MetaItem = remapItem(a.MetaItem, f)
}

func remapItem(m MetaItem, f func(token.Position) token.Position) MetaItem {
	m.Name.Pos = f(m.Name.Pos)
	m.end = f(m.end)
	if m.Value != nil {
		m.Value = remapValue(m.Value, f)
	}
	if m.List != nil {
		list := make([]MetaItem, len(m.List))
		for i := range m.List {
			list[i] = remapItem(m.List[i], f)
		}
		m.List = list
	}
	return m
}

func remapValue(v ValueNode, f func(token.Position) token.Position) ValueNode {
	switch v := v.(type) {
	case LiteralNode:
		v.pos = f(v.pos)
		v.end = f(v.end)
		return v
	case RefNode:
		v.Ident.Pos = f(v.Ident.Pos)
		v.end = f(v.end)
		return v
	default:
		return v
	}
}
