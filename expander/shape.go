package expander

import "fmt"

// ShapeKind selects how a file-reference annotation names its file.
type ShapeKind int

const (
	// ShapeList is the @doc(file = "path") form. A missing "file" entry
	// means there is nothing to expand.
	ShapeList ShapeKind = iota
	// ShapeDirect is the @doc_file = "path" form. The value must always be
	// a string literal.
	ShapeDirect
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeList:
		return "list"
	case ShapeDirect:
		return "direct"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

// ParseShapeKind is the inverse of ShapeKind.String.
func ParseShapeKind(s string) (ShapeKind, error) {
	switch s {
	case "list":
		return ShapeList, nil
	case "direct":
		return ShapeDirect, nil
	default:
		return 0, fmt.Errorf("unknown annotation shape %q (expecting \"list\" or \"direct\")", s)
	}
}

const (
	// DefaultListName is the conventional name for list-shape annotations.
	DefaultListName = "doc"
	// DefaultDirectName is the conventional name for direct-shape
	// annotations.
	DefaultDirectName = "doc_file"
	// DefaultDocName is the name of the canonical documentation annotation
	// that expansion produces.
	DefaultDocName = "doc"
	// FileKey is the entry of a list-shape annotation that holds the path.
	FileKey = "file"
)
