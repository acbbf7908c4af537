package docfile

import "fmt"

// ElementType is an enumeration of the kinds of elements that can carry
// file-reference annotations.
type ElementType int

const (
	// Packages are package clauses. The annotation goes in the package's doc
	// comment, in any one of the package's files.
	Packages ElementType = iota

	// Types are top-level, named types. Types defined inside of functions and
	// methods are not examined.
	Types

	// Fields are fields of struct types. Only fields of top-level, named
	// types are examined. When several fields share a declaration, as in
	// "X, Y int", all of them get the same documentation.
	Fields

	// Methods are methods with bodies, declared on top-level, named types.
	Methods

	// InterfaceMethods are the methods that comprise an interface. Only
	// methods of top-level, named interfaces are examined.
	InterfaceMethods

	// Functions are top-level functions that are not methods.
	Functions

	// Variables are package-level variables.
	Variables

	// Constants are package-level constants.
	Constants
)

func (et ElementType) String() string {
	switch et {
	case Packages:
		return "packages"
	case Types:
		return "types"
	case Fields:
		return "fields"
	case Methods:
		return "methods"
	case InterfaceMethods:
		return "interface methods"
	case Functions:
		return "functions"
	case Variables:
		return "variables"
	case Constants:
		return "constants"
	default:
		return fmt.Sprintf("?%d?", int(et))
	}
}

// IsMember returns true if elements of this type belong to a named type and
// are thus identified by the type and a member name.
func (et ElementType) IsMember() bool {
	return et == Fields || et == Methods || et == InterfaceMethods
}
