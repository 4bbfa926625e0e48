// Package pysrc parses Python source into a sequence of statement nodes
// carrying just enough structure for import discovery: the statement kind,
// any imported names, and the nested body of compound statements.
package pysrc

// Kind identifies a statement node's syntactic kind.
type Kind int

const (
	KindImport Kind = iota
	KindImportFrom
	KindFunctionDef
	KindClassDef
	KindIf
	KindFor
	KindWhile
	KindWith
	KindTry
	KindReturn
	KindRaise
	KindAssign
	KindPass
	KindExpr
	KindUnknown
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindImport:
		return "Import"
	case KindImportFrom:
		return "ImportFrom"
	case KindFunctionDef:
		return "FunctionDef"
	case KindClassDef:
		return "ClassDef"
	case KindIf:
		return "If"
	case KindFor:
		return "For"
	case KindWhile:
		return "While"
	case KindWith:
		return "With"
	case KindTry:
		return "Try"
	case KindReturn:
		return "Return"
	case KindRaise:
		return "Raise"
	case KindAssign:
		return "Assign"
	case KindPass:
		return "Pass"
	case KindExpr:
		return "Expr"
	default:
		return "Unknown"
	}
}

// Statement is one parsed statement node.
type Statement struct {
	Kind Kind
	// Names holds imported module names (import) or imported member names
	// (from-import). Aliases are dropped; the real name is what resolves.
	Names []string
	// Module is the from-import source module with leading dots trimmed.
	Module string
	// Level counts the leading dots of a relative from-import.
	Level int
	// Name is the defined name of a function or class statement.
	Name string
	// Body holds the nested statements of a compound statement.
	Body []Statement
	// Line is the 1-based source line of the statement header.
	Line int
}
