package resolver

import (
	"github.com/serverlesspack/slspack/internal/modpath"
	"github.com/serverlesspack/slspack/internal/pysrc"
)

// handlerFunc handles one statement node kind. Import-bearing kinds report
// imported names into the resolution engine; compound kinds recurse into
// their bodies; the rest are explicit no-ops.
type handlerFunc func(r *Resolver, st pysrc.Statement, currentModule, currentFile string)

// statementHandlers is the dispatch table. It lists both the kinds with
// real handlers and the kinds known to carry no import statements; keeping
// the importless kinds explicit means an unknown kind is logged instead of
// silently swallowed, which is how unsupported syntax gets spotted.
func statementHandlers() map[pysrc.Kind]handlerFunc {
	return map[pysrc.Kind]handlerFunc{
		pysrc.KindImport:      handleImport,
		pysrc.KindImportFrom:  handleImportFrom,
		pysrc.KindFunctionDef: handleBody,
		pysrc.KindClassDef:    handleBody,
		pysrc.KindIf:          handleBody,
		pysrc.KindReturn:      handleNothing,
		pysrc.KindAssign:      handleNothing,
		pysrc.KindExpr:        handleNothing,
		pysrc.KindPass:        handleNothing,
		pysrc.KindFor:         handleNothing,
		pysrc.KindRaise:       handleNothing,
	}
}

func handleImport(r *Resolver, st pysrc.Statement, currentModule, currentFile string) {
	for _, name := range st.Names {
		r.resolveImport(name, currentFile)
	}
}

// handleImportFrom resolves both the source module and each imported
// member as a candidate submodule, since "from X import Y" may bind either
// a name inside X or the module X.Y.
func handleImportFrom(r *Resolver, st pysrc.Statement, currentModule, currentFile string) {
	module := st.Module
	if st.Level > 0 {
		module = modpath.ResolveRelative(currentModule, st.Level, module)
	}
	if module == "" {
		module = currentModule
	}

	r.resolveImport(module, currentFile)
	for _, name := range st.Names {
		r.resolveImport(module+"."+name, currentFile)
	}
}

func handleBody(r *Resolver, st pysrc.Statement, currentModule, currentFile string) {
	for _, child := range st.Body {
		r.processStatement(child, currentModule, currentFile)
	}
}

func handleNothing(*Resolver, pysrc.Statement, string, string) {}
