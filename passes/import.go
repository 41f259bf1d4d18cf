package passes

import (
	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/sexp"
)

// Import expands (import "path" (file)) forms by splicing the referenced
// module's top-level forms in place of the import form, recursively. The
// linker's resolution stack catches true cycles; a file reachable through
// two independent branches is expanded once per reference.
var Import = linker.Pass{Name: "import", Run: runImport}

func runImport(mod *sexp.Node, lk *linker.Linker) error {
	if !sexp.IsModule(mod) {
		return errors.NotAModule(errors.PhaseLink, "import")
	}
	return expandImports(mod, lk)
}

// isFileImport matches exactly the shape this pass owns: an import form
// whose entity description is the (file) marker and whose path is a string
// literal. Regular wasm imports like (import "env" "log" (func ...)) do
// not match and pass through untouched.
func isFileImport(form *sexp.Node) bool {
	if !form.HasTag("import") {
		return false
	}
	args := form.Args()
	return len(args) == 2 &&
		args[0].IsAtom() && isStringLiteral(args[0].Text) &&
		args[1].HasTag("file")
}

func expandImports(mod *sexp.Node, lk *linker.Linker) error {
	out := make([]*sexp.Node, 0, len(mod.Items))
	for _, item := range mod.Items {
		if !isFileImport(item) {
			out = append(out, item)
			continue
		}
		forms, err := expandOne(unquote(item.Args()[0].Text), lk)
		if err != nil {
			return err
		}
		out = append(out, forms...)
	}
	mod.Items = out
	return nil
}

// expandOne loads one imported file, expands its own imports, and returns
// its top-level forms. The path stays on the resolution stack for the
// whole recursion so any way back to it is reported as a cycle.
func expandOne(path string, lk *linker.Linker) ([]*sexp.Node, error) {
	canonical, err := lk.Canonicalize(path)
	if err != nil {
		return nil, err
	}
	if err := lk.EnterImport(canonical); err != nil {
		return nil, err
	}
	defer lk.LeaveImport()

	src, err := lk.LoadSource(path)
	if err != nil {
		return nil, err
	}
	sub, err := sexp.Parse(string(src))
	if err != nil {
		return nil, err
	}
	if !sexp.IsModule(sub) {
		return nil, errors.InvalidForm(errors.PhaseLink, "imported file %q is not a module", path)
	}
	if err := expandImports(sub, lk); err != nil {
		return nil, err
	}
	return sub.Args(), nil
}
