package passes

import (
	"strings"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/eval"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/sexp"
)

// Constexpr evaluates (<t>.constexpr ...) forms at link time and replaces
// each with the equivalent (<t>.const <value>). Expressions may reference
// the module's top-level globals (those not themselves defined via
// constexpr), which are compiled in as a prelude. After folding, a bare
// "offset=" atom followed by a folded constant collapses into a single
// offset=N memarg.
var Constexpr = linker.Pass{Name: "constexpr", Run: runConstexpr}

func runConstexpr(mod *sexp.Node, _ *linker.Linker) error {
	if !sexp.IsModule(mod) {
		return errors.NotAModule(errors.PhaseEval, "constexpr")
	}

	prelude := preludeGlobals(mod)

	var evalErr error
	mod.Walk(func(n *sexp.Node) bool {
		tag := n.Tag()
		if !strings.HasSuffix(tag, ".constexpr") {
			return true
		}
		typ := strings.TrimSuffix(tag, ".constexpr")
		args := n.Args()
		if len(args) == 0 {
			evalErr = errors.InvalidForm(errors.PhaseEval, "%s form is missing its expression", tag)
			return false
		}
		value, err := eval.Value(typ, args[0], prelude)
		if err != nil {
			evalErr = err
			return false
		}
		n.Items = []*sexp.Node{sexp.NewAtom(typ + ".const"), sexp.NewAtom(value)}
		return true
	})
	if evalErr != nil {
		return evalErr
	}

	mergeOffsetMemargs(mod)
	return nil
}

// preludeGlobals returns the module's top-level globals that do not
// themselves contain constexpr forms; those are safe to compile into the
// evaluation module so expressions can global.get them.
func preludeGlobals(mod *sexp.Node) []*sexp.Node {
	var globals []*sexp.Node
	for _, form := range mod.Forms() {
		if !form.HasTag("global") {
			continue
		}
		hasConstexpr := false
		form.Walk(func(n *sexp.Node) bool {
			if strings.HasSuffix(n.Tag(), ".constexpr") {
				hasConstexpr = true
				return false
			}
			return true
		})
		if !hasConstexpr {
			globals = append(globals, form)
		}
	}
	return globals
}

// mergeOffsetMemargs rewrites the pair [offset= (<t>.const N)] into the
// single memarg atom offset=N. The pair only arises from the source syntax
// offset=(<t>.constexpr ...), which the tree model splits at the paren.
func mergeOffsetMemargs(mod *sexp.Node) {
	mod.Walk(func(n *sexp.Node) bool {
		if !n.IsList() {
			return true
		}
		for i := 0; i+1 < len(n.Items); i++ {
			item := n.Items[i]
			if !item.IsAtom() || item.Text != "offset=" {
				continue
			}
			next := n.Items[i+1]
			if !strings.HasSuffix(next.Tag(), ".const") {
				continue
			}
			args := next.Atoms()
			if len(args) != 1 {
				continue
			}
			n.Items[i] = sexp.NewAtom("offset=" + args[0])
			n.Items = append(n.Items[:i+1], n.Items[i+2:]...)
		}
		return true
	})
}
