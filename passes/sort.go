package passes

import (
	"sort"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/sexp"
)

// Sort stably reorders a module's top-level forms into the declaration
// order most encoders require: imports first, then declarations, then
// data and element segments, functions, exports, the start entry, and
// finally anything unrecognized. Forms within a category keep their
// relative input order, which makes the pass idempotent.
var Sort = linker.Pass{Name: "sort", Run: runSort}

// categoryRank is matched purely on a form's leading tag; cross-references
// between forms are never interpreted.
var categoryRank = map[string]int{
	"import": 0,
	"type":   1,
	"memory": 1,
	"table":  1,
	"global": 1,
	"data":   2,
	"elem":   2,
	"func":   3,
	"export": 4,
	"start":  5,
}

const unrecognizedRank = 6

func formRank(n *sexp.Node) int {
	if !n.IsList() {
		return unrecognizedRank
	}
	if r, ok := categoryRank[n.Tag()]; ok {
		return r
	}
	return unrecognizedRank
}

func runSort(mod *sexp.Node, _ *linker.Linker) error {
	if !sexp.IsModule(mod) {
		return errors.NotAModule(errors.PhaseSort, "sort")
	}
	forms := mod.Items[1:] // keep the module tag in place
	sort.SliceStable(forms, func(i, j int) bool {
		return formRank(forms[i]) < formRank(forms[j])
	})
	return nil
}
