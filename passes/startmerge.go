package passes

import (
	"strconv"
	"strings"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/sexp"
)

// mergedStartPrefix is reserved for synthesized start functions. A counter
// suffix disambiguates if a module already uses the bare name.
const mergedStartPrefix = "$__merged_start"

// probeLimit bounds the identifier search so a pathological module cannot
// spin the probe loop forever.
const probeLimit = 1 << 16

// StartMerge collapses multiple (start ...) entries into one synthesized
// function that calls each referenced function in encounter order. Modules
// with zero or one start entries are left untouched. Runs after import
// expansion so start entries from imported files participate.
var StartMerge = linker.Pass{Name: "start_merge", Run: runStartMerge}

func runStartMerge(mod *sexp.Node, _ *linker.Linker) error {
	if !sexp.IsModule(mod) {
		return errors.NotAModule(errors.PhaseMerge, "start_merge")
	}

	var targets []string
	for _, form := range mod.Forms() {
		if !form.HasTag("start") {
			continue
		}
		id, ok := findID(form)
		if !ok {
			return errors.InvalidForm(errors.PhaseMerge, "start entry names no function")
		}
		targets = append(targets, id)
	}
	if len(targets) <= 1 {
		return nil
	}

	name, err := freshIdentifier(mod)
	if err != nil {
		return err
	}

	items := mod.Items[:0]
	for _, item := range mod.Items {
		if item.HasTag("start") {
			continue
		}
		items = append(items, item)
	}
	mod.Items = items

	body := make([]*sexp.Node, 0, len(targets)+1)
	body = append(body, sexp.NewAtom(name))
	for _, id := range targets {
		body = append(body, sexp.Form("call", sexp.NewAtom(id)))
	}
	mod.Items = append(mod.Items, sexp.Form("func", body...))
	mod.Items = append(mod.Items, sexp.Form("start", sexp.NewAtom(name)))
	return nil
}

// freshIdentifier probes reserved-prefix candidates against every
// identifier atom in the module until one is unused.
func freshIdentifier(mod *sexp.Node) (string, error) {
	used := make(map[string]struct{})
	mod.Walk(func(n *sexp.Node) bool {
		if n.IsAtom() && strings.HasPrefix(n.Text, "$") {
			used[n.Text] = struct{}{}
		}
		return true
	})

	candidate := mergedStartPrefix
	for i := 1; ; i++ {
		if _, taken := used[candidate]; !taken {
			return candidate, nil
		}
		if i > probeLimit {
			return "", errors.DuplicateIdentifier(candidate)
		}
		candidate = mergedStartPrefix + strconv.Itoa(i)
	}
}
