package passes

import (
	"strconv"
	"strings"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/sexp"
)

// Numerals rewrites hexadecimal (0x...) and binary (0b...) integer atoms
// to decimal, with underscore separators allowed. Downstream passes and
// plainer encoders then only ever see base-10 integers. String literals
// are never touched.
var Numerals = linker.Pass{Name: "numerals", Run: runNumerals}

func runNumerals(mod *sexp.Node, _ *linker.Linker) error {
	var rewriteErr error
	mod.Walk(func(n *sexp.Node) bool {
		if !n.IsAtom() {
			return true
		}
		text := n.Text
		neg := false
		if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
			neg = text[0] == '-'
			text = text[1:]
		}

		var base int
		switch {
		case strings.HasPrefix(text, "0x"):
			base = 16
		case strings.HasPrefix(text, "0b"):
			base = 2
		default:
			return true
		}

		v, err := strconv.ParseUint(strings.ReplaceAll(text[2:], "_", ""), base, 64)
		if err != nil {
			rewriteErr = errors.InvalidLiteral(errors.PhaseLink, n.Text)
			return false
		}
		out := strconv.FormatUint(v, 10)
		if neg {
			out = "-" + out
		}
		n.Text = out
		return true
	})
	return rewriteErr
}
