package passes

import (
	"fmt"
	"strings"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/sexp"
)

// DataImport replaces (import "path" (raw)) children of data segments with
// a string-literal atom holding the referenced file's bytes as hex
// escapes. This lets authors embed binary assets without hand-encoding
// them.
var DataImport = linker.Pass{Name: "data_import", Run: runDataImport}

func runDataImport(mod *sexp.Node, lk *linker.Linker) error {
	if !sexp.IsModule(mod) {
		return errors.NotAModule(errors.PhaseLink, "data_import")
	}
	for _, form := range mod.Forms() {
		if !form.HasTag("data") {
			continue
		}
		for i, item := range form.Items {
			if !isRawImport(item) {
				continue
			}
			path := unquote(item.Args()[0].Text)
			raw, err := lk.LoadSource(path)
			if err != nil {
				return err
			}
			form.Items[i] = sexp.NewAtom(escapeBytes(raw))
		}
	}
	return nil
}

func isRawImport(form *sexp.Node) bool {
	if !form.HasTag("import") {
		return false
	}
	args := form.Args()
	return len(args) == 2 &&
		args[0].IsAtom() && isStringLiteral(args[0].Text) &&
		args[1].HasTag("raw")
}

func escapeBytes(data []byte) string {
	var b strings.Builder
	b.Grow(len(data)*3 + 2)
	b.WriteByte('"')
	for _, v := range data {
		fmt.Fprintf(&b, "\\%02x", v)
	}
	b.WriteByte('"')
	return b.String()
}
