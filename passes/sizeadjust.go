package passes

import (
	"strconv"
	"strings"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/sexp"
)

// pageSize is the fixed wasm linear memory page size.
const pageSize = 65536

// SizeAdjust grows each memory declaration's minimum page count to cover
// every active data segment targeting it. Segment extents are the declared
// offset plus the decoded byte length of the literal payload; passive
// segments contribute nothing. The pass only ever grows a declared
// minimum.
var SizeAdjust = linker.Pass{Name: "size_adjust", Run: runSizeAdjust}

func runSizeAdjust(mod *sexp.Node, _ *linker.Linker) error {
	if !sexp.IsModule(mod) {
		return errors.NotAModule(errors.PhaseSize, "size_adjust")
	}

	memories, names := collectMemories(mod)

	// Group segment extents by the memory index they target.
	extents := make(map[int]uint64)
	for _, form := range mod.Forms() {
		if !form.HasTag("data") {
			continue
		}
		seg, err := analyzeSegment(form, names)
		if err != nil {
			return err
		}
		if seg == nil {
			continue // passive
		}
		if seg.memIdx >= len(memories) {
			return errors.DanglingDataTarget(uint32(seg.memIdx))
		}
		if seg.extent > extents[seg.memIdx] {
			extents[seg.memIdx] = seg.extent
		}
	}

	for idx, extent := range extents {
		adjustMemory(memories[idx], (extent+pageSize-1)/pageSize)
	}
	return nil
}

// collectMemories returns the top-level memory declarations in index order
// plus a map from $name to index.
func collectMemories(mod *sexp.Node) ([]*sexp.Node, map[string]int) {
	var decls []*sexp.Node
	names := make(map[string]int)
	for _, form := range mod.Forms() {
		if !form.HasTag("memory") {
			continue
		}
		for _, a := range form.Atoms() {
			if strings.HasPrefix(a, "$") {
				names[a] = len(decls)
				break
			}
		}
		decls = append(decls, form)
	}
	return decls, names
}

type segment struct {
	memIdx int
	extent uint64
}

// analyzeSegment classifies a data form. Active segments carry a (memory
// ...) child, an (offset ...) child, or a bare (i32.const ...) offset;
// anything else is passive and returns nil. An unresolvable memory name or
// index is the caller's dangling-target error.
func analyzeSegment(form *sexp.Node, names map[string]int) (*segment, error) {
	memForm := form.FindForm("memory")
	offsetForm := findOffset(form)
	if memForm == nil && offsetForm == nil {
		return nil, nil
	}

	memIdx := 0
	if memForm != nil {
		args := memForm.Atoms()
		if len(args) == 0 {
			return nil, errors.InvalidForm(errors.PhaseSize, "data segment memory use has no index")
		}
		if strings.HasPrefix(args[0], "$") {
			idx, ok := names[args[0]]
			if !ok {
				return nil, errors.New(errors.PhaseSize, errors.KindDanglingDataTarget).
					Detail("data segment targets undeclared memory %s", args[0]).Build()
			}
			memIdx = idx
		} else {
			idx, err := parseUint(args[0])
			if err != nil {
				return nil, errors.InvalidLiteral(errors.PhaseSize, args[0])
			}
			memIdx = int(idx)
		}
	}

	offset := uint64(0)
	if offsetForm != nil {
		v, err := constOffset(offsetForm)
		if err != nil {
			return nil, err
		}
		offset = v
	}

	length := uint64(0)
	for _, a := range form.Atoms() {
		if !isStringLiteral(a) {
			continue
		}
		n, err := decodedStringLength(unquote(a))
		if err != nil {
			return nil, err
		}
		length += uint64(n)
	}

	return &segment{memIdx: memIdx, extent: offset + length}, nil
}

func findOffset(form *sexp.Node) *sexp.Node {
	for _, f := range form.Forms() {
		if f.HasTag("offset") || f.HasTag("i32.const") {
			return f
		}
	}
	return nil
}

// constOffset extracts the literal offset from (offset (i32.const N)) or
// the abbreviated (i32.const N).
func constOffset(form *sexp.Node) (uint64, error) {
	inner := form
	if form.HasTag("offset") {
		args := form.Args()
		if len(args) != 1 || !args[0].HasTag("i32.const") {
			return 0, errors.InvalidForm(errors.PhaseSize, "offset is missing a constant expression")
		}
		inner = args[0]
	}
	atoms := inner.Atoms()
	if len(atoms) == 0 {
		return 0, errors.InvalidForm(errors.PhaseSize, "i32.const is missing its operand")
	}
	v, err := parseUint(atoms[0])
	if err != nil {
		return 0, errors.InvalidLiteral(errors.PhaseSize, atoms[0])
	}
	return v, nil
}

// adjustMemory grows the declaration's minimum size attribute to pages,
// never shrinking an already sufficient declaration.
func adjustMemory(mem *sexp.Node, pages uint64) {
	for _, item := range mem.Args() {
		if !item.IsAtom() || strings.HasPrefix(item.Text, "$") {
			continue
		}
		cur, err := parseUint(item.Text)
		if err != nil {
			continue
		}
		if cur < pages {
			item.Text = strconv.FormatUint(pages, 10)
		}
		return
	}
	mem.Items = append(mem.Items, sexp.NewAtom(strconv.FormatUint(pages, 10)))
}
