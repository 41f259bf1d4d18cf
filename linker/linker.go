package linker

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/loader"
	"github.com/watlink/watlink/sexp"
)

// RunFunc is a single structural transformation over a parsed module. It
// mutates the tree in place; the linker guarantees exactly one pass holds
// the tree at a time.
type RunFunc func(mod *sexp.Node, lk *Linker) error

// Pass pairs a transformation with the name callers select it by.
type Pass struct {
	Name string
	Run  RunFunc
}

// passRank fixes the relative execution order of passes. Import expansion
// must precede everything that needs to see imported forms; numerals and
// constexpr must fold before size adjustment reads offsets; sort runs last
// so earlier passes' insertions end up correctly placed. Enabling a subset
// never changes the relative order of the passes that do run.
var passRank = map[string]int{
	"import":      0,
	"data_import": 1,
	"numerals":    2,
	"constexpr":   3,
	"size_adjust": 4,
	"start_merge": 5,
	"sort":        6,
}

// Known reports whether name is a recognized pass name.
func Known(name string) bool {
	_, ok := passRank[name]
	return ok
}

// Linker orchestrates the pass pipeline over a module tree and tracks the
// import resolution stack for cycle detection. Not safe for concurrent
// use; the pipeline is strictly sequential.
type Linker struct {
	loader loader.Loader
	passes []Pass
	stack  []string
	active map[string]struct{}
}

// New creates a Linker running the given passes in their fixed rank order,
// regardless of the order they are supplied in. An unrecognized pass name
// is rejected up front.
func New(l loader.Loader, passes ...Pass) (*Linker, error) {
	for _, p := range passes {
		if !Known(p.Name) {
			return nil, errors.UnknownPass(p.Name)
		}
	}
	ordered := make([]Pass, len(passes))
	copy(ordered, passes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return passRank[ordered[i].Name] < passRank[ordered[j].Name]
	})
	return &Linker{
		loader: l,
		passes: ordered,
		active: make(map[string]struct{}),
	}, nil
}

// LinkText parses source text and runs the pipeline over it.
func (lk *Linker) LinkText(source string) (*sexp.Node, error) {
	mod, err := sexp.Parse(source)
	if err != nil {
		return nil, err
	}
	return lk.LinkModule(mod)
}

// LinkFile loads, parses and links the module at path. The entry file goes
// onto the resolution stack so a file importing itself is caught even at
// the top level.
func (lk *Linker) LinkFile(path string) (*sexp.Node, error) {
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
	mod, err := sexp.Parse(string(src))
	if err != nil {
		return nil, err
	}
	return lk.LinkModule(mod)
}

// LinkModule runs every configured pass, in rank order, over mod. The
// first failing pass aborts the run; no partially transformed tree is
// returned.
func (lk *Linker) LinkModule(mod *sexp.Node) (*sexp.Node, error) {
	for _, p := range lk.passes {
		start := time.Now()
		if err := p.Run(mod, lk); err != nil {
			return nil, err
		}
		Logger().Debug("pass complete",
			zap.String("pass", p.Name),
			zap.Duration("elapsed", time.Since(start)))
	}
	return mod, nil
}

// Canonicalize resolves a path as written in the source to the identifier
// cycle detection keys on.
func (lk *Linker) Canonicalize(path string) (string, error) {
	return lk.loader.Canonicalize(path)
}

// LoadSource fetches raw bytes for an import path through the configured
// loader.
func (lk *Linker) LoadSource(path string) ([]byte, error) {
	return lk.loader.Load(path)
}

// EnterImport pushes a canonical path onto the resolution stack. If the
// path is already being expanded the import is cyclic and the returned
// error names the whole chain, ending with the path that closed it.
func (lk *Linker) EnterImport(canonical string) error {
	if _, ok := lk.active[canonical]; ok {
		chain := append(append([]string{}, lk.stack...), canonical)
		return errors.CyclicImport(chain)
	}
	lk.stack = append(lk.stack, canonical)
	lk.active[canonical] = struct{}{}
	return nil
}

// LeaveImport pops the most recent EnterImport. A file imported from two
// independent branches is fine; only membership of the current stack
// constitutes a cycle.
func (lk *Linker) LeaveImport() {
	if len(lk.stack) == 0 {
		return
	}
	top := lk.stack[len(lk.stack)-1]
	lk.stack = lk.stack[:len(lk.stack)-1]
	delete(lk.active, top)
}
