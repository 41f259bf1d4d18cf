package watlink

import (
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/loader"
	"github.com/watlink/watlink/passes"
	"github.com/watlink/watlink/sexp"
)

// DefaultPasses is the transform list used when none is configured: expand
// file imports and sort the result. Matches what most module authors want
// from a bare invocation.
func DefaultPasses() []string {
	return []string{"import", "sort"}
}

// Config selects the source loader and the passes a Process call runs.
// A nil Loader resolves imports from the current directory; a nil Passes
// slice means DefaultPasses.
type Config struct {
	Loader loader.Loader
	Passes []string
}

func (c Config) linker() (*linker.Linker, error) {
	l := c.Loader
	if l == nil {
		l = loader.NewFS(".")
	}
	names := c.Passes
	if names == nil {
		names = DefaultPasses()
	}
	ps, err := passes.Select(names)
	if err != nil {
		return nil, err
	}
	return linker.New(l, ps...)
}

// Process parses source text, runs the configured passes and returns the
// transformed module tree.
func Process(source string, cfg Config) (*sexp.Node, error) {
	lk, err := cfg.linker()
	if err != nil {
		return nil, err
	}
	return lk.LinkText(source)
}

// ProcessFile loads, parses and transforms the module at path. The file
// itself participates in cycle detection, so a module importing itself is
// an error rather than a hang.
func ProcessFile(path string, cfg Config) (*sexp.Node, error) {
	lk, err := cfg.linker()
	if err != nil {
		return nil, err
	}
	return lk.LinkFile(path)
}

// ProcessToString is Process plus single-line serialization, for callers
// that only want the text back.
func ProcessToString(source string, cfg Config) (string, error) {
	mod, err := Process(source, cfg)
	if err != nil {
		return "", err
	}
	return sexp.Serialize(mod), nil
}
