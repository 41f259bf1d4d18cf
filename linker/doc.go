// Package linker orchestrates the pass pipeline over a parsed module.
//
// A Linker owns a loader.Loader for resolving import paths, an ordered set
// of passes, and the import resolution stack used for cycle detection.
// Passes always execute in a fixed relative order (import expansion first,
// sorting last) no matter how the caller lists them; disabling a pass only
// removes its effect. The pipeline is fail-fast: the first error from any
// pass aborts the run with no partial output.
package linker
