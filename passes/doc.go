// Package passes implements the structural transformations the linker can
// run over a parsed module: file import expansion, raw data imports,
// numeral normalization, constexpr folding, memory size adjustment, start
// entry merging, and top-level form sorting. Passes always execute in that
// fixed order no matter how they are selected.
package passes
