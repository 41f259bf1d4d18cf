// Package eval executes constant expressions with real wasm semantics.
//
// Rather than reimplementing wasm arithmetic (wrapping integer overflow,
// IEEE rounding, NaN propagation), the evaluator compiles the expression
// into a minimal wasm module — one exported function plus any prelude
// globals — and runs it in a wazero interpreter. The supported instruction
// set is the constant-foldable subset: constants, global.get, and the
// numeric operators that take no immediates.
package eval
