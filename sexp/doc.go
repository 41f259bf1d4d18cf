// Package sexp implements the S-expression tree model the whole pipeline
// operates on, together with its parser and serializer.
//
// A Node is either an atom (verbatim source text, including quotes and raw
// escape sequences for string literals) or an ordered list of nodes. The
// parser assigns no meaning to any form: a module is simply the outermost
// list whose leading atom is "module", and passes pattern-match on leading
// atoms while leaving everything they do not recognize untouched.
//
// Comments are skipped during parsing and are not represented in the tree,
// so they do not survive a parse/serialize round-trip. This is deliberate:
// the output feeds an external encoder, not a human editor. Whitespace is
// normalized to single spaces on output, which makes parse followed by
// serialize idempotent after the first pass.
package sexp
