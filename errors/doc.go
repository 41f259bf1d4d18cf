// Package errors provides structured error types for the watlink pipeline.
//
// Every error carries a Phase (where in processing it occurred) and a Kind
// (what went wrong), so callers can match on error categories with errors.Is
// without parsing messages:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseLink, Kind: errors.KindCyclicImport}) {
//		// handle cycle
//	}
//
// The pipeline is fail-fast: the first error aborts the run and no partially
// transformed output is produced.
package errors
