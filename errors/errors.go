package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse Phase = "parse" // S-expression parsing
	PhaseLoad  Phase = "load"  // source loading
	PhaseLink  Phase = "link"  // pass orchestration and import expansion
	PhaseSize  Phase = "size"  // memory size adjustment
	PhaseMerge Phase = "merge" // start function merging
	PhaseSort  Phase = "sort"  // top-level form sorting
	PhaseEval  Phase = "eval"  // constexpr evaluation
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax              Kind = "syntax"
	KindImportNotFound      Kind = "import_not_found"
	KindCyclicImport        Kind = "cyclic_import"
	KindDanglingDataTarget  Kind = "dangling_data_target"
	KindDuplicateIdentifier Kind = "duplicate_identifier"
	KindUnknownPass         Kind = "unknown_pass"
	KindNotAModule          Kind = "not_a_module"
	KindInvalidForm         Kind = "invalid_form"
	KindInvalidLiteral      Kind = "invalid_literal"
	KindEvalFailed          Kind = "eval_failed"
)

// Error is the structured error type used throughout the linker.
// Path carries the import chain for load and cycle errors.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Offset int // byte offset into the source for syntax errors, -1 otherwise
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, " -> "))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the path (import chain or node path)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the source byte offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a parse error at a byte offset
func Syntax(offset int, detail string, args ...any) *Error {
	return New(PhaseParse, KindSyntax).Offset(offset).Detail(detail, args...).Build()
}

// ImportNotFound creates a missing import file error
func ImportNotFound(path string, cause error) *Error {
	return New(PhaseLoad, KindImportNotFound).Path(path).Detail("no source for %q", path).Cause(cause).Build()
}

// CyclicImport creates a cyclic import error carrying the resolution chain.
// The chain ends with the path that closed the cycle.
func CyclicImport(chain []string) *Error {
	return New(PhaseLink, KindCyclicImport).Path(chain...).Detail("import cycle").Build()
}

// DanglingDataTarget reports a data segment addressing an undeclared memory
func DanglingDataTarget(memIdx uint32) *Error {
	return New(PhaseSize, KindDanglingDataTarget).Detail("data segment targets undeclared memory %d", memIdx).Build()
}

// DuplicateIdentifier reports a synthesized name that could not be made unique
func DuplicateIdentifier(id string) *Error {
	return New(PhaseMerge, KindDuplicateIdentifier).Detail("synthesized identifier %q already in use", id).Build()
}

// UnknownPass reports a pass name the linker does not recognize
func UnknownPass(name string) *Error {
	return New(PhaseLink, KindUnknownPass).Detail("unknown pass %q", name).Build()
}

// NotAModule reports a pass applied to something other than a top-level module
func NotAModule(phase Phase, pass string) *Error {
	return New(phase, KindNotAModule).Detail("%s pass requires a top-level (module ...) form", pass).Build()
}

// InvalidForm reports a recognized form with a malformed shape
func InvalidForm(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindInvalidForm).Detail(detail, args...).Build()
}

// InvalidLiteral reports an unparseable numeric or string literal
func InvalidLiteral(phase Phase, lit string) *Error {
	return New(phase, KindInvalidLiteral).Detail("invalid literal %q", lit).Build()
}

// EvalFailed wraps a constexpr evaluation failure
func EvalFailed(detail string, cause error) *Error {
	return New(PhaseEval, KindEvalFailed).Detail(detail).Cause(cause).Build()
}
