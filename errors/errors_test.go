package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want []string
	}{
		{
			"syntax_with_offset",
			Syntax(42, "unterminated string"),
			[]string{"[parse]", "syntax", "offset 42", "unterminated string"},
		},
		{
			"cyclic_with_chain",
			CyclicImport([]string{"a.wat", "b.wat", "a.wat"}),
			[]string{"[link]", "cyclic_import", "a.wat -> b.wat -> a.wat"},
		},
		{
			"dangling_target",
			DanglingDataTarget(2),
			[]string{"[size]", "dangling_data_target", "memory 2"},
		},
		{
			"with_cause",
			ImportNotFound("lib.wat", stderrors.New("boom")),
			[]string{"[load]", "import_not_found", `"lib.wat"`, "caused by: boom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("message %q missing %q", msg, want)
				}
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := UnknownPass("bogus")
	if !stderrors.Is(err, &Error{Phase: PhaseLink, Kind: KindUnknownPass}) {
		t.Error("expected match on phase+kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseLink, Kind: KindCyclicImport}) {
		t.Error("unexpected match on different kind")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := New(PhaseEval, KindEvalFailed).Cause(cause).Build()
	if !stderrors.Is(err, cause) {
		t.Error("expected unwrap to reach cause")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseSize, KindInvalidForm).
		Path("data", "offset").
		Detail("offset %d out of range", 9).
		Build()
	if err.Offset != -1 {
		t.Errorf("default offset = %d, want -1", err.Offset)
	}
	if want := "offset 9 out of range"; err.Detail != want {
		t.Errorf("detail = %q, want %q", err.Detail, want)
	}
}
