package sexp

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/watlink/watlink/errors"
)

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	n, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return n
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"empty_module", "(  module )", "(module)"},
		{
			"whitespace_normalized",
			"(module\n\t(func $add\n\t\t(import \"./file\" \"lol\")\n\t\t(param i32)     (param    i64)\n\t\t(result i32 ) ) )",
			`(module (func $add (import "./file" "lol") (param i32) (param i64) (result i32)))`,
		},
		{
			"string_spaces_preserved",
			`(import "string   with   space"    but     these spaces    will   be  normalized)`,
			`(import "string   with   space" but these spaces will be normalized)`,
		},
		{"escaped_quote", `(data "a\"b")`, `(data "a\"b")`},
		{"escapes_kept_raw", `(data "\00\n\5c")`, `(data "\00\n\5c")`},
		{"line_comment", "(module ;; a comment\n(func))", "(module (func))"},
		{"block_comment", "(module (; ignore (; nested ;) me ;) (func))", "(module (func))"},
		{"comment_before_root", ";; header\n(module)", "(module)"},
		{"empty_inner_list", "(module ())", "(module ())"},
		{"memarg_atom_split", "(i32.store offset=(i32.const 4))", "(i32.store offset= (i32.const 4))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Serialize(mustParse(t, tt.input))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// Serializing a parsed tree and parsing it again must be a fixed point.
func TestParseSerializeIdempotent(t *testing.T) {
	inputs := []string{
		"(module (memory $m 1) (data (i32.const 0) \"hi\\00there\"))",
		"(module (func $f (call $g)) (start $f))",
		"(a (b (c (d)) e) \"f g\")",
	}
	for _, src := range inputs {
		once := Serialize(mustParse(t, src))
		twice := Serialize(mustParse(t, once))
		if once != twice {
			t.Errorf("not idempotent:\n first %q\nsecond %q", once, twice)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input, wantMsg string
		wantOffset           int
	}{
		{"unterminated_list", "(module (func)", "unterminated list", 0},
		{"unterminated_nested", "(module (func", "unterminated list", 8},
		{"unterminated_string", `(data "abc`, "unterminated string", 6},
		{"escape_hides_quote", `(data "abc\")`, "unterminated string", 6},
		{"unterminated_comment", "(module (; never closed", "unterminated block comment", 8},
		{"no_open_paren", "module", "expected '('", 0},
		{"empty", "   ", "empty input", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var serr *errors.Error
			if !stderrors.As(err, &serr) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if serr.Kind != errors.KindSyntax {
				t.Errorf("kind = %q, want syntax", serr.Kind)
			}
			if serr.Offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", serr.Offset, tt.wantOffset)
			}
			if !strings.Contains(serr.Detail, tt.wantMsg) {
				t.Errorf("detail %q missing %q", serr.Detail, tt.wantMsg)
			}
		})
	}
}

func TestParseUnknownFormsPassThrough(t *testing.T) {
	// Hypothetical future syntax must survive parse/serialize untouched.
	src := `(module (v128.fancy_new_op 1 2 (lane 3)) (threads.shared (memory 1)))`
	got := Serialize(mustParse(t, src))
	if got != src {
		t.Errorf("got %q, want %q", got, src)
	}
}
