package passes

import (
	"strconv"
	"strings"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/sexp"
)

// All returns every pass in its fixed execution order.
func All() []linker.Pass {
	return []linker.Pass{Import, DataImport, Numerals, Constexpr, SizeAdjust, StartMerge, Sort}
}

// ByName looks up a pass by its selection name.
func ByName(name string) (linker.Pass, bool) {
	for _, p := range All() {
		if p.Name == name {
			return p, true
		}
	}
	return linker.Pass{}, false
}

// Select maps pass names to passes. Unknown names are rejected so a typo in
// a transform list fails the run instead of silently skipping a pass.
func Select(names []string) ([]linker.Pass, error) {
	out := make([]linker.Pass, 0, len(names))
	for _, name := range names {
		p, ok := ByName(name)
		if !ok {
			return nil, errors.UnknownPass(name)
		}
		out = append(out, p)
	}
	return out, nil
}

// isStringLiteral reports whether an atom is a quoted string.
func isStringLiteral(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// unquote strips the surrounding quotes of a string-literal atom. The
// content is returned raw, escapes intact.
func unquote(s string) string {
	return s[1 : len(s)-1]
}

// decodedStringLength returns the number of bytes a raw (quote-stripped)
// string-literal payload occupies in memory. Escape sequences are decoded
// for length only: single-letter escapes and two-digit hex escapes are one
// byte, \u{...} escapes take the UTF-8 width of the code point.
func decodedStringLength(s string) (int, error) {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			count++
			continue
		}
		i++
		if i >= len(s) {
			return 0, errors.InvalidLiteral(errors.PhaseSize, "\\")
		}
		switch c := s[i]; {
		case c == 't' || c == 'n' || c == 'r' || c == '"' || c == '\'' || c == '\\':
			count++
		case isHexDigit(c):
			if i+1 >= len(s) || !isHexDigit(s[i+1]) {
				return 0, errors.InvalidLiteral(errors.PhaseSize, s[i-1:])
			}
			i++
			count++
		case c == 'u':
			if i+1 >= len(s) || s[i+1] != '{' {
				return 0, errors.InvalidLiteral(errors.PhaseSize, s[i-1:])
			}
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return 0, errors.InvalidLiteral(errors.PhaseSize, s[i-1:])
			}
			cp, err := strconv.ParseUint(strings.ReplaceAll(s[i+2:i+end], "_", ""), 16, 32)
			if err != nil {
				return 0, errors.InvalidLiteral(errors.PhaseSize, s[i-1:i+end+1])
			}
			count += utf8Len(rune(cp))
			i += end
		default:
			return 0, errors.InvalidLiteral(errors.PhaseSize, s[i-1:i+1])
		}
	}
	return count, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func utf8Len(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

// findID returns a form's identifier argument. Named identifiers ($x) get
// preference over numeric indices.
func findID(form *sexp.Node) (string, bool) {
	for _, a := range form.Atoms() {
		if strings.HasPrefix(a, "$") {
			return a, true
		}
	}
	for _, a := range form.Atoms() {
		if _, err := strconv.ParseUint(a, 10, 32); err == nil {
			return a, true
		}
	}
	return "", false
}

// parseUint parses a non-negative integer atom, tolerating hex prefixes and
// underscore separators.
func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 0, 64)
}
