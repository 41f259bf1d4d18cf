package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watlink/watlink/loader"
)

func TestSortCategories(t *testing.T) {
	got, err := link(t, loader.Map{
		"0": `(module (func $f) (import "env" "x" (func $x)) (data (i32.const 0) "hi") (import "env" "y" (func $y)))`,
	}, "0", Sort)
	require.NoError(t, err)
	assert.Equal(t,
		`(module (import "env" "x" (func $x)) (import "env" "y" (func $y)) (data (i32.const 0) "hi") (func $f))`,
		got)
}

func TestSortFullOrder(t *testing.T) {
	got, err := link(t, loader.Map{
		"0": `(module (start $main) (export "main" (func $main)) (func $main) (elem (i32.const 0) $main) (global $g i32 (i32.const 1)) (table 1 funcref) (memory 1) (type (func)) (import "env" "log" (func $log)))`,
	}, "0", Sort)
	require.NoError(t, err)
	assert.Equal(t,
		`(module (import "env" "log" (func $log)) (global $g i32 (i32.const 1)) (table 1 funcref) (memory 1) (type (func)) (elem (i32.const 0) $main) (func $main) (export "main" (func $main)) (start $main))`,
		got)
}

// Stability: same-category forms keep their relative input order.
func TestSortStable(t *testing.T) {
	got, err := link(t, loader.Map{
		"0": `(module (func $a) (func $b) (memory 1) (func $c))`,
	}, "0", Sort)
	require.NoError(t, err)
	assert.Equal(t, `(module (memory 1) (func $a) (func $b) (func $c))`, got)
}

func TestSortUnrecognizedLast(t *testing.T) {
	got, err := link(t, loader.Map{
		"0": `(module (custom "x") (func $a))`,
	}, "0", Sort)
	require.NoError(t, err)
	assert.Equal(t, `(module (func $a) (custom "x"))`, got)
}

func TestSortIdempotent(t *testing.T) {
	sources := loader.Map{
		"0": `(module (export "f" (func $f)) (func $f) (data (i32.const 0) "x") (memory 1) (import "m" "n" (func)))`,
	}
	first, err := link(t, sources, "0", Sort)
	require.NoError(t, err)
	second, err := link(t, loader.Map{"0": first}, "0", Sort)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSortEmptyModule(t *testing.T) {
	got, err := link(t, loader.Map{"0": `(module)`}, "0", Sort)
	require.NoError(t, err)
	assert.Equal(t, `(module)`, got)
}
