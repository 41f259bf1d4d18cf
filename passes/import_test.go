package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/loader"
	"github.com/watlink/watlink/sexp"
)

func link(t *testing.T, sources loader.Map, entry string, ps ...linker.Pass) (string, error) {
	t.Helper()
	lk, err := linker.New(sources, ps...)
	require.NoError(t, err)
	mod, err := lk.LinkText(sources[entry])
	if err != nil {
		return "", err
	}
	return sexp.Serialize(mod), nil
}

func TestImportSimple(t *testing.T) {
	got, err := link(t, loader.Map{
		"0": `(module (import "1" (file)) (func $a) (func $b))`,
		"1": `(module (func $c) (func $d))`,
	}, "0", Import)
	require.NoError(t, err)
	assert.Equal(t, "(module (func $c) (func $d) (func $a) (func $b))", got)
}

func TestImportSplicesInPlace(t *testing.T) {
	got, err := link(t, loader.Map{
		"0": `(module (func $before) (import "1" (file)) (func $after))`,
		"1": `(module (func $mid1) (func $mid2))`,
	}, "0", Import)
	require.NoError(t, err)
	assert.Equal(t, "(module (func $before) (func $mid1) (func $mid2) (func $after))", got)
}

func TestImportCascade(t *testing.T) {
	got, err := link(t, loader.Map{
		"0": `(module (import "1" (file)) (func $a))`,
		"1": `(module (import "2" (file)) (func $b))`,
		"2": `(module (func $c))`,
	}, "0", Import)
	require.NoError(t, err)
	assert.Equal(t, "(module (func $c) (func $b) (func $a))", got)
}

// A diamond is not a cycle: the shared leaf expands once per reference
// and the resulting duplicate forms are the author's to resolve.
func TestImportDiamondDuplicates(t *testing.T) {
	got, err := link(t, loader.Map{
		"0": `(module (import "b" (file)) (import "c" (file)))`,
		"b": `(module (import "d" (file)) (func $b))`,
		"c": `(module (import "d" (file)) (func $c))`,
		"d": `(module (func $shared))`,
	}, "0", Import)
	require.NoError(t, err)
	assert.Equal(t, "(module (func $shared) (func $b) (func $shared) (func $c))", got)
}

func TestImportSelfCycle(t *testing.T) {
	_, err := link(t, loader.Map{
		"0": `(module (import "0" (file)))`,
	}, "0", Import)
	require.Error(t, err)
	var serr *errors.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, errors.KindCyclicImport, serr.Kind)
	assert.Equal(t, []string{"0", "0"}, serr.Path)
}

func TestImportDeepCycleNamesChain(t *testing.T) {
	_, err := link(t, loader.Map{
		"0": `(module (import "1" (file)))`,
		"1": `(module (import "2" (file)))`,
		"2": `(module (import "0" (file)))`,
	}, "0", Import)
	require.Error(t, err)
	var serr *errors.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, errors.KindCyclicImport, serr.Kind)
	assert.Equal(t, []string{"0", "1", "2", "0"}, serr.Path)
}

func TestImportMissingFile(t *testing.T) {
	_, err := link(t, loader.Map{
		"0": `(module (import "nope" (file)))`,
	}, "0", Import)
	require.Error(t, err)
	var serr *errors.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, errors.KindImportNotFound, serr.Kind)
}

func TestImportNestedParseError(t *testing.T) {
	_, err := link(t, loader.Map{
		"0":   `(module (import "bad" (file)))`,
		"bad": `(module (func`,
	}, "0", Import)
	require.Error(t, err)
	var serr *errors.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, errors.KindSyntax, serr.Kind)
}

// Regular wasm imports share the tag but not the shape; they must pass
// through untouched.
func TestImportIgnoresWasmImports(t *testing.T) {
	src := `(module (import "env" "log" (func $log (param i32))) (func $a))`
	got, err := link(t, loader.Map{"0": src}, "0", Import)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestImportRequiresModule(t *testing.T) {
	_, err := link(t, loader.Map{"0": `(func $a)`}, "0", Import)
	require.Error(t, err)
	var serr *errors.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, errors.KindNotAModule, serr.Kind)
}

func TestImportedFileMustBeModule(t *testing.T) {
	_, err := link(t, loader.Map{
		"0":   `(module (import "lib" (file)))`,
		"lib": `(func $a)`,
	}, "0", Import)
	require.Error(t, err)
	var serr *errors.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, errors.KindInvalidForm, serr.Kind)
}
