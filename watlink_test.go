package watlink

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/loader"
)

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestProcessDefaultPasses(t *testing.T) {
	sources := loader.Map{
		"entry": `(module (func $main) (import "lib" (file)))`,
		"lib":   `(module (func $helper) (import "env" "log" (func $log)))`,
	}
	got, err := ProcessToString(sources["entry"], Config{Loader: sources})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := `(module (import "env" "log" (func $log)) (func $main) (func $helper))`
	if got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
}

func TestProcessSortOnly(t *testing.T) {
	src := `(module (func $f) (import "lib" (file)) (memory 1))`
	got, err := ProcessToString(src, Config{
		Loader: loader.Map{},
		Passes: []string{"sort"},
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	// With the import pass disabled the file import is just another
	// top-level form, sorted into the import category.
	want := `(module (import "lib" (file)) (memory 1) (func $f))`
	if got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
}

func TestProcessFullPipeline(t *testing.T) {
	sources := loader.Map{
		"entry": `(module
			(import "lib" (file))
			(memory 1)
			(data (i32.const 0x10_000) "` + strings.Repeat("x", 70000) + `")
			(start $init)
			(func $init))`,
		"lib": `(module (func $setup) (start $setup))`,
	}
	got, err := ProcessToString(sources["entry"], Config{
		Loader: sources,
		Passes: []string{"import", "numerals", "size_adjust", "start_merge", "sort"},
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	for _, want := range []string{
		"(memory 3)",                // 65536+70000 bytes needs three pages
		"(i32.const 65536)",         // hex offset normalized
		"(func $setup)",             // spliced from lib
		"(start $__merged_start)",   // two start entries collapsed
		"(call $setup) (call $init)", // lib's start came first in tree order
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "(start $setup)") || strings.Contains(got, "(start $init)") {
		t.Errorf("original start entries survived:\n%s", got)
	}
}

func TestProcessUnknownPass(t *testing.T) {
	_, err := Process(`(module)`, Config{Loader: loader.Map{}, Passes: []string{"optimize"}})
	if err == nil {
		t.Fatal("expected error for unknown pass")
	}
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindUnknownPass {
		t.Fatalf("want unknown_pass, got %v", err)
	}
}

func TestProcessFileSelfImport(t *testing.T) {
	// ProcessFile puts the entry on the resolution stack, so a module
	// importing itself reports a cycle instead of recursing.
	dir := t.TempDir()
	writeFile(t, dir, "self.wat", `(module (import "self.wat" (file)))`)
	_, err := ProcessFile("self.wat", Config{Loader: loader.NewFS(dir)})
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindCyclicImport {
		t.Fatalf("want cyclic_import, got %v", err)
	}
}

func TestProcessFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "entry.wat", `(module (import "lib.wat" (file)) (func $main))`)
	writeFile(t, dir, "lib.wat", `(module (func $lib))`)
	mod, err := ProcessFile("entry.wat", Config{Loader: loader.NewFS(dir)})
	if err != nil {
		t.Fatalf("process file: %v", err)
	}
	got := mod.Items[1].Items[1].Text
	if got != "$lib" {
		t.Fatalf("want spliced $lib first, got %s", got)
	}
}
