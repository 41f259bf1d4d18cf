// Package watlink preprocesses WebAssembly text modules written as
// S-expressions, expanding file imports and applying structural transforms
// before the result is handed to a wat compiler.
//
// The work is organized into a handful of packages:
//
//	watlink/       Root facade: Process / ProcessFile with pass selection
//	├── sexp/      Generic S-expression tree, parser, serializer, printer
//	├── loader/    Source loaders (filesystem, fs.FS, in-memory)
//	├── linker/    Pass pipeline and import cycle tracking
//	├── passes/    The transforms: import, data_import, numerals,
//	│              constexpr, size_adjust, start_merge, sort
//	├── eval/      Constant expression evaluation via wazero
//	└── errors/    Structured error types shared by all of the above
//
// # Quick start
//
// Expand imports and sort a module loaded from disk:
//
//	mod, err := watlink.ProcessFile("app.wat", watlink.Config{
//	    Loader: loader.NewFS("src"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sexp.Serialize(mod))
//
// Passes run in a fixed order regardless of how they are listed: import,
// data_import, numerals, constexpr, size_adjust, start_merge, sort.
// Selecting a subset never changes the relative order of the passes that
// do run.
//
// # Import semantics
//
// (import "path" (file)) splices the referenced module's top-level forms
// in place of the import form. Expansion is recursive; a file reachable
// through two independent branches is expanded once per reference, while a
// file that reaches itself through any chain of imports is a cycle error
// naming the whole chain.
package watlink
