// Package loader abstracts how import paths resolve to source text.
//
// The pipeline core never touches the filesystem directly; every file
// reference goes through a Loader. FS reads relative to a root directory,
// Map serves in-memory sources for tests, and FSDir adapts any fs.FS.
package loader
