package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/watlink/watlink"
	"github.com/watlink/watlink/eval"
	"github.com/watlink/watlink/linker"
	"github.com/watlink/watlink/loader"
	"github.com/watlink/watlink/sexp"
)

var (
	outputFlag     string
	transformFlag  string
	rootFlag       string
	prettyFlag     bool
	emitBinaryFlag bool
	wat2wasmFlags  string
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "watlink [input]",
	Short: "Preprocess WebAssembly text modules",
	Long: `watlink expands file imports and applies structural transforms to a
WebAssembly text module before it reaches a wat compiler.

Available transforms, always applied in this order regardless of how
they are listed:

  import       splice (import "path" (file)) modules in place
  data_import  embed (import "path" (raw)) file bytes into data segments
  numerals     rewrite 0x/0b integer literals to decimal
  constexpr    fold (<t>.constexpr ...) into (<t>.const ...)
  size_adjust  grow memory minimums to cover active data segments
  start_merge  collapse multiple (start ...) entries into one
  sort         order top-level forms by category

Examples:
  watlink app.wat                              Expand imports, sort, print
  watlink app.wat -o out.wat --pretty          Write a readable result
  watlink - --transform sort < raw.wat         Sort stdin
  watlink app.wat -c -o app.wasm               Pipe through wat2wasm`,
	Args:          cobra.ExactArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "-", "output file (- = stdout)")
	rootCmd.Flags().StringVar(&transformFlag, "transform", "import,sort", "comma-separated transform list")
	rootCmd.Flags().StringVarP(&rootFlag, "root", "r", "", "directory imports resolve against (default: input's directory)")
	rootCmd.Flags().BoolVar(&prettyFlag, "pretty", false, "indent the output across multiple lines")
	rootCmd.Flags().BoolVarP(&emitBinaryFlag, "emit-binary", "c", false, "compile the result with wat2wasm")
	rootCmd.Flags().StringVar(&wat2wasmFlags, "wat2wasm-flags", "", "extra flags passed to wat2wasm")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging to stderr")
}

func run(cmd *cobra.Command, args []string) error {
	if verboseFlag {
		lg, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		linker.SetLogger(lg)
		eval.SetLogger(lg)
		defer lg.Sync()
	}

	input := args[0]
	cfg := watlink.Config{Passes: splitTransforms(transformFlag)}

	var (
		mod *sexp.Node
		err error
	)
	switch {
	case input == "-":
		src, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return fmt.Errorf("read stdin: %w", rerr)
		}
		cfg.Loader = loader.NewFS(resolveRoot("."))
		mod, err = watlink.Process(string(src), cfg)
	case rootFlag != "":
		// Imports resolve against --root while the entry file is read
		// from wherever it actually lives.
		src, rerr := os.ReadFile(input)
		if rerr != nil {
			return fmt.Errorf("read %s: %w", input, rerr)
		}
		cfg.Loader = loader.NewFS(rootFlag)
		mod, err = watlink.Process(string(src), cfg)
	default:
		cfg.Loader = loader.NewFS(filepath.Dir(input))
		mod, err = watlink.ProcessFile(filepath.Base(input), cfg)
	}
	if err != nil {
		return err
	}

	var text string
	if prettyFlag {
		text = sexp.Pretty(mod)
	} else {
		text = sexp.Serialize(mod) + "\n"
	}

	if emitBinaryFlag {
		return emitBinary(text)
	}
	return writeOutput([]byte(text))
}

// splitTransforms tolerates empty entries so trailing commas do not become
// unknown-pass errors.
func splitTransforms(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func resolveRoot(inputDir string) string {
	if rootFlag != "" {
		return rootFlag
	}
	return inputDir
}

func writeOutput(data []byte) error {
	if outputFlag == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputFlag, data, 0o644)
}

// emitBinary pipes the transformed text through wat2wasm, reading from
// stdin and writing to the configured output.
func emitBinary(text string) error {
	args := []string{"-", "--output=-"}
	if wat2wasmFlags != "" {
		args = append(args, strings.Fields(wat2wasmFlags)...)
	}
	wat2wasm := exec.Command("wat2wasm", args...)
	wat2wasm.Stdin = strings.NewReader(text)
	wat2wasm.Stderr = os.Stderr

	out, err := wat2wasm.Output()
	if err != nil {
		return fmt.Errorf("wat2wasm: %w", err)
	}
	return writeOutput(out)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
