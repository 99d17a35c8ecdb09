// Command facet is the reference CLI built on the facet host package:
// to-json, validate, fmt, lint, and canon subcommands. Structured after the
// teacher corpus's cmd/ycat entry point -- a bare _main(args) that returns
// the exit code plus a thin main() that passes it to os.Exit --
// rather than a flag-package or cobra-based CLI, since the core spec treats
// the CLI surface as a thin external collaborator, not core scope.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"

	facet "github.com/facet-lang/facet"
	"github.com/facet-lang/facet/diagnostic"
)

func usage() string {
	return "usage: facet <to-json|validate|fmt|lint|canon> file.facet"
}

func _main(args []string) int {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, usage())
		return 2
	}
	cmd := args[1]
	filename := args[2]

	src, err := ioutil.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "facet: %s\n", err)
		return 2
	}

	switch cmd {
	case "to-json", "canon":
		return runCanonize(src)
	case "validate", "lint":
		return runLint(src)
	case "fmt":
		fmt.Fprintln(os.Stderr, "facet: fmt is not yet implemented")
		return 2
	default:
		fmt.Fprintln(os.Stderr, usage())
		return 2
	}
}

func runCanonize(src []byte) int {
	out, diags := facet.Canonize(src)
	printDiagnostics(string(src), diags)
	if hasInternal(diags) {
		return 2
	}
	if out == nil {
		return 1
	}
	fmt.Println(string(out))
	if len(diags) > 0 {
		return 1
	}
	return 0
}

func runLint(src []byte) int {
	diags := facet.Lint(src)
	printDiagnostics(string(src), diags)
	if hasInternal(diags) {
		return 2
	}
	if len(diags) > 0 {
		return 1
	}
	return 0
}

// hasInternal reports whether diags contains an F999 engine-bug diagnostic,
// which gets its own exit code since it signals a compiler defect rather
// than a malformed input document.
func hasInternal(diags []*diagnostic.Diagnostic) bool {
	for _, d := range diags {
		if d.Code == diagnostic.CodeInternal {
			return true
		}
	}
	return false
}

func printDiagnostics(source string, diags []*diagnostic.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	colored := color.NoColor == false
	writer := colorable.NewColorableStderr()
	for _, d := range diags {
		fmt.Fprintln(writer, diagnostic.Format(source, d, colored))
		fmt.Fprintln(writer)
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage())
		os.Exit(2)
	}
	os.Exit(_main(os.Args))
}
