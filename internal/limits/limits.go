// Package limits centralizes the fixed resource bounds the engine enforces
// (C2). Every bound here is a compile-time constant, never a runtime option:
// the determinism guarantee depends on every implementation agreeing on them.
package limits

const (
	// IndentWidth is the only legal indentation unit; any other width, or any
	// tab in indentation position, is a lexical error (F002).
	IndentWidth = 2

	// MaxIndentDepth bounds the indent stack depth.
	MaxIndentDepth = 64

	// MaxDocumentBytes bounds the size of a single source document.
	MaxDocumentBytes = 8 << 20 // 8 MiB

	// MaxFenceBytes bounds a single fenced block body.
	MaxFenceBytes = 1 << 20 // 1 MiB

	// MaxNestingDepth bounds how deeply indented values may nest under
	// mapping keys, guarding against stack exhaustion on adversarial input.
	// Inline collection nesting is not counted against it.
	MaxNestingDepth = 128

	// MaxPipelineLength bounds the number of |> segments on one value (F805).
	MaxPipelineLength = 16

	// MaxImportDepth bounds the recursive @import chain length (F602).
	MaxImportDepth = 32

	// MaxImportCount bounds the total number of distinct files loaded across
	// one canonicalization (F602).
	MaxImportCount = 256

	// RegexStepBudget is not read by any code: no step counter is enforced on
	// regex execution. Regexes run on the stdlib regexp engine, which is
	// RE2-based and matches in time linear in the input size, so it does not
	// backtrack catastrophically.
	RegexStepBudget = 1 << 20
)
