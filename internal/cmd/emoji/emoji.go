// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all command-line commands.
package emoji

// Symbol constants for CLI output.
const (
	// Success marks a completed operation or a dataset with unique keys.
	Success = "✓"

	// Error marks a failed operation.
	Error = "✗"

	// Warning marks non-fatal findings such as key collisions.
	Warning = "!"

	// Optional marks a blank key component or a missing field.
	Optional = "-"
)
