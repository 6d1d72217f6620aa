package errors

import (
	"fmt"
	"os"
	"strings"
)

// LuaghiniError is the interface implemented by all luaghini errors.
type LuaghiniError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // Stable machine-readable tag, e.g. "module-not-found"
	// Message returns the specific error message without position info.
	// This might be useful if the caller wants to format the error differently.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// ConfigMissingError reports that a runtime-tree mapping was required but no
// project tree is available (or the file lies outside of it).
type ConfigMissingError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("Config Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ConfigMissingError) Pos() Position   { return e.Position }
func (e *ConfigMissingError) Kind() string    { return "config-missing" }
func (e *ConfigMissingError) Message() string { return e.Msg }
func (e *ConfigMissingError) Unwrap() error   { return e.Cause }
func (e *ConfigMissingError) CausedBy(cause error) *ConfigMissingError {
	e.Cause = cause
	return e
}

// ModuleNotFoundError reports a specifier with no backing file, usually a
// missing dependency install.
type ModuleNotFoundError struct {
	Position
	Specifier string
	Msg       string
	Cause     error // Underlying cause, if any
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("Import Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ModuleNotFoundError) Pos() Position   { return e.Position }
func (e *ModuleNotFoundError) Kind() string    { return "module-not-found" }
func (e *ModuleNotFoundError) Message() string { return e.Msg }
func (e *ModuleNotFoundError) Unwrap() error   { return e.Cause }
func (e *ModuleNotFoundError) CausedBy(cause error) *ModuleNotFoundError {
	e.Cause = cause
	return e
}

// InvalidScopeError reports a package import that resolves outside the
// recognized package scope.
type InvalidScopeError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("Package Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *InvalidScopeError) Pos() Position   { return e.Position }
func (e *InvalidScopeError) Kind() string    { return "invalid-scope" }
func (e *InvalidScopeError) Message() string { return e.Msg }
func (e *InvalidScopeError) Unwrap() error   { return e.Cause }
func (e *InvalidScopeError) CausedBy(cause error) *InvalidScopeError {
	e.Cause = cause
	return e
}

// InvalidServiceError reports an absolute address whose root segment is not a
// recognized runtime-tree service.
type InvalidServiceError struct {
	Position
	Service string
	Msg     string
	Cause   error // Underlying cause, if any
}

func (e *InvalidServiceError) Error() string {
	return fmt.Sprintf("Service Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *InvalidServiceError) Pos() Position   { return e.Position }
func (e *InvalidServiceError) Kind() string    { return "invalid-service" }
func (e *InvalidServiceError) Message() string { return e.Msg }
func (e *InvalidServiceError) Unwrap() error   { return e.Cause }
func (e *InvalidServiceError) CausedBy(cause error) *InvalidServiceError {
	e.Cause = cause
	return e
}

// ReservedIdentError reports a binding whose local name collides with a
// reserved word of the target language.
type ReservedIdentError struct {
	Position
	Ident string
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ReservedIdentError) Error() string {
	return fmt.Sprintf("Identifier Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ReservedIdentError) Pos() Position   { return e.Position }
func (e *ReservedIdentError) Kind() string    { return "reserved-identifier" }
func (e *ReservedIdentError) Message() string { return e.Msg }
func (e *ReservedIdentError) Unwrap() error   { return e.Cause }
func (e *ReservedIdentError) CausedBy(cause error) *ReservedIdentError {
	e.Cause = cause
	return e
}

// ExportContextError reports an export declaration with no enclosing module,
// namespace, or file context. Parser invariants should make this unreachable,
// so it is treated as an internal-consistency failure.
type ExportContextError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ExportContextError) Error() string {
	return fmt.Sprintf("Export Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ExportContextError) Pos() Position   { return e.Position }
func (e *ExportContextError) Kind() string    { return "bad-export-context" }
func (e *ExportContextError) Message() string { return e.Msg }
func (e *ExportContextError) Unwrap() error   { return e.Cause }
func (e *ExportContextError) CausedBy(cause error) *ExportContextError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

// DisplayErrors prints a list of luaghini errors to stderr in a user-friendly
// format, including the source line and position marker.
func DisplayErrors(errs []LuaghiniError) {
	if len(errs) == 0 {
		return
	}

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		var lines []string
		if pos.Source != nil {
			lines = pos.Source.Lines()
		}

		// Ensure line numbers are within bounds (1-based index)
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			// Print a generic error if line info is invalid
			fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", kind, msg)
			continue
		}

		sourceLine := lines[lineIdx]
		trimmedLine := strings.TrimRight(sourceLine, "\r\n\t ") // Trim trailing whitespace for cleaner output

		// Format: <file>:<Line>:<Column>: [<kind>] <Message>
		name := pos.Source.DisplayPath()
		fmt.Fprintf(os.Stderr, "%s:%d:%d: [%s] %s\n", name, pos.Line, pos.Column, kind, msg)

		// Print the source line
		fmt.Fprintf(os.Stderr, "  %s\n", trimmedLine)

		// Print the marker line (^)
		marker := strings.Repeat(" ", pos.Column) + "^"
		fmt.Fprintf(os.Stderr, "  %s\n", marker)
		fmt.Fprintln(os.Stderr) // Add a blank line between errors
	}
}
