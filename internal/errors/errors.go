// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the bspidx CLI and
// the engine it drives.
//
// It defines UserError, a type that carries structured error information —
// what went wrong, why it happened, and how to fix it — plus a Category
// matching the engine's own failure taxonomy (Transport, NotFound, Parse,
// Store, Cancelled, BusyIndexing), extended with the ambient CLI-facing
// categories (Config, Input, Permission, Internal) that never cross the
// engine boundary.
//
// # Usage Example
//
//	err := errors.NewStoreError(
//	    "Cannot open the project index",
//	    "The database file is locked by another process",
//	    "Close other bspidx instances or run: bspidx reset --yes",
//	    underlyingErr,
//	)
//	if err != nil {
//	    errors.FatalError(err, false)
//	}
//
// # Formatted Output
//
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Error: Cannot open the project index
//	// Cause: The database file is locked by another process
//	// Fix:   Close other bspidx instances or run: bspidx reset --yes
//
// For JSON output:
//
//	json.NewEncoder(os.Stderr).Encode(err.ToJSON())
//	// {"error": "...", "cause": "...", "fix": "...", "exit_code": 2}
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Category classifies a UserError by what kind of failure it represents.
// Transport/NotFound/Parse/Store/Cancelled/BusyIndexing are the engine's
// own taxonomy; Config/Input/Permission/Internal are ambient CLI concerns
// with no engine-level counterpart.
type Category string

const (
	// CategoryTransport: the content provider was unavailable, timed out,
	// or returned non-zero unexpectedly; retried up to 3 times before
	// surfacing.
	CategoryTransport Category = "transport"
	// CategoryNotFound: a requested file or path is absent on the host.
	// Not retried; definition lookups treat this as "no result" rather
	// than propagating it.
	CategoryNotFound Category = "not_found"
	// CategoryParse: malformed input was encountered mid-file. Never
	// abortive — partial records are still emitted for the rest of the
	// file.
	CategoryParse Category = "parse"
	// CategoryStore: the indexed store failed (corruption, I/O). When
	// initialization fails the engine falls back to degraded in-memory
	// mode and emits a one-time warning rather than returning this.
	CategoryStore Category = "store"
	// CategoryCancelled: user- or controller-requested cancellation.
	// Terminal, not an error condition.
	CategoryCancelled Category = "cancelled"
	// CategoryBusyIndexing: a second concurrent start_indexing call,
	// returned immediately without disturbing the running operation.
	CategoryBusyIndexing Category = "busy_indexing"

	// CategoryConfig: missing or invalid project.yaml.
	CategoryConfig Category = "config"
	// CategoryInput: bad command-line arguments or failed CLI-level
	// validation.
	CategoryInput Category = "input"
	// CategoryPermission: insufficient filesystem permissions.
	CategoryPermission Category = "permission"
	// CategoryInternal: a bug — an assertion failure or unexpected nil
	// that should be reported upstream.
	CategoryInternal Category = "internal"
)

// Exit codes for each Category, following Unix conventions: 0 is success,
// 1-9 are caller-actionable conditions, 10 signals "this is a bug".
const (
	ExitSuccess      = 0
	ExitConfig       = 1
	ExitStore        = 2
	ExitTransport    = 3
	ExitInput        = 4
	ExitPermission   = 5
	ExitNotFound     = 6
	ExitParse        = 7
	ExitCancelled    = 8
	ExitBusyIndexing = 9
	ExitInternal     = 10
)

var exitCodes = map[Category]int{
	CategoryConfig:       ExitConfig,
	CategoryStore:        ExitStore,
	CategoryTransport:    ExitTransport,
	CategoryInput:        ExitInput,
	CategoryPermission:   ExitPermission,
	CategoryNotFound:     ExitNotFound,
	CategoryParse:        ExitParse,
	CategoryCancelled:    ExitCancelled,
	CategoryBusyIndexing: ExitBusyIndexing,
	CategoryInternal:     ExitInternal,
}

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: what went wrong (user-facing description)
//   - Cause: why it happened (diagnostic information)
//   - Fix: how to resolve it (actionable suggestion)
type UserError struct {
	Category Category
	Message  string
	Cause    string
	Fix      string
	// Err is the underlying error, if any, enabling errors.Is/As.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap enables errors.Is/errors.As against the wrapped cause.
func (e *UserError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code for this error's Category.
func (e *UserError) ExitCode() int {
	if code, ok := exitCodes[e.Category]; ok {
		return code
	}
	return ExitInternal
}

func newError(cat Category, msg, cause, fix string, err error) *UserError {
	return &UserError{Category: cat, Message: msg, Cause: cause, Fix: fix, Err: err}
}

// NewConfigError creates a configuration error.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newError(CategoryConfig, msg, cause, fix, err)
}

// NewStoreError creates an indexed-store error.
func NewStoreError(msg, cause, fix string, err error) *UserError {
	return newError(CategoryStore, msg, cause, fix, err)
}

// NewTransportError creates a content-provider error, used once retries
// are exhausted.
func NewTransportError(msg, cause, fix string, err error) *UserError {
	return newError(CategoryTransport, msg, cause, fix, err)
}

// NewInputError creates a CLI input-validation error. Input errors
// typically don't wrap an underlying error.
func NewInputError(msg, cause, fix string) *UserError {
	return newError(CategoryInput, msg, cause, fix, nil)
}

// NewPermissionError creates a filesystem-permission error.
func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return newError(CategoryPermission, msg, cause, fix, err)
}

// NewNotFoundError creates a not-found error. Typically doesn't wrap an
// underlying error.
func NewNotFoundError(msg, cause, fix string) *UserError {
	return newError(CategoryNotFound, msg, cause, fix, nil)
}

// NewParseError creates a per-file parse error. Parse errors are logged
// and counted, never abortive to the run as a whole — callers should not
// normally exit the process on one of these.
func NewParseError(msg, cause string, err error) *UserError {
	return newError(CategoryParse, msg, cause, "", err)
}

// NewCancelledError creates a terminal, non-erroneous cancellation marker.
func NewCancelledError(msg string) *UserError {
	return newError(CategoryCancelled, msg, "", "", nil)
}

// NewBusyIndexingError creates the "already running" response to a second
// concurrent start_indexing call.
func NewBusyIndexingError() *UserError {
	return newError(CategoryBusyIndexing, "Indexing is already running", "",
		"Wait for the current run to finish, or call cancel_indexing first", nil)
}

// NewInternalError creates an internal error signaling a bug.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newError(CategoryInternal, msg, cause, fix, err)
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display. Color
// output respects the NO_COLOR environment variable and the noColor
// parameter. Empty Cause/Fix fields are omitted.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON is a UserError in JSON form, suitable for --json output modes.
type ErrorJSON struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Category: string(e.Category),
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode(),
	}
}

// FatalError prints the error and exits with the appropriate code. It
// never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode())
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
